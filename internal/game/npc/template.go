// Package npc provides enemy template definitions and the bestiary duels draw
// opponents from.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/reward"
)

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID          string                  `yaml:"id"`
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	Level       int                     `yaml:"level"`
	MaxHP       int                     `yaml:"max_hp"`
	Defense     int                     `yaml:"defense"`
	Evade       int                     `yaml:"evade"`
	CritResist  int                     `yaml:"crit_resist"`
	Attacks     []combat.AttackSnapshot `yaml:"attacks"`
	// Passive names a Lua script whose hooks run while this enemy fights.
	// Empty means no passive.
	Passive string `yaml:"passive"`
	// Reward is paid to whoever defeats this enemy.
	Reward reward.Table `yaml:"reward"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1,
// MaxHP >= 1, stats are non-negative, at least one attack is declared with
// positive speed and cooldown, and the reward table is valid.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("npc template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("npc template %q: max_hp must be >= 1", t.ID)
	}
	if t.Defense < 0 || t.Evade < 0 || t.CritResist < 0 {
		return fmt.Errorf("npc template %q: defense, evade and crit_resist must be >= 0", t.ID)
	}
	if len(t.Attacks) == 0 {
		return fmt.Errorf("npc template %q: at least one attack is required", t.ID)
	}
	for i, a := range t.Attacks {
		if a.Speed <= 0 || a.Cooldown <= 0 {
			return fmt.Errorf("npc template %q: attack[%d] speed and cooldown must be > 0", t.ID, i)
		}
	}
	if err := t.Reward.Validate(); err != nil {
		return fmt.Errorf("npc template %q: %w", t.ID, err)
	}
	return nil
}

// Snapshot returns the engine view of a fresh, full-health copy of the template
// under the given combatant id.
//
// Postcondition: the returned snapshot shares no slices with t.
func (t *Template) Snapshot(id string) *combat.Snapshot {
	attacks := make([]combat.AttackSnapshot, len(t.Attacks))
	copy(attacks, t.Attacks)
	return &combat.Snapshot{
		ID:         id,
		Name:       t.Name,
		Level:      t.Level,
		MaxHP:      t.MaxHP,
		CurrentHP:  t.MaxHP,
		Defense:    t.Defense,
		Evade:      t.Evade,
		CritResist: t.CritResist,
		Attacks:    attacks,
	}
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
