// Package character defines the player character sheet and pure progression logic.
package character

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/reward"
)

// Progress is a skill's level and the experience accumulated within it.
type Progress struct {
	Level      int `yaml:"level"`
	Experience int `yaml:"experience"`
}

// Character represents a player character's persistent state.
//
// UpdatedAt is set by the persistence layer; the zero value indicates a sheet
// that has never been saved.
type Character struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Level      int    `yaml:"level"`
	Experience int    `yaml:"experience"`
	Gold       int    `yaml:"gold"`

	MaxHP      int `yaml:"max_hp"`
	CurrentHP  int `yaml:"current_hp"`
	Defense    int `yaml:"defense"`
	Evade      int `yaml:"evade"`
	CritResist int `yaml:"crit_resist"`

	Attacks []combat.AttackSnapshot `yaml:"attacks"`
	// Armor lists equipped armor item ids.
	Armor []string `yaml:"armor"`
	// Passive names a Lua script whose hooks run while this character fights.
	Passive string `yaml:"passive"`

	OffenseSkills map[reward.Skill]Progress `yaml:"offense_skills"`
	DefenseSkills map[reward.Skill]Progress `yaml:"defense_skills"`
	// Items is the backpack: item id to quantity.
	Items map[string]int `yaml:"items"`

	UpdatedAt time.Time `yaml:"-"`
}

// Armory resolves equipped armor ids. *inventory.Registry satisfies it.
type Armory interface {
	Armor(ids []string) (inventory.Worn, error)
}

// Validate checks that the sheet satisfies its invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1,
// 0 <= CurrentHP <= MaxHP, MaxHP >= 1, and stats, gold and experience are
// non-negative.
func (c *Character) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if c.Level < 1 {
		errs = append(errs, errors.New("level must be >= 1"))
	}
	if c.MaxHP < 1 {
		errs = append(errs, errors.New("max_hp must be >= 1"))
	}
	if c.CurrentHP < 0 || c.CurrentHP > c.MaxHP {
		errs = append(errs, fmt.Errorf("current_hp must be in [0, %d], got %d", c.MaxHP, c.CurrentHP))
	}
	if c.Defense < 0 || c.Evade < 0 || c.CritResist < 0 {
		errs = append(errs, errors.New("defense, evade and crit_resist must be >= 0"))
	}
	if c.Gold < 0 || c.Experience < 0 {
		errs = append(errs, errors.New("gold and experience must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("character %q: %v", c.ID, errs)
	}
	return nil
}

// Snapshot returns the engine view of the character. Worn armor adds its
// defense to the base stat.
//
// Precondition: armory must be non-nil.
// Postcondition: Returns an error if any equipped armor id does not resolve.
func (c *Character) Snapshot(armory Armory) (*combat.Snapshot, error) {
	worn, err := armory.Armor(c.Armor)
	if err != nil {
		return nil, fmt.Errorf("character %q: %w", c.ID, err)
	}
	attacks := make([]combat.AttackSnapshot, len(c.Attacks))
	copy(attacks, c.Attacks)
	return &combat.Snapshot{
		ID:         c.ID,
		Name:       c.Name,
		Level:      c.Level,
		MaxHP:      c.MaxHP,
		CurrentHP:  c.CurrentHP,
		Defense:    c.Defense + worn.Defense,
		Evade:      c.Evade,
		CritResist: c.CritResist,
		Attacks:    attacks,
	}, nil
}

// OffenseLevels returns the offense skill level lookup table.
func (c *Character) OffenseLevels() reward.SkillLevels { return levels(c.OffenseSkills) }

// DefenseLevels returns the defense skill level lookup table.
func (c *Character) DefenseLevels() reward.SkillLevels { return levels(c.DefenseSkills) }

func levels(m map[reward.Skill]Progress) reward.SkillLevels {
	out := make(reward.SkillLevels, len(m))
	for s, p := range m {
		out[s] = p.Level
	}
	return out
}

// Clone returns a deep copy of c.
func (c *Character) Clone() *Character {
	cp := *c
	cp.Attacks = append([]combat.AttackSnapshot(nil), c.Attacks...)
	cp.Armor = append([]string(nil), c.Armor...)
	cp.OffenseSkills = cloneProgress(c.OffenseSkills)
	cp.DefenseSkills = cloneProgress(c.DefenseSkills)
	cp.Items = make(map[string]int, len(c.Items))
	for id, n := range c.Items {
		cp.Items[id] = n
	}
	return &cp
}

func cloneProgress(m map[reward.Skill]Progress) map[reward.Skill]Progress {
	out := make(map[reward.Skill]Progress, len(m))
	for s, p := range m {
		out[s] = p
	}
	return out
}

// LoadFile parses and validates a single character sheet.
func LoadFile(path string) (*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading character %q: %w", path, err)
	}
	var c Character
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing character %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return &c, nil
}

// LoadDir reads every *.yaml character sheet in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all sheets or the first error encountered.
func LoadDir(dir string) ([]*Character, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading character dir %q: %w", dir, err)
	}
	var out []*Character
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		c, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
