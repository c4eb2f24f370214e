// Package inventory provides item definitions and the registry the duel engine
// resolves weapons, shields and armor through.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Kind constants for ItemDef.Kind.
const (
	KindWeapon = "weapon"
	KindShield = "shield"
	KindArmor  = "armor"
	KindJunk   = "junk"
)

// validKinds is the set of valid ItemDef kinds.
var validKinds = map[string]bool{
	KindWeapon: true,
	KindShield: true,
	KindArmor:  true,
	KindJunk:   true,
}

// ItemDef defines the static properties of an item loaded from YAML.
type ItemDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"`
	// Skill is the offense skill trained by a weapon (its category) or a
	// shield (its subtype).
	Skill string `yaml:"skill"`
	// Greatshield marks a shield whose strength is only partly consumed by a hit.
	Greatshield bool `yaml:"greatshield"`
	// Subtype is the defense skill trained by an armor piece.
	Subtype string `yaml:"subtype"`
	// Defense is the flat damage reduction an armor piece adds when worn.
	Defense int `yaml:"defense"`
	Value   int `yaml:"value"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of weapon, shield, armor, junk; got %q", d.Kind))
	}
	if (d.Kind == KindWeapon || d.Kind == KindShield) && d.Skill == "" {
		errs = append(errs, fmt.Errorf("Skill is required when Kind is %s", d.Kind))
	}
	if d.Kind == KindArmor && d.Subtype == "" {
		errs = append(errs, errors.New("Subtype is required when Kind is armor"))
	}
	if d.Greatshield && d.Kind != KindShield {
		errs = append(errs, errors.New("Greatshield is only valid when Kind is shield"))
	}
	if d.Defense < 0 {
		errs = append(errs, errors.New("Defense must be >= 0"))
	}
	if d.Value < 0 {
		errs = append(errs, errors.New("Value must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as a list
// of ItemDefs, validates them, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var defs []*ItemDef
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		for _, d := range defs {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
			}
			items = append(items, d)
		}
	}
	return items, nil
}
