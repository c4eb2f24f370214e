// Package reward derives gold, experience, item drops, and skill progression
// from a finished duel log.
package reward

import "fmt"

// Drop is a single item entry in a reward table with a drop chance.
type Drop struct {
	ItemID   string  `yaml:"item"`
	Quantity int     `yaml:"quantity"`
	Chance   float64 `yaml:"chance"`
}

// Table is the defeated side's reward configuration.
type Table struct {
	Gold int `yaml:"gold"`
	// Level is the experience-relevant level of the defeated side. Zero means
	// the defeated combatant's own level is used.
	Level int    `yaml:"level"`
	Drops []Drop `yaml:"drops"`
}

// Validate checks that the table satisfies its invariants.
//
// Postcondition: Returns nil iff gold and level are non-negative and every drop
// has a non-empty item id, quantity >= 1 and chance in [0, 1];
// an empty table is valid.
func (t *Table) Validate() error {
	if t.Gold < 0 {
		return fmt.Errorf("reward table: gold must be >= 0, got %d", t.Gold)
	}
	if t.Level < 0 {
		return fmt.Errorf("reward table: level must be >= 0, got %d", t.Level)
	}
	for i, d := range t.Drops {
		if d.ItemID == "" {
			return fmt.Errorf("reward table: drop[%d] must have a non-empty item id", i)
		}
		if d.Quantity < 1 {
			return fmt.Errorf("reward table: drop[%d] quantity must be >= 1, got %d", i, d.Quantity)
		}
		if !(d.Chance >= 0 && d.Chance <= 1.0) {
			return fmt.Errorf("reward table: drop[%d] chance must be in [0, 1.0], got %f", i, d.Chance)
		}
	}
	return nil
}

// Grant is one item awarded by a drop roll.
type Grant struct {
	ItemID   string
	Quantity int
}

// Float64Source is the subset of dice.Source used for drop rolls.
type Float64Source interface {
	Float64() float64
}

// RollDrops rolls every drop in t once and returns the granted items in table order.
//
// Postcondition: a drop is granted iff its draw is strictly below its Chance.
func RollDrops(t Table, src Float64Source) []Grant {
	var out []Grant
	for _, d := range t.Drops {
		if src.Float64() < d.Chance {
			out = append(out, Grant{ItemID: d.ItemID, Quantity: d.Quantity})
		}
	}
	return out
}
