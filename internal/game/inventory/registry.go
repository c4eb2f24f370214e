package inventory

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/reward"
)

// Registry holds all loaded item definitions indexed by ID. It is read-only
// once loading finishes and safe for concurrent lookups.
type Registry struct {
	items map[string]*ItemDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: the internal map is initialised.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*ItemDef)}
}

// LoadRegistry loads every item file in dir into a new Registry.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns an error on the first invalid file or duplicate id.
func LoadRegistry(dir string) (*Registry, error) {
	defs, err := LoadItems(dir)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, d := range defs {
		if err := r.RegisterItem(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RegisterItem adds d to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Def(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterItem(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterItem: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Def returns the ItemDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Def(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// Item resolves the metadata the engine needs for an attack item. Only weapons
// and shields can be attacked with; other kinds report not found.
func (r *Registry) Item(id string) (combat.ItemInfo, bool) {
	d, ok := r.items[id]
	if !ok || (d.Kind != KindWeapon && d.Kind != KindShield) {
		return combat.ItemInfo{}, false
	}
	return combat.ItemInfo{
		Name:        d.Name,
		Skill:       d.Skill,
		Shield:      d.Kind == KindShield,
		Greatshield: d.Kind == KindShield && d.Greatshield,
	}, true
}

// Names returns the display name of every registered item keyed by id.
func (r *Registry) Names() map[string]string {
	out := make(map[string]string, len(r.items))
	for id, d := range r.items {
		out[id] = d.Name
	}
	return out
}

// All returns every registered ItemDef sorted by id.
func (r *Registry) All() []*ItemDef {
	out := make([]*ItemDef, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Worn summarizes a set of equipped armor pieces.
type Worn struct {
	// Pieces counts equipped pieces per armor subtype.
	Pieces map[reward.Skill]int
	// Defense is the summed defense of all pieces.
	Defense int
}

// Armor resolves the equipped armor ids into per-subtype piece counts.
//
// Postcondition: returns an error if any id is unknown or not armor.
func (r *Registry) Armor(ids []string) (Worn, error) {
	w := Worn{Pieces: make(map[reward.Skill]int)}
	for _, id := range ids {
		d, ok := r.items[id]
		if !ok {
			return Worn{}, fmt.Errorf("inventory: unknown armor %q", id)
		}
		if d.Kind != KindArmor {
			return Worn{}, fmt.Errorf("inventory: item %q is %s, not armor", id, d.Kind)
		}
		w.Pieces[reward.Skill(d.Subtype)]++
		w.Defense += d.Defense
	}
	return w, nil
}
