package npc

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// ErrTemplateNotFound is returned by Spawn for an unknown template id.
var ErrTemplateNotFound = errors.New("npc template not found")

// Bestiary holds enemy templates by ID and hands out fresh combatant
// snapshots for each duel. All methods are safe for concurrent use.
type Bestiary struct {
	mu        sync.RWMutex
	templates map[string]*Template
	counter   atomic.Uint64
}

// NewBestiary creates an empty Bestiary.
func NewBestiary() *Bestiary {
	return &Bestiary{templates: make(map[string]*Template)}
}

// LoadBestiary loads every template in dir into a new Bestiary.
//
// Precondition: dir must be a readable directory.
func LoadBestiary(dir string) (*Bestiary, error) {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	b := NewBestiary()
	for _, t := range templates {
		if err := b.Register(t); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Register adds tmpl to the bestiary.
//
// Precondition: tmpl must be non-nil and valid.
// Postcondition: Returns an error if tmpl.ID is already registered.
func (b *Bestiary) Register(tmpl *Template) error {
	if tmpl == nil {
		return fmt.Errorf("npc.Bestiary.Register: tmpl must not be nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.templates[tmpl.ID]; exists {
		return fmt.Errorf("npc.Bestiary.Register: template %q already registered", tmpl.ID)
	}
	b.templates[tmpl.ID] = tmpl
	return nil
}

// Get returns the template with the given ID.
//
// Postcondition: Returns (tmpl, true) if found, or (nil, false) otherwise.
func (b *Bestiary) Get(id string) (*Template, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.templates[id]
	return t, ok
}

// Find returns the first template, in id order, whose Name or ID has target as
// a case-insensitive prefix. Returns nil if no match is found.
func (b *Bestiary) Find(target string) *Template {
	lower := strings.ToLower(target)
	for _, t := range b.All() {
		if strings.HasPrefix(strings.ToLower(t.ID), lower) || strings.HasPrefix(strings.ToLower(t.Name), lower) {
			return t
		}
	}
	return nil
}

// All returns every registered template sorted by ID.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (b *Bestiary) All() []*Template {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Template, 0, len(b.templates))
	for _, t := range b.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Spawn returns a full-health snapshot of template id under a combatant id
// unique within this Bestiary.
//
// Postcondition: Returns an error if the template is unknown.
func (b *Bestiary) Spawn(id string) (*Template, *combat.Snapshot, error) {
	tmpl, ok := b.Get(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	n := b.counter.Add(1)
	return tmpl, tmpl.Snapshot(fmt.Sprintf("%s-%d", tmpl.ID, n)), nil
}
