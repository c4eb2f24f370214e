package encounter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/reward"
)

// Roster looks up character sheets by id.
type Roster interface {
	// Character returns a copy of the sheet the caller may modify, or an error
	// wrapping ErrCharacterNotFound.
	Character(ctx context.Context, id string) (*character.Character, error)
}

// Ledger persists the outcome of an encounter for one character.
type Ledger interface {
	Apply(ctx context.Context, id string, g character.Gains) error
}

// Hydrator overlays persisted progression onto a sheet loaded from content.
// *postgres.ProgressRepository satisfies it.
type Hydrator interface {
	Hydrate(ctx context.Context, c *character.Character) error
}

// Hydrated returns a Roster that reads sheets from base and overlays h.
func Hydrated(base Roster, h Hydrator) Roster {
	return hydrated{base: base, h: h}
}

type hydrated struct {
	base Roster
	h    Hydrator
}

func (r hydrated) Character(ctx context.Context, id string) (*character.Character, error) {
	c, err := r.base.Character(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.h.Hydrate(ctx, c); err != nil {
		return nil, fmt.Errorf("hydrating character %q: %w", id, err)
	}
	return c, nil
}

// MemoryStore is an in-process Roster and Ledger. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string]*character.Character
	curve  reward.Curve
}

// NewMemoryStore creates a store holding copies of sheets. A nil curve selects
// reward.DefaultCurve.
//
// Postcondition: Returns a non-nil MemoryStore; later sheets replace earlier
// ones with the same id.
func NewMemoryStore(curve reward.Curve, sheets ...*character.Character) *MemoryStore {
	if curve == nil {
		curve = reward.DefaultCurve
	}
	s := &MemoryStore{sheets: make(map[string]*character.Character, len(sheets)), curve: curve}
	for _, c := range sheets {
		s.Put(c)
	}
	return s
}

// Put stores a copy of c, replacing any sheet with the same id.
func (s *MemoryStore) Put(c *character.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[c.ID] = c.Clone()
}

// IDs returns the stored character ids, sorted.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sheets))
	for id := range s.sheets {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Character implements Roster.
func (s *MemoryStore) Character(ctx context.Context, id string) (*character.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sheets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCharacterNotFound, id)
	}
	return c.Clone(), nil
}

// Apply implements Ledger by replacing the stored sheet with g applied.
func (s *MemoryStore) Apply(ctx context.Context, id string, g character.Gains) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sheets[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCharacterNotFound, id)
	}
	s.sheets[id], _ = character.ApplyGains(c, g, s.curve)
	return nil
}
