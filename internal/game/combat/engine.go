package combat

import (
	"fmt"

	"go.uber.org/zap"
)

// UnarmedName is the display name of an attack with no item.
const UnarmedName = "Fists"

// UnarmedSkill is the offense skill trained by attacks with no item.
const UnarmedSkill = "unarmed"

// AttackSnapshot is one attack as resolved by the character or enemy layer,
// with stats already computed from equipped items and base stats.
type AttackSnapshot struct {
	// ID identifies the attack within its owner. Defaults to ItemID, or
	// "unarmed" for an attack with no item.
	ID string `yaml:"id"`
	// ItemID is the weapon or shield used; empty means an unarmed strike.
	ItemID   string `yaml:"item"`
	Speed    int    `yaml:"speed"`
	Cooldown int    `yaml:"cooldown"`
	Attack   int    `yaml:"attack"`
	Accuracy int    `yaml:"accuracy"`
	Crit     int    `yaml:"crit"`
}

// Snapshot is the plain-data view of one side handed to the Engine.
type Snapshot struct {
	ID         string
	Name       string
	Level      int
	MaxHP      int
	CurrentHP  int
	Defense    int
	Evade      int
	CritResist int
	Attacks    []AttackSnapshot
}

// ItemInfo is the metadata the Engine needs about an item used by an attack.
type ItemInfo struct {
	Name        string
	Skill       string
	Shield      bool
	Greatshield bool
}

// ItemCatalog resolves item metadata by id.
type ItemCatalog interface {
	Item(id string) (ItemInfo, bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxTicks overrides DefaultMaxTicks. Non-positive values are ignored.
func WithMaxTicks(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTicks = n
		}
	}
}

// WithHooks installs lifecycle hooks. A nil value keeps NoopHooks.
func WithHooks(h Hooks) Option {
	return func(e *Engine) {
		if h != nil {
			e.hooks = h
		}
	}
}

// Engine turns two Snapshots into a finished Result. It holds no per-duel
// state; one Engine may run many duels concurrently provided src is safe for
// concurrent use.
type Engine struct {
	src      Source
	catalog  ItemCatalog
	logger   *zap.Logger
	hooks    Hooks
	maxTicks int
}

// NewEngine creates an Engine.
//
// Precondition: src, catalog and logger must be non-nil.
// Postcondition: Returns a non-nil Engine using NoopHooks and DefaultMaxTicks
// unless overridden by opts.
func NewEngine(src Source, catalog ItemCatalog, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		src:      src,
		catalog:  catalog,
		logger:   logger,
		hooks:    NoopHooks{},
		maxTicks: DefaultMaxTicks,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxTicks returns the tick budget applied to every duel.
func (e *Engine) MaxTicks() int { return e.maxTicks }

// Run validates both snapshots, builds the combatants, and simulates the duel.
//
// Precondition: none; invalid input is reported, not assumed away.
// Postcondition: Returns a *SetupError without simulating when either snapshot
// is nil, has no attacks, has an attack with Speed <= 0 or Cooldown <= 0 or an
// unknown item, or has no hit points. Otherwise returns the finished Result.
//
// duel hooks run after the Engine's own hooks and apply to this duel only.
func (e *Engine) Run(attacker, defender *Snapshot, duel ...Hooks) (*Result, error) {
	a, err := e.build("attacker", attacker)
	if err != nil {
		e.logger.Warn("combat setup rejected", zap.Error(err))
		return nil, err
	}
	d, err := e.build("defender", defender)
	if err != nil {
		e.logger.Warn("combat setup rejected", zap.Error(err))
		return nil, err
	}
	if a.ID == d.ID {
		err := setupErr("defender", fmt.Errorf("%w: both sides have id %q", ErrInvalidCombatant, a.ID))
		e.logger.Warn("combat setup rejected", zap.Error(err))
		return nil, err
	}

	hooks := e.hooks
	if len(duel) > 0 {
		hooks = append(HookChain{hooks}, duel...)
	}

	p := Pair{Attacker: a, Defender: d}
	hooks.CombatBegin(p)
	res := Simulate(p, e.src, e.maxTicks, hooks)
	hooks.CombatEnd(res)

	e.logger.Debug("combat resolved",
		zap.String("attacker", a.ID),
		zap.String("defender", d.ID),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("ticks", res.Ticks),
		zap.Int("entries", len(res.Log)),
		zap.Int("attacker_hp", a.CurrentHP),
		zap.Int("defender_hp", d.CurrentHP),
	)
	return res, nil
}

// build converts a Snapshot into a fresh Combatant, resolving item metadata.
func (e *Engine) build(side string, s *Snapshot) (*Combatant, error) {
	if s == nil {
		return nil, setupErr(side, ErrMissingCombatant)
	}
	if s.ID == "" {
		return nil, setupErr(side, fmt.Errorf("%w: empty id", ErrInvalidCombatant))
	}
	if s.CurrentHP <= 0 {
		return nil, setupErr(side, fmt.Errorf("%w: %q has %d hp", ErrInvalidCombatant, s.ID, s.CurrentHP))
	}
	if len(s.Attacks) == 0 {
		return nil, setupErr(side, fmt.Errorf("%w: %q", ErrNoActions, s.ID))
	}

	c := &Combatant{
		ID:         s.ID,
		Name:       s.Name,
		Level:      s.Level,
		MaxHP:      max(s.MaxHP, s.CurrentHP),
		CurrentHP:  s.CurrentHP,
		Defense:    s.Defense,
		Evade:      s.Evade,
		CritResist: s.CritResist,
		Actions:    make([]Action, 0, len(s.Attacks)),
	}
	if c.Name == "" {
		c.Name = c.ID
	}

	seen := make(map[string]bool, len(s.Attacks))
	for i, as := range s.Attacks {
		act, err := e.action(as)
		if err != nil {
			return nil, setupErr(side, fmt.Errorf("%q attack[%d]: %w", s.ID, i, err))
		}
		if seen[act.ID] {
			return nil, setupErr(side, fmt.Errorf("%w: %q attack[%d]: duplicate id %q", ErrInvalidAction, s.ID, i, act.ID))
		}
		seen[act.ID] = true
		c.Actions = append(c.Actions, act)
	}
	return c, nil
}

func (e *Engine) action(as AttackSnapshot) (Action, error) {
	if as.Speed <= 0 {
		return Action{}, fmt.Errorf("%w: speed must be > 0, got %d", ErrInvalidAction, as.Speed)
	}
	if as.Cooldown <= 0 {
		return Action{}, fmt.Errorf("%w: cooldown must be > 0, got %d", ErrInvalidAction, as.Cooldown)
	}

	act := Action{
		ID:       as.ID,
		Name:     UnarmedName,
		Skill:    UnarmedSkill,
		Speed:    as.Speed,
		Cooldown: as.Cooldown,
		Attack:   as.Attack,
		Accuracy: as.Accuracy,
		Crit:     as.Crit,
	}
	if as.ItemID != "" {
		info, ok := e.catalog.Item(as.ItemID)
		if !ok {
			return Action{}, fmt.Errorf("%w: unknown item %q", ErrInvalidAction, as.ItemID)
		}
		act.Name = info.Name
		act.Skill = info.Skill
		act.Shield = info.Shield
		act.Greatshield = info.Shield && info.Greatshield
	}
	if act.ID == "" {
		act.ID = as.ItemID
		if act.ID == "" {
			act.ID = UnarmedSkill
		}
	}
	return act, nil
}
