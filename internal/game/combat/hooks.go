package combat

// Hooks are the lifecycle extension points reserved for passive-skill effects.
// The Engine calls them synchronously from the goroutine running the duel.
type Hooks interface {
	// CombatBegin runs once, after both combatants are built and before tick 1.
	CombatBegin(p Pair)
	// BeforeAttack runs before every firing and returns the action to resolve.
	// Returning a unchanged is the no-op.
	BeforeAttack(attacker, defender *Combatant, a Action) Action
	// AfterAttack runs after every firing with its final log entry.
	AfterAttack(attacker, defender *Combatant, entry LogEntry)
	// CombatEnd runs once with the finished result.
	CombatEnd(r *Result)
}

// NoopHooks is the default Hooks implementation: every hook does nothing and
// BeforeAttack returns its action unchanged.
type NoopHooks struct{}

func (NoopHooks) CombatBegin(Pair)                              {}
func (NoopHooks) BeforeAttack(_, _ *Combatant, a Action) Action { return a }
func (NoopHooks) AfterAttack(_, _ *Combatant, _ LogEntry)       {}
func (NoopHooks) CombatEnd(*Result)                             {}

// HookChain calls each Hooks in order. BeforeAttack threads the action through
// every member so later hooks see earlier modifications.
type HookChain []Hooks

func (c HookChain) CombatBegin(p Pair) {
	for _, h := range c {
		h.CombatBegin(p)
	}
}

func (c HookChain) BeforeAttack(attacker, defender *Combatant, a Action) Action {
	for _, h := range c {
		a = h.BeforeAttack(attacker, defender, a)
	}
	return a
}

func (c HookChain) AfterAttack(attacker, defender *Combatant, entry LogEntry) {
	for _, h := range c {
		h.AfterAttack(attacker, defender, entry)
	}
}

func (c HookChain) CombatEnd(r *Result) {
	for _, h := range c {
		h.CombatEnd(r)
	}
}
