// Package combat implements the tick-based duel engine: action resolution,
// the initiative scheduler, and the orchestrator that drives them.
package combat

// Outcome is the terminal state of a simulated duel.
type Outcome int

const (
	// OutcomeVictory means exactly one side is still standing.
	OutcomeVictory Outcome = iota
	// OutcomeUnresolved means the tick budget ran out with both sides alive.
	OutcomeUnresolved
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Action is one timed capability of a Combatant: a weapon strike, an unarmed
// strike, or a shield raise.
//
// Invariant: Speed > 0 and Cooldown > 0 once the Engine has accepted it.
type Action struct {
	ID   string
	Name string
	// Skill is the offense skill the action trains: the weapon category,
	// the shield subtype, or "unarmed".
	Skill       string
	Speed       int
	Cooldown    int
	Attack      int
	Accuracy    int
	Crit        int // per-mille
	Shield      bool
	Greatshield bool
}

// Combatant is one side of a duel. HP and shield fields are mutated in place
// while the scheduler runs.
type Combatant struct {
	ID         string
	Name       string
	Level      int
	MaxHP      int
	CurrentHP  int
	Defense    int
	Evade      int
	CritResist int // percent; scaled to per-mille when rolled against
	// ShieldStrength is the accumulated absorb pool raised by shield actions.
	ShieldStrength int
	// Greatshield marks the pool as partially consumable.
	Greatshield bool
	Actions     []Action
}

// IsAlive reports whether the combatant still has hit points.
func (c *Combatant) IsAlive() bool { return c.CurrentHP > 0 }

// ApplyDamage reduces CurrentHP by amount, flooring at zero.
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.CurrentHP -= amount
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
}

// ActionByID returns the combatant's action with the given id.
func (c *Combatant) ActionByID(id string) (Action, bool) {
	for _, a := range c.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// ShieldActions returns the combatant's shield actions in declaration order.
func (c *Combatant) ShieldActions() []Action {
	var out []Action
	for _, a := range c.Actions {
		if a.Shield {
			out = append(out, a)
		}
	}
	return out
}

// clone returns a deep copy so callers can keep a pre-fight snapshot.
func (c *Combatant) clone() *Combatant {
	cp := *c
	cp.Actions = make([]Action, len(c.Actions))
	copy(cp.Actions, c.Actions)
	return &cp
}

// LogEntry is the immutable record of one resolved action. The ordered log is
// sufficient to narrate the fight without touching combatant state.
type LogEntry struct {
	Tick       int
	AttackerID string
	TargetID   string
	ActionID   string
	ActionName string
	// Shield is true when the entry records a shield raise rather than a strike.
	Shield   bool
	Hit      bool
	Crit     bool
	Resisted bool
	// Attack is the attack value the action fired with.
	Attack int
	// Damage is the HP actually removed from the target.
	Damage int
	// Overkill is the damage that passed the shield but exceeded the target's
	// remaining HP.
	Overkill int
	// ResistedBonus is the crit damage the target's crit resistance prevented.
	ResistedBonus int
	// ShieldGranted is the strength a shield action added to the attacker.
	ShieldGranted int
	// Absorbed is the damage the target's shield soaked up.
	Absorbed       int
	TargetHP       int
	TargetShield   int
	AttackerShield int
}

// Pair is the two sides of a duel. The engine is defined over exactly two
// combatants; the roles are named rather than indexed.
type Pair struct {
	Attacker *Combatant
	Defender *Combatant
}

// Opponent returns the side facing c, or nil when c belongs to neither side.
func (p Pair) Opponent(c *Combatant) *Combatant {
	switch c {
	case p.Attacker:
		return p.Defender
	case p.Defender:
		return p.Attacker
	default:
		return nil
	}
}

// Result is the finished simulation: the final combatant states, the ordered
// log, and the terminal outcome.
type Result struct {
	Attacker *Combatant
	Defender *Combatant
	// Initial holds copies of both sides taken before the first tick.
	InitialAttacker *Combatant
	InitialDefender *Combatant
	Log             []LogEntry
	Ticks           int
	Outcome         Outcome
}

// Winner returns the surviving side when the duel has a victor.
//
// Postcondition: ok is false iff Outcome is OutcomeUnresolved.
func (r *Result) Winner() (winner *Combatant, ok bool) {
	if r.Outcome != OutcomeVictory {
		return nil, false
	}
	if r.Attacker.IsAlive() {
		return r.Attacker, true
	}
	return r.Defender, true
}

// Loser returns the defeated side when the duel has a victor.
func (r *Result) Loser() (*Combatant, bool) {
	w, ok := r.Winner()
	if !ok {
		return nil, false
	}
	return r.Pair().Opponent(w), true
}

// Pair returns the final combatant states as a Pair.
func (r *Result) Pair() Pair {
	return Pair{Attacker: r.Attacker, Defender: r.Defender}
}

// Combatant returns the final state of the side with the given id.
func (r *Result) Combatant(id string) *Combatant {
	switch id {
	case r.Attacker.ID:
		return r.Attacker
	case r.Defender.ID:
		return r.Defender
	default:
		return nil
	}
}
