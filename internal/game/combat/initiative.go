package combat

// DefaultMaxTicks is the tick budget used when none is configured.
const DefaultMaxTicks = 100

// Tracker pairs one Action with its mutable readiness counter.
type Tracker struct {
	Owner     *Combatant
	Target    *Combatant
	Action    Action
	Readiness int
}

// RollInitiative builds one Tracker per action of both sides, attacker first,
// seeding each readiness with a random value in [0, speed) so same-speed
// actions do not fire in lock-step on tick 1.
//
// Precondition: every action has Speed > 0; src must be non-nil.
// Postcondition: len(result) == len(attacker actions) + len(defender actions).
func RollInitiative(p Pair, src Source) []*Tracker {
	trackers := make([]*Tracker, 0, len(p.Attacker.Actions)+len(p.Defender.Actions))
	for _, side := range []*Combatant{p.Attacker, p.Defender} {
		opp := p.Opponent(side)
		for _, a := range side.Actions {
			trackers = append(trackers, &Tracker{
				Owner:     side,
				Target:    opp,
				Action:    a,
				Readiness: src.Intn(a.Speed),
			})
		}
	}
	return trackers
}

// Simulate runs the tick loop until one side is down or maxTicks is exhausted.
//
// Each tick every tracker gains its action's speed, then fires while its
// readiness covers the cooldown and both sides are alive. Readiness is reduced
// by the cooldown rather than reset, so fast actions may fire twice in a tick.
// A non-positive maxTicks selects DefaultMaxTicks; a nil hooks selects NoopHooks.
//
// Precondition: p.Attacker and p.Defender are non-nil and distinct; every action
// has Speed > 0 and Cooldown > 0.
// Postcondition: Outcome is OutcomeVictory iff exactly one side has HP > 0.
func Simulate(p Pair, src Source, maxTicks int, hooks Hooks) *Result {
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}
	if hooks == nil {
		hooks = NoopHooks{}
	}

	res := &Result{
		Attacker:        p.Attacker,
		Defender:        p.Defender,
		InitialAttacker: p.Attacker.clone(),
		InitialDefender: p.Defender.clone(),
		Outcome:         OutcomeUnresolved,
	}

	trackers := RollInitiative(p, src)
	for tick := 1; tick <= maxTicks; tick++ {
		res.Ticks = tick
		for _, t := range trackers {
			t.Readiness += t.Action.Speed
			for t.Readiness >= t.Action.Cooldown && t.Owner.IsAlive() && t.Target.IsAlive() {
				a := hooks.BeforeAttack(t.Owner, t.Target, t.Action)
				entry := ResolveAction(tick, t.Owner, t.Target, a, src)
				t.Readiness -= t.Action.Cooldown
				res.Log = append(res.Log, entry)
				hooks.AfterAttack(t.Owner, t.Target, entry)
			}
		}
		if !p.Attacker.IsAlive() || !p.Defender.IsAlive() {
			res.Outcome = OutcomeVictory
			break
		}
	}
	return res
}
