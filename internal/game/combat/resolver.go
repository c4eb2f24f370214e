package combat

// Source is the subset of dice.Source used by the resolver and scheduler.
// Using a local interface avoids a circular import.
type Source interface {
	Intn(n int) int
}

// evadeCeiling is the evade/accuracy ratio at and above which an action can never hit.
const evadeCeiling = 4.0

// HitChance returns the percentage chance, in [0, 100], that an action with the
// given accuracy lands against the given evade rating.
//
// Zero evade and zero accuracy are normalized to 1. The raw curve exceeds 100
// when evade is far below accuracy; the result is clamped so such actions
// always hit rather than overflow into the crit scaling.
//
// Postcondition: 0 <= result <= 100; result == 0 when evade/accuracy >= 4.
func HitChance(accuracy, evade int) float64 {
	if accuracy <= 0 {
		accuracy = 1
	}
	if evade <= 0 {
		evade = 1
	}
	ratio := float64(evade) / float64(accuracy)
	if ratio >= evadeCeiling {
		return 0
	}
	x := (ratio - 1) / 3
	chance := (1 - x) / (1 + x) * 100
	switch {
	case chance < 0:
		return 0
	case chance > 100:
		return 100
	default:
		return chance
	}
}

// normalDamage is attack minus defense, never below 1.
func normalDamage(attack, defense int) int {
	return max(1, attack-defense)
}

// critDamage doubles the attack and ignores defense.
func critDamage(attack int) int {
	return max(1, attack) * 2
}

// ResolveAction resolves one firing of a against defender and applies its side
// effects: HP and shield loss on the defender, shield gain on the attacker.
//
// Hit: src.Intn(100) < HitChance. Shield actions grant a.Attack shield strength.
// Damage actions roll src.Intn(1000) against a crit rate scaled by the hit
// chance; a would-be crit below the defender's resistance (CritResist*10) is
// downgraded to a normal hit and the prevented bonus recorded.
//
// Precondition: attacker, defender and src must be non-nil.
// Postcondition: defender.CurrentHP >= 0; entry.Damage is the HP actually
// removed; the returned entry reflects state after all side effects were applied.
func ResolveAction(tick int, attacker, defender *Combatant, a Action, src Source) LogEntry {
	entry := LogEntry{
		Tick:       tick,
		AttackerID: attacker.ID,
		TargetID:   defender.ID,
		ActionID:   a.ID,
		ActionName: a.Name,
		Shield:     a.Shield,
		Attack:     a.Attack,
	}

	chance := HitChance(a.Accuracy, defender.Evade)
	roll := src.Intn(100)
	entry.Hit = float64(roll) < chance

	switch {
	case !entry.Hit:
	case a.Shield:
		gain := max(0, a.Attack)
		attacker.ShieldStrength += gain
		attacker.Greatshield = a.Greatshield
		entry.ShieldGranted = gain
	default:
		dmg := strike(&entry, a, defender, chance, src)
		dmg = absorb(&entry, defender, dmg)
		before := defender.CurrentHP
		defender.ApplyDamage(dmg)
		entry.Damage = before - defender.CurrentHP
		entry.Overkill = dmg - entry.Damage
	}

	entry.TargetHP = defender.CurrentHP
	entry.TargetShield = defender.ShieldStrength
	entry.AttackerShield = attacker.ShieldStrength
	return entry
}

// strike rolls the crit tier of a landed damage action and returns the raw damage.
func strike(entry *LogEntry, a Action, defender *Combatant, chance float64, src Source) int {
	critRate := float64(a.Crit)
	if chance > 0 {
		critRate = critRate * chance / 100
	}
	critResist := defender.CritResist * 10
	critRoll := src.Intn(1000)

	normal := normalDamage(a.Attack, defender.Defense)
	switch {
	case float64(critRoll) >= critRate:
		return normal
	case critRoll < critResist:
		entry.Resisted = true
		entry.ResistedBonus = max(0, critDamage(a.Attack)-normal)
		return normal
	default:
		entry.Crit = true
		return critDamage(a.Attack)
	}
}

// absorb soaks dmg into the defender's shield and returns what passes through.
// A greatshield loses only what it absorbed; a regular shield is spent entirely.
func absorb(entry *LogEntry, defender *Combatant, dmg int) int {
	if defender.ShieldStrength <= 0 || dmg <= 0 {
		return dmg
	}
	absorbed := min(defender.ShieldStrength, dmg)
	if defender.Greatshield {
		defender.ShieldStrength -= absorbed
	} else {
		defender.ShieldStrength = 0
	}
	entry.Absorbed = absorbed
	return dmg - absorbed
}
