package reward

import (
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Input is everything the calculator needs beyond the log itself.
type Input struct {
	// Result is the finished duel. It must have a winner.
	Result *combat.Result
	// Table is the defeated side's reward configuration.
	Table Table
	// Experience is the winner's experience accumulated within its current level.
	Experience int
	// Offense and Defense are the winner's current skill levels.
	Offense SkillLevels
	Defense SkillLevels
	// Armor is the winner's equipped armor piece count per subtype.
	Armor map[Skill]int
}

// Mitigation breaks down the damage the winner avoided while being attacked.
type Mitigation struct {
	Dodged        int
	Reduced       int
	CritMitigated int
}

// Total returns the sum of all mitigation sources.
func (m Mitigation) Total() int { return m.Dodged + m.Reduced + m.CritMitigated }

// Result is the derived reward for the winner of one duel.
type Result struct {
	WinnerID string
	LoserID  string
	Gold     int
	// Experience is the experience gained; LevelUp reports whether it crossed
	// at least one level threshold, ending at NewLevel.
	Experience int
	LevelUp    bool
	NewLevel   int
	Drops      []Grant
	// Offense maps weapon, shield and unarmed skills to experience gained.
	Offense map[Skill]int
	// Defense maps armor subtypes to experience gained.
	Defense    map[Skill]int
	Mitigation Mitigation
}

// Calculator is a pure reducer over a finished duel log. The only randomness
// it consumes is the drop roll.
type Calculator struct {
	src   Float64Source
	curve Curve
}

// NewCalculator creates a Calculator. A nil curve selects DefaultCurve.
//
// Precondition: src must be non-nil.
func NewCalculator(src Float64Source, curve Curve) *Calculator {
	if curve == nil {
		curve = DefaultCurve
	}
	return &Calculator{src: src, curve: curve}
}

// Curve returns the level curve the calculator advances along.
func (c *Calculator) Curve() Curve { return c.curve }

// Calculate derives the reward for the winner of in.Result.
//
// Precondition: in.Result must be non-nil with Outcome == OutcomeVictory.
// Calling Calculate on an unresolved duel is a programming error and panics.
// Postcondition: the log is not modified; Experience >= 1.
func (c *Calculator) Calculate(in Input) *Result {
	if in.Result == nil {
		panic("reward: Calculate precondition violated: result must be non-nil")
	}
	winner, ok := in.Result.Winner()
	if !ok {
		panic("reward: Calculate precondition violated: combat has no winner")
	}
	loser, _ := in.Result.Loser()

	loserLevel := in.Table.Level
	if loserLevel == 0 {
		loserLevel = loser.Level
	}
	xp := Experience(winner.Level, loserLevel)
	level := max(1, winner.Level)
	newLevel, _ := Advance(level, in.Experience, xp, c.curve)

	mit := Mitigated(in.Result.Log, winner)
	return &Result{
		WinnerID:   winner.ID,
		LoserID:    loser.ID,
		Gold:       in.Table.Gold,
		Experience: xp,
		LevelUp:    newLevel > level,
		NewLevel:   newLevel,
		Drops:      RollDrops(in.Table, c.src),
		Offense:    OffenseExperience(in.Result.Log, winner, in.Offense),
		Defense:    DefenseExperience(mit, in.Armor, in.Defense),
		Mitigation: mit,
	}
}

// OffenseExperience groups the winner's landed actions by action and converts
// each group's value to experience for the action's skill.
//
// A damage group's value is the damage it dealt. A shield group's value is the
// shield it granted plus an even share of all damage absorbed by the winner's
// shield during the fight, split across every shield action the winner has.
// When the split is uneven the earlier shield actions take the remainder.
//
// Postcondition: only skills with experience > 0 appear in the result.
func OffenseExperience(log []combat.LogEntry, winner *combat.Combatant, levels SkillLevels) map[Skill]int {
	values := make(map[string]int, len(winner.Actions))
	absorbed := 0
	for _, e := range log {
		switch {
		case e.AttackerID == winner.ID && e.Hit && e.Shield:
			values[e.ActionID] += e.ShieldGranted
		case e.AttackerID == winner.ID && e.Hit:
			values[e.ActionID] += e.Damage
		case e.TargetID == winner.ID && !e.Shield:
			absorbed += e.Absorbed
		}
	}

	if shields := winner.ShieldActions(); absorbed > 0 && len(shields) > 0 {
		share, rem := absorbed/len(shields), absorbed%len(shields)
		for i, a := range shields {
			values[a.ID] += share
			if i < rem {
				values[a.ID]++
			}
		}
	}

	out := make(map[Skill]int)
	for _, a := range winner.Actions {
		v := values[a.ID]
		if v <= 0 {
			continue
		}
		skill := Skill(a.Skill)
		if skill == "" {
			skill = SkillUnarmed
		}
		if xp := SkillExperience(v, levels[skill]); xp > 0 {
			out[skill] += xp
		}
	}
	return out
}

// Mitigated totals the damage the winner avoided as a target.
//
// Missed attacks count as dodged for max(0, attack - defense); non-crit hits
// count attack minus the damage dealt, overkill included, as reduced; resisted
// crits add their prevented bonus as crit-mitigated. Confirmed crits mitigate
// nothing.
func Mitigated(log []combat.LogEntry, winner *combat.Combatant) Mitigation {
	var m Mitigation
	for _, e := range log {
		if e.TargetID != winner.ID || e.Shield {
			continue
		}
		switch {
		case !e.Hit:
			m.Dodged += max(0, e.Attack-winner.Defense)
		case e.Crit:
		default:
			m.Reduced += max(0, e.Attack-e.Damage-e.Overkill)
			if e.Resisted {
				m.CritMitigated += e.ResistedBonus
			}
		}
	}
	return m
}

// DefenseExperience awards every equipped armor subtype experience for the
// total mitigation, multiplied by the number of pieces of that subtype.
//
// Postcondition: returns an empty map when mitigation is zero.
func DefenseExperience(m Mitigation, armor map[Skill]int, levels SkillLevels) map[Skill]int {
	out := make(map[Skill]int)
	total := m.Total()
	if total <= 0 {
		return out
	}

	subtypes := make([]Skill, 0, len(armor))
	for s := range armor {
		subtypes = append(subtypes, s)
	}
	sort.Slice(subtypes, func(i, j int) bool { return subtypes[i] < subtypes[j] })

	for _, s := range subtypes {
		pieces := armor[s]
		if pieces <= 0 {
			continue
		}
		if xp := SkillExperience(total, levels[s]) * pieces; xp > 0 {
			out[s] = xp
		}
	}
	return out
}
