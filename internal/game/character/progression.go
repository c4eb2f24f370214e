package character

import (
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/reward"
)

// HPPerLevel is the max HP a character gains for every level reached.
const HPPerLevel = 5

// Gains is everything a finished duel changes on a character sheet.
type Gains struct {
	Gold       int
	Experience int
	Items      []reward.Grant
	Offense    map[reward.Skill]int
	Defense    map[reward.Skill]int
	// CurrentHP is the hit points the character ended the duel with.
	CurrentHP int
}

// GainsFrom converts a reward into sheet gains. A nil reward (lost or
// unresolved duel) yields gains carrying only the final HP.
func GainsFrom(r *reward.Result, finalHP int) Gains {
	g := Gains{CurrentHP: finalHP}
	if r == nil {
		return g
	}
	g.Gold = r.Gold
	g.Experience = r.Experience
	g.Items = append([]reward.Grant(nil), r.Drops...)
	g.Offense = r.Offense
	g.Defense = r.Defense
	return g
}

// Advancement reports what ApplyGains changed beyond plain accumulation.
type Advancement struct {
	LevelsGained int
	// SkillsRaised lists every skill that gained at least one level, sorted.
	SkillsRaised []reward.Skill
}

// ApplyGains returns a copy of c with g applied. Character and skill
// experience carry over into new levels along curve; each character level
// gained adds HPPerLevel max HP. c is not modified.
//
// Precondition: c must be non-nil; a nil curve selects reward.DefaultCurve.
// Postcondition: 0 <= result.CurrentHP <= result.MaxHP.
func ApplyGains(c *Character, g Gains, curve reward.Curve) (*Character, Advancement) {
	if curve == nil {
		curve = reward.DefaultCurve
	}
	out := c.Clone()
	var adv Advancement

	level, xp := reward.Advance(max(1, out.Level), out.Experience, g.Experience, curve)
	adv.LevelsGained = level - max(1, out.Level)
	out.Level, out.Experience = level, xp
	out.MaxHP += adv.LevelsGained * HPPerLevel
	out.CurrentHP = min(max(0, g.CurrentHP), out.MaxHP)
	out.Gold += max(0, g.Gold)

	for _, item := range g.Items {
		out.Items[item.ItemID] += item.Quantity
	}

	raised := advanceSkills(out.OffenseSkills, g.Offense, curve)
	raised = append(raised, advanceSkills(out.DefenseSkills, g.Defense, curve)...)
	sort.Slice(raised, func(i, j int) bool { return raised[i] < raised[j] })
	adv.SkillsRaised = raised
	return out, adv
}

func advanceSkills(skills map[reward.Skill]Progress, gains map[reward.Skill]int, curve reward.Curve) []reward.Skill {
	var raised []reward.Skill
	for s, xp := range gains {
		p := skills[s]
		level, exp := reward.Advance(p.Level, p.Experience, xp, curve)
		if level > p.Level {
			raised = append(raised, s)
		}
		skills[s] = Progress{Level: level, Experience: exp}
	}
	return raised
}
