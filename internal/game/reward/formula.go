package reward

import "math"

// Skill names an offense skill (weapon category, shield subtype, "unarmed")
// or a defense skill (armor subtype).
type Skill string

// SkillUnarmed is the offense skill trained by unarmed strikes.
const SkillUnarmed Skill = "unarmed"

// floorEpsilon absorbs float error so exact powers of ten floor to the
// integer they represent (log10(10)*100 must be 100, not 99).
const floorEpsilon = 1e-9

// SkillLevels is the lookup table of current skill levels, resolved once when
// the combatant is loaded. Missing skills are level 0.
type SkillLevels map[Skill]int

// Experience returns the experience a winner of winnerLevel earns for
// defeating a loser of loserLevel:
//
//	max(1, floor(100/sqrt(w) * (l/w)^1.2))
//
// Levels below 1 are treated as 1.
//
// Postcondition: Returns >= 1.
func Experience(winnerLevel, loserLevel int) int {
	w := float64(max(1, winnerLevel))
	l := float64(max(1, loserLevel))
	xp := math.Floor(100 / math.Sqrt(w) * math.Pow(l/w, 1.2))
	return max(1, int(xp))
}

// SkillExperience returns the skill experience earned for value points of
// damage, shielding or mitigation at the given skill level:
//
//	floor(log10(value+1) * 100 / (level+1))
//
// Postcondition: Returns >= 0; returns 0 when value <= 0.
func SkillExperience(value, level int) int {
	if value <= 0 {
		return 0
	}
	level = max(0, level)
	return int(math.Floor(math.Log10(float64(value)+1)*100/float64(level+1) + floorEpsilon))
}

// Curve gives the experience required to advance past a level.
type Curve interface {
	Required(level int) int
}

// PowerCurve requires floor(Base * level^Exponent) experience to leave a level.
type PowerCurve struct {
	Base     float64
	Exponent float64
}

// Required returns the experience needed to go from level to level+1.
//
// Postcondition: Returns >= 1.
func (c PowerCurve) Required(level int) int {
	level = max(1, level)
	return max(1, int(math.Floor(c.Base*math.Pow(float64(level), c.Exponent))))
}

// DefaultCurve is the progression curve used for characters and skills.
var DefaultCurve Curve = PowerCurve{Base: 100, Exponent: 1.5}

// Advance adds gain to experience accumulated within level and carries any
// overflow into new levels.
//
// Precondition: curve must be non-nil; gain >= 0.
// Postcondition: 0 <= newExperience < curve.Required(newLevel); newLevel >= level.
func Advance(level, experience, gain int, curve Curve) (newLevel, newExperience int) {
	newLevel = level
	newExperience = max(0, experience) + max(0, gain)
	for newExperience >= curve.Required(newLevel) {
		newExperience -= curve.Required(newLevel)
		newLevel++
	}
	return newLevel, newExperience
}
