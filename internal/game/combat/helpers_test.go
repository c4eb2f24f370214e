package combat_test

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// fixedSrc is a deterministic Source that returns val for every Intn call,
// clamped into [0, n).
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

// seqSrc returns vals in order, clamped into [0, n), then repeats the last value.
type seqSrc struct {
	vals []int
	i    int
}

func (s *seqSrc) Intn(n int) int {
	v := 0
	if len(s.vals) > 0 {
		idx := min(s.i, len(s.vals)-1)
		v = s.vals[idx]
		s.i++
	}
	if v >= n {
		return n - 1
	}
	return v
}

// mapCatalog is an in-memory ItemCatalog.
type mapCatalog map[string]combat.ItemInfo

func (m mapCatalog) Item(id string) (combat.ItemInfo, bool) {
	info, ok := m[id]
	return info, ok
}

func testCatalog() mapCatalog {
	return mapCatalog{
		"longsword": {Name: "Longsword", Skill: "sword"},
		"buckler":   {Name: "Buckler", Skill: "shield", Shield: true},
		"tower":     {Name: "Tower Shield", Skill: "greatshield", Shield: true, Greatshield: true},
	}
}

func fighter(id string, hp int) *combat.Combatant {
	return &combat.Combatant{
		ID: id, Name: id, Level: 1, MaxHP: hp, CurrentHP: hp,
		Actions: []combat.Action{
			{ID: "fists", Name: "Fists", Skill: "unarmed", Speed: 10, Cooldown: 10, Attack: 5, Accuracy: 100},
		},
	}
}
