package reward_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/reward"
)

// fixedFloat returns the same draw for every Float64 call.
type fixedFloat float64

func (f fixedFloat) Float64() float64 { return float64(f) }

func validTable() reward.Table {
	return reward.Table{
		Gold:  12,
		Level: 3,
		Drops: []reward.Drop{
			{ItemID: "fang", Quantity: 1, Chance: 0.5},
			{ItemID: "hide", Quantity: 2, Chance: 1.0},
		},
	}
}

func TestTable_Validate_AcceptsValid(t *testing.T) {
	tbl := validTable()
	assert.NoError(t, tbl.Validate())
}

func TestTable_Validate_Empty(t *testing.T) {
	tbl := reward.Table{}
	assert.NoError(t, tbl.Validate())
}

func TestTable_Validate_ZeroChanceNeverDrops(t *testing.T) {
	tbl := reward.Table{Drops: []reward.Drop{{ItemID: "fang", Quantity: 1}}}
	require.NoError(t, tbl.Validate())
	assert.Empty(t, reward.RollDrops(tbl, fixedFloat(0)))
}

func TestTable_Validate_Rejects(t *testing.T) {
	cases := map[string]reward.Table{
		"negative gold":   {Gold: -1},
		"negative level":  {Level: -2},
		"empty item":      {Drops: []reward.Drop{{Quantity: 1, Chance: 0.5}}},
		"zero quantity":   {Drops: []reward.Drop{{ItemID: "fang", Chance: 0.5}}},
		"negative chance": {Drops: []reward.Drop{{ItemID: "fang", Quantity: 1, Chance: -0.1}}},
		"NaN chance":      {Drops: []reward.Drop{{ItemID: "fang", Quantity: 1, Chance: math.NaN()}}},
		"chance above 1":  {Drops: []reward.Drop{{ItemID: "fang", Quantity: 1, Chance: 1.5}}},
	}
	for name, tbl := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, tbl.Validate())
		})
	}
}

func TestRollDrops_GrantsBelowChance(t *testing.T) {
	grants := reward.RollDrops(validTable(), fixedFloat(0.3))
	require.Len(t, grants, 2)
	assert.Equal(t, reward.Grant{ItemID: "fang", Quantity: 1}, grants[0])
	assert.Equal(t, reward.Grant{ItemID: "hide", Quantity: 2}, grants[1])
}

func TestRollDrops_DrawEqualToChanceMisses(t *testing.T) {
	grants := reward.RollDrops(validTable(), fixedFloat(0.5))
	require.Len(t, grants, 1)
	assert.Equal(t, "hide", grants[0].ItemID)
}

func TestRollDrops_NoDrops(t *testing.T) {
	assert.Empty(t, reward.RollDrops(reward.Table{Gold: 5}, fixedFloat(0)))
}

func TestRollDrops_Property_GuaranteedDropsAlwaysGrant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		draw := rapid.Float64Range(0, 0.999999).Draw(rt, "draw")
		tbl := reward.Table{Drops: []reward.Drop{{ItemID: "hide", Quantity: 1, Chance: 1.0}}}
		assert.Len(rt, reward.RollDrops(tbl, fixedFloat(draw)), 1)
	})
}
