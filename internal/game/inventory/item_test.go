package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

func TestItemDef_Validate_AcceptsEachKind(t *testing.T) {
	defs := []*inventory.ItemDef{
		{ID: "sword", Name: "Sword", Kind: inventory.KindWeapon, Skill: "sword"},
		{ID: "tower", Name: "Tower", Kind: inventory.KindShield, Skill: "greatshield", Greatshield: true},
		{ID: "cap", Name: "Cap", Kind: inventory.KindArmor, Subtype: "leather", Defense: 1},
		{ID: "tail", Name: "Tail", Kind: inventory.KindJunk},
	}
	for _, d := range defs {
		assert.NoError(t, d.Validate(), d.ID)
	}
}

func TestItemDef_Validate_Rejects(t *testing.T) {
	cases := map[string]*inventory.ItemDef{
		"empty id":              {Name: "Junk", Kind: inventory.KindJunk},
		"empty name":            {ID: "j", Kind: inventory.KindJunk},
		"invalid kind":          {ID: "j", Name: "J", Kind: "potion"},
		"weapon without skill":  {ID: "w", Name: "W", Kind: inventory.KindWeapon},
		"shield without skill":  {ID: "s", Name: "S", Kind: inventory.KindShield},
		"armor without subtype": {ID: "a", Name: "A", Kind: inventory.KindArmor},
		"greatshield weapon":    {ID: "w", Name: "W", Kind: inventory.KindWeapon, Skill: "axe", Greatshield: true},
		"negative defense":      {ID: "a", Name: "A", Kind: inventory.KindArmor, Subtype: "chain", Defense: -1},
		"negative value":        {ID: "j", Name: "J", Kind: inventory.KindJunk, Value: -3},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, d.Validate())
		})
	}
}

func TestLoadItems_ReadsListsAndSkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gear.yaml"), []byte(`
- id: sword
  name: Sword
  kind: weapon
  skill: sword
- id: cap
  name: Cap
  kind: armor
  subtype: leather
  defense: 1
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.yml"), []byte("- {id: tail, name: Tail, kind: junk}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not yaml"), 0o644))

	items, err := inventory.LoadItems(dir)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "sword", items[0].ID)
	assert.Equal(t, 1, items[1].Defense)
	assert.Equal(t, inventory.KindJunk, items[2].Kind)
}

func TestLoadItems_InvalidItemFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("- {id: w, name: W, kind: weapon}\n"), 0o644))
	_, err := inventory.LoadItems(dir)
	assert.ErrorContains(t, err, "bad.yaml")
}

func TestLoadItems_MissingDir(t *testing.T) {
	_, err := inventory.LoadItems(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestItemDef_Property_JunkWithNameAndIDIsValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := &inventory.ItemDef{
			ID:    rapid.StringMatching(`[a-z_]{1,16}`).Draw(rt, "id"),
			Name:  rapid.StringMatching(`[A-Za-z ]{1,24}`).Draw(rt, "name"),
			Kind:  inventory.KindJunk,
			Value: rapid.IntRange(0, 1000).Draw(rt, "value"),
		}
		assert.NoError(rt, d.Validate())
	})
}

// TestContent_ItemsLoad verifies the shipped item library is valid.
func TestContent_ItemsLoad(t *testing.T) {
	reg, err := inventory.LoadRegistry("../../../content/items")
	require.NoError(t, err)
	require.NotEmpty(t, reg.All())

	_, ok := reg.Item("longsword")
	assert.True(t, ok)
	info, ok := reg.Item("tower_shield")
	require.True(t, ok)
	assert.True(t, info.Greatshield)
}
