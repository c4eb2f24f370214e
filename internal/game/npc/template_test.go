package npc_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/npc"
)

const ratYAML = `
id: rat
name: Rat
description: A rat.
level: 2
max_hp: 18
defense: 1
evade: 40
crit_resist: 5
passive: skittish
attacks:
  - item: teeth
    speed: 12
    cooldown: 30
    attack: 4
    accuracy: 60
    crit: 50
reward:
  gold: 3
  drops:
    - item: tail
      quantity: 1
      chance: 0.5
`

func TestLoadTemplateFromBytes_AllFields(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(ratYAML))
	require.NoError(t, err)

	assert.Equal(t, "rat", tmpl.ID)
	assert.Equal(t, 2, tmpl.Level)
	assert.Equal(t, 18, tmpl.MaxHP)
	assert.Equal(t, 5, tmpl.CritResist)
	assert.Equal(t, "skittish", tmpl.Passive)
	require.Len(t, tmpl.Attacks, 1)
	assert.Equal(t, "teeth", tmpl.Attacks[0].ItemID)
	assert.Equal(t, 30, tmpl.Attacks[0].Cooldown)
	assert.Equal(t, 3, tmpl.Reward.Gold)
	require.Len(t, tmpl.Reward.Drops, 1)
	assert.Equal(t, 0.5, tmpl.Reward.Drops[0].Chance)
}

func TestTemplate_Validate_Rejects(t *testing.T) {
	base := func() *npc.Template {
		tmpl, err := npc.LoadTemplateFromBytes([]byte(ratYAML))
		require.NoError(t, err)
		return tmpl
	}
	cases := map[string]func(*npc.Template){
		"empty id":        func(t *npc.Template) { t.ID = "" },
		"empty name":      func(t *npc.Template) { t.Name = "" },
		"zero level":      func(t *npc.Template) { t.Level = 0 },
		"zero hp":         func(t *npc.Template) { t.MaxHP = 0 },
		"negative evade":  func(t *npc.Template) { t.Evade = -1 },
		"no attacks":      func(t *npc.Template) { t.Attacks = nil },
		"zero cooldown":   func(t *npc.Template) { t.Attacks[0].Cooldown = 0 },
		"bad drop chance": func(t *npc.Template) { t.Reward.Drops[0].Chance = 2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tmpl := base()
			mutate(tmpl)
			assert.Error(t, tmpl.Validate())
		})
	}
}

func TestTemplate_Snapshot_FullHealthCopy(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(ratYAML))
	require.NoError(t, err)

	snap := tmpl.Snapshot("rat-1")
	assert.Equal(t, "rat-1", snap.ID)
	assert.Equal(t, "Rat", snap.Name)
	assert.Equal(t, 18, snap.CurrentHP)
	assert.Equal(t, 18, snap.MaxHP)
	assert.Equal(t, 40, snap.Evade)

	snap.Attacks[0].Attack = 99
	assert.Equal(t, 4, tmpl.Attacks[0].Attack, "snapshot must not alias the template")
}

func TestLoadTemplates_ValidDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rat.yaml"), []byte(ratYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "rat", templates[0].ID)
}

func TestLoadTemplates_EmptyDir(t *testing.T) {
	templates, err := npc.LoadTemplates(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestLoadTemplates_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(":::invalid"), 0644))
	_, err := npc.LoadTemplates(dir)
	assert.Error(t, err)
}

func TestProperty_Template_ValidStatsParse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(1, 50).Draw(rt, "level")
		hp := rapid.IntRange(1, 500).Draw(rt, "hp")
		speed := rapid.IntRange(1, 60).Draw(rt, "speed")
		cooldown := rapid.IntRange(1, 200).Draw(rt, "cooldown")
		data := fmt.Sprintf(`
id: thing
name: Thing
level: %d
max_hp: %d
attacks:
  - speed: %d
    cooldown: %d
    attack: 3
    accuracy: 50
`, level, hp, speed, cooldown)

		tmpl, err := npc.LoadTemplateFromBytes([]byte(data))
		require.NoError(rt, err)
		snap := tmpl.Snapshot("thing-1")
		assert.Equal(rt, hp, snap.CurrentHP)
		assert.Equal(rt, level, snap.Level)
		assert.Equal(rt, speed, snap.Attacks[0].Speed)
	})
}

// TestContent_EnemiesLoad verifies the shipped bestiary is valid.
func TestContent_EnemiesLoad(t *testing.T) {
	b, err := npc.LoadBestiary("../../../content/enemies")
	require.NoError(t, err)
	assert.NotEmpty(t, b.All())
	_, ok := b.Get("giant_rat")
	assert.True(t, ok)
}
