package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Hook function names a passive script may define. Each receives a per-duel
// state table as its first argument.
//
//	on_combat_begin(state, self, opponent)
//	on_before_attack(state, action, self, target)     -- self is attacking
//	on_before_defend(state, action, attacker, self)   -- self is the target
//	on_after_attack(state, entry)
//	on_combat_end(state, outcome, won)
//
// on_before_attack and on_before_defend may return a table with any of
// attack, accuracy or crit to override the firing action's values.
const (
	HookCombatBegin  = "on_combat_begin"
	HookBeforeAttack = "on_before_attack"
	HookBeforeDefend = "on_before_defend"
	HookAfterAttack  = "on_after_attack"
	HookCombatEnd    = "on_combat_end"
)

// Hooks lists every hook name in the order a duel fires them.
var Hooks = []string{HookCombatBegin, HookBeforeAttack, HookBeforeDefend, HookAfterAttack, HookCombatEnd}

var _ combat.Hooks = (*Passive)(nil)

// Passive adapts one script to combat.Hooks for one owning combatant.
// A Passive belongs to a single duel.
type Passive struct {
	mgr    *Manager
	vm     *vm
	script string
	owner  string
	state  *lua.LTable
}

// Passive returns the hooks of script bound to the combatant ownerID. It
// returns (nil, false) when script is empty or not loaded.
func (m *Manager) Passive(script, ownerID string) (*Passive, bool) {
	if script == "" {
		return nil, false
	}
	v := m.lookup(script, "passive")
	if v == nil {
		return nil, false
	}
	v.mu.Lock()
	state := v.L.NewTable()
	v.mu.Unlock()
	return &Passive{mgr: m, vm: v, script: script, owner: ownerID, state: state}, true
}

// Hooks is Passive returning combat.NoopHooks when the script is missing.
func (m *Manager) Hooks(script, ownerID string) combat.Hooks {
	if p, ok := m.Passive(script, ownerID); ok {
		return p
	}
	return combat.NoopHooks{}
}

// CombatBegin calls on_combat_begin with the owner's side first.
func (p *Passive) CombatBegin(pair combat.Pair) {
	self, opp := pair.Attacker, pair.Defender
	if opp.ID == p.owner {
		self, opp = opp, self
	}
	p.mgr.call(p.vm, p.script, HookCombatBegin, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{p.state, combatantTable(L, self), combatantTable(L, opp)}
	}, nil)
}

// BeforeAttack calls on_before_attack for the owner's firings and
// on_before_defend for firings aimed at the owner.
func (p *Passive) BeforeAttack(attacker, defender *combat.Combatant, a combat.Action) combat.Action {
	hook := ""
	switch p.owner {
	case attacker.ID:
		hook = HookBeforeAttack
	case defender.ID:
		hook = HookBeforeDefend
	default:
		return a
	}
	p.mgr.call(p.vm, p.script, hook, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{p.state, actionTable(L, a), combatantTable(L, attacker), combatantTable(L, defender)}
	}, func(ret lua.LValue) {
		a = applyOverride(ret, a)
	})
	return a
}

// AfterAttack calls on_after_attack for entries involving the owner.
func (p *Passive) AfterAttack(attacker, defender *combat.Combatant, e combat.LogEntry) {
	if attacker.ID != p.owner && defender.ID != p.owner {
		return
	}
	p.mgr.call(p.vm, p.script, HookAfterAttack, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{p.state, entryTable(L, e)}
	}, nil)
}

// CombatEnd calls on_combat_end with the outcome and whether the owner won.
func (p *Passive) CombatEnd(r *combat.Result) {
	won := false
	if w, ok := r.Winner(); ok {
		won = w.ID == p.owner
	}
	p.mgr.call(p.vm, p.script, HookCombatEnd, func(*lua.LState) []lua.LValue {
		return []lua.LValue{p.state, lua.LString(r.Outcome.String()), lua.LBool(won)}
	}, nil)
}

func combatantTable(L *lua.LState, c *combat.Combatant) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(c.ID))
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("level", lua.LNumber(c.Level))
	t.RawSetString("hp", lua.LNumber(c.CurrentHP))
	t.RawSetString("max_hp", lua.LNumber(c.MaxHP))
	t.RawSetString("shield", lua.LNumber(c.ShieldStrength))
	t.RawSetString("defense", lua.LNumber(c.Defense))
	t.RawSetString("evade", lua.LNumber(c.Evade))
	return t
}

func actionTable(L *lua.LState, a combat.Action) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(a.ID))
	t.RawSetString("name", lua.LString(a.Name))
	t.RawSetString("skill", lua.LString(a.Skill))
	t.RawSetString("shield", lua.LBool(a.Shield))
	t.RawSetString("attack", lua.LNumber(a.Attack))
	t.RawSetString("accuracy", lua.LNumber(a.Accuracy))
	t.RawSetString("crit", lua.LNumber(a.Crit))
	return t
}

func entryTable(L *lua.LState, e combat.LogEntry) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("tick", lua.LNumber(e.Tick))
	t.RawSetString("attacker", lua.LString(e.AttackerID))
	t.RawSetString("target", lua.LString(e.TargetID))
	t.RawSetString("action", lua.LString(e.ActionID))
	t.RawSetString("shield", lua.LBool(e.Shield))
	t.RawSetString("hit", lua.LBool(e.Hit))
	t.RawSetString("crit", lua.LBool(e.Crit))
	t.RawSetString("resisted", lua.LBool(e.Resisted))
	t.RawSetString("damage", lua.LNumber(e.Damage))
	t.RawSetString("absorbed", lua.LNumber(e.Absorbed))
	t.RawSetString("target_hp", lua.LNumber(e.TargetHP))
	return t
}

// applyOverride copies attack, accuracy and crit from a returned table onto a.
// Negative values are floored at zero; anything other than a table is ignored.
func applyOverride(ret lua.LValue, a combat.Action) combat.Action {
	t, ok := ret.(*lua.LTable)
	if !ok {
		return a
	}
	set := func(key string, dst *int) {
		if n, ok := t.RawGetString(key).(lua.LNumber); ok {
			*dst = max(0, int(n))
		}
	}
	set("attack", &a.Attack)
	set("accuracy", &a.Accuracy)
	set("crit", &a.Crit)
	return a
}
