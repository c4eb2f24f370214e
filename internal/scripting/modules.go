package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua tables into L:
//
//	engine.log.debug|info|warn|error(msg)
//	engine.dice.intn(n)    -- integer in [0, n); 0 when n <= 0
//	engine.dice.chance(p)  -- true with probability p percent
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, script string) {
	engine := L.NewTable()

	log := L.NewTable()
	logger := m.logger.With(zap.String("script", script))
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	} {
		fn := fn
		log.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1))
			return 0
		}))
	}
	engine.RawSetString("log", log)

	dice := L.NewTable()
	dice.RawSetString("intn", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(m.src.Intn(n)))
		return 1
	}))
	dice.RawSetString("chance", L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		L.Push(lua.LBool(m.src.Float64()*100 < p))
		return 1
	}))
	engine.RawSetString("dice", dice)

	L.SetGlobal("engine", engine)
}
