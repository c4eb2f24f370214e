package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	mgr := scripting.NewManager(dice.NewSeededSource(1), logger)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func hasLevel(logs *observer.ObservedLogs, level zapcore.Level) bool {
	for _, e := range logs.All() {
		if e.Level == level {
			return true
		}
	}
	return false
}

func TestManager_Load_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("adder", `
		function test_hook(a, b)
			return a + b
		end
	`, 0))
	ret, err := mgr.CallHook("adder", "test_hook", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_Load_EmptyName_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load("", `x = 1`, 0))
}

func TestManager_Load_InvalidLua_KeepsPrevious(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("keep", `function v() return 1 end`, 0))
	assert.Error(t, mgr.Load("keep", `this is not valid lua @@@@`, 0))

	ret, err := mgr.CallHook("keep", "v")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(1), ret)
}

func TestManager_Load_ReplacesScript(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("swap", `function v() return 1 end`, 0))
	require.NoError(t, mgr.Load("swap", `function v() return 2 end`, 0))

	ret, err := mgr.CallHook("swap", "v")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
	assert.Equal(t, []string{"swap"}, mgr.Names())
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("empty", `-- no functions`, 0))
	ret, err := mgr.CallHook("empty", "nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_UnknownScript_LogsInfoReturnsErr(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook("no_such_script", "some_hook")
	assert.ErrorIs(t, err, scripting.ErrScriptNotFound)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.InfoLevel), "expected Info log for missing script")
}

func TestManager_CallHook_RuntimeError_WarnLogReturnsErr(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load("bad", `
		function bad_hook()
			error("intentional error")
		end
	`, 0))
	ret, err := mgr.CallHook("bad", "bad_hook")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intentional error")
	assert.NotErrorIs(t, err, scripting.ErrScriptNotFound)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.WarnLevel), "expected Warn log for Lua runtime error")
}

func TestManager_CallHook_RunawayScriptIsCut(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load("spin", `
		function forever()
			while true do end
		end
		function ok() return 5 end
	`, 1000))

	ret, err := mgr.CallHook("spin", "forever")
	require.Error(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.WarnLevel))

	// The budget is refilled per call, so the VM stays usable.
	ret, err = mgr.CallHook("spin", "ok")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(5), ret)
}

func TestManager_LoadDir_OneScriptPerFile(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.lua"), []byte(`function name() return "alpha" end`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.lua"), []byte(`function name() return "beta" end`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`ignored`), 0644))
	require.NoError(t, mgr.LoadDir(dir, 0))

	assert.Equal(t, []string{"alpha", "beta"}, mgr.Names())
	ret, err := mgr.CallHook("beta", "name")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("beta"), ret)
	assert.True(t, mgr.Has("alpha"))
	assert.False(t, mgr.Has("notes"))
}

func TestManager_LoadDir_EmptyDir_NoError(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadDir(t.TempDir(), 0))
	assert.Empty(t, mgr.Names())
}

func TestManager_LoadDir_MissingDir_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadDir(filepath.Join(t.TempDir(), "missing"), 0))
}

func TestManager_LoadDir_InvalidLua_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)
	assert.Error(t, mgr.LoadDir(dir, 0))
	assert.False(t, mgr.Has("bad"))
}

func TestManager_Scripts_AreIsolated(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("a", `shared = 10`, 0))
	require.NoError(t, mgr.Load("b", `function get() return shared end`, 0))

	ret, err := mgr.CallHook("b", "get")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestProperty_CallHookMissingScriptNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		script := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "script")
		hook := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "hook")
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		for i := 0; i < count; i++ {
			mgr.CallHook(script, hook) //nolint:errcheck
		}
	})
}

func TestProperty_CallHookConcurrentSameScript_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("conc", `
		function concurrent_hook(a, b)
			return a + b
		end
	`, 0))

	const goroutines = 10
	const callsEach = 5
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				ret, err := mgr.CallHook("conc", "concurrent_hook", lua.LNumber(1), lua.LNumber(2))
				assert.NoError(t, err)
				assert.Equal(t, lua.LNumber(3), ret)
			}
		}()
	}
	wg.Wait()
}

func TestNewManager_PanicsOnNilSource(t *testing.T) {
	assert.Panics(t, func() {
		scripting.NewManager(nil, zap.NewNop())
	})
}

func TestNewManager_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() {
		scripting.NewManager(dice.NewSeededSource(1), nil)
	})
}

func TestManager_Close_ReleasesScripts(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("closing", `function get_x() return x end`, 0))
	mgr.Close()

	ret, err := mgr.CallHook("closing", "get_x")
	assert.ErrorIs(t, err, scripting.ErrScriptNotFound)
	assert.Equal(t, lua.LNil, ret)
	assert.Empty(t, mgr.Names())
}

func TestManager_Defines_ListsFunctionHooksOnly(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("partial", `
		on_combat_begin = 3
		function on_before_defend() end
		function on_after_attack() end
	`, 0))

	assert.Equal(t,
		[]string{scripting.HookBeforeDefend, scripting.HookAfterAttack},
		mgr.Defines("partial", scripting.Hooks...))
	assert.Empty(t, mgr.Defines("partial"))
	assert.Nil(t, mgr.Defines("no_such_script", scripting.Hooks...))
}
