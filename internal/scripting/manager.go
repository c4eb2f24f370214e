package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// vm is one script's LState. LStates are single-threaded; mu serializes every
// touch of L, including building argument tables and reading results.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per passive script and dispatches hooks.
//
// Manager is safe for concurrent use. Calls into the same script serialize on
// that script's VM; different scripts run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scripts loaded.
func NewManager(src dice.Source, logger *zap.Logger) *Manager {
	if src == nil {
		panic("scripting.NewManager: src must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		src:    src,
		logger: logger,
	}
}

// LoadDir loads every *.lua file in scriptDir, in lexicographic order, as its
// own script named after the file without its extension.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: returns an error on the first unreadable or invalid script;
// scripts loaded before the failure stay registered.
func (m *Manager) LoadDir(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	sort.Strings(luaFiles)

	for _, file := range luaFiles {
		path := filepath.Join(scriptDir, file)
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", path, err)
		}
		if err := m.Load(strings.TrimSuffix(file, ".lua"), string(src), instLimit); err != nil {
			return err
		}
	}
	return nil
}

// Load compiles source into a fresh VM registered as name, replacing any
// script already registered under that name.
//
// Precondition: name must be non-empty.
// Postcondition: returns an error, leaving any previous script in place, when
// source fails to load.
func (m *Manager) Load(name, source string, instLimit int) error {
	if name == "" {
		return fmt.Errorf("scripting: script name must not be empty")
	}
	L := NewSandboxedState(instLimit)
	m.RegisterModules(L, name)
	if err := L.DoString(source); err != nil {
		L.Close()
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}

	m.mu.Lock()
	old := m.vms[name]
	m.vms[name] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripting: script loaded", zap.String("script", name))
	return nil
}

// Has reports whether a script named name is loaded.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[name]
	return ok
}

// Names returns the loaded script names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for name := range m.vms {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Close releases every VM. Subsequent calls find no scripts.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()

	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}

// ErrScriptNotFound is returned by CallHook for a script that is not loaded.
var ErrScriptNotFound = errors.New("scripting: script not found")

// CallHook calls the named Lua global function in script's VM with scalar
// args. A script without the hook returns (LNil, nil). Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn level and
// returned.
//
// Precondition: args must not be tables or functions owned by another LState.
// Postcondition: Returns the first return value of the hook, or LNil with
// ErrScriptNotFound when script is not loaded.
func (m *Manager) CallHook(script, hook string, args ...lua.LValue) (lua.LValue, error) {
	v := m.lookup(script, hook)
	if v == nil {
		return lua.LNil, fmt.Errorf("%w: %q", ErrScriptNotFound, script)
	}
	ret := lua.LValue(lua.LNil)
	err := m.call(v, script, hook,
		func(*lua.LState) []lua.LValue { return args },
		func(r lua.LValue) { ret = r },
	)
	return ret, err
}

// Defines returns which of hooks script defines as Lua functions, in the
// given order. An unknown script defines nothing.
func (m *Manager) Defines(script string, hooks ...string) []string {
	m.mu.RLock()
	v := m.vms[script]
	m.mu.RUnlock()
	if v == nil {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []string
	for _, h := range hooks {
		if v.L.GetGlobal(h).Type() == lua.LTFunction {
			out = append(out, h)
		}
	}
	return out
}

// lookup returns script's VM, logging when it is missing.
func (m *Manager) lookup(script, hook string) *vm {
	m.mu.RLock()
	v := m.vms[script]
	m.mu.RUnlock()
	if v == nil {
		m.logger.Info("scripting: no such script",
			zap.String("script", script),
			zap.String("hook", hook),
		)
	}
	return v
}

// call runs hook in v while holding the VM lock. build creates the arguments
// inside the VM; read consumes the first return value before the lock is
// released. A missing hook is not an error and skips read.
func (m *Manager) call(v *vm, script, hook string, build func(*lua.LState) []lua.LValue, read func(lua.LValue)) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return nil
	}

	Budget(v.L, v.limit)
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, build(v.L)...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", script),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return fmt.Errorf("scripting: %s.%s: %w", script, hook, err)
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	if read != nil {
		read(ret)
	}
	return nil
}
