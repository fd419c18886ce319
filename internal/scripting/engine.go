package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/gridveil/server/internal/region"
	"github.com/gridveil/server/internal/world"
)

// Engine wraps a single gopher-lua VM for quest trigger scripts.
// Single-goroutine access only (game loop).
//
// Scripts see a `world` table with hide-list and spatial helpers, and may
// define two global hooks:
//
//	on_spawn(kind, id, instance)         -- after an entity enters the world
//	on_region_enter(instance, region)    -- after a region boundary crossing
//
// The typical quest flow blanket-hides a quest mob id in on_spawn and
// unhides it from on_region_enter once the player reaches the trigger area.
type Engine struct {
	vm    *lua.LState
	state *world.State
	log   *zap.Logger
}

// NewEngine creates a Lua engine, installs the world API and loads all
// scripts from the given directory (plus its quest/ subdirectory).
func NewEngine(scriptsDir string, state *world.State, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, state: state, log: log}
	e.registerWorldAPI()

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	if err := e.loadDir(filepath.Join(scriptsDir, "quest")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load quest scripts: %w", err)
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory. Missing dirs are skipped.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// registerWorldAPI installs the `world` table. All functions take instance
// strings; a stale instance makes the call a no-op (gameplay scripts race
// despawns all the time, that is not an error).
func (e *Engine) registerWorldAPI() {
	mod := e.vm.NewTable()

	e.vm.SetField(mod, "hide", e.vm.NewFunction(func(L *lua.LState) int {
		if owner := e.state.Get(L.CheckString(1)); owner != nil {
			owner.Visibility.Hide(L.CheckString(2))
		}
		return 0
	}))
	e.vm.SetField(mod, "unhide", e.vm.NewFunction(func(L *lua.LState) int {
		if owner := e.state.Get(L.CheckString(1)); owner != nil {
			owner.Visibility.Unhide(L.CheckString(2))
		}
		return 0
	}))
	e.vm.SetField(mod, "hide_id", e.vm.NewFunction(func(L *lua.LState) int {
		if owner := e.state.Get(L.CheckString(1)); owner != nil {
			owner.Visibility.HideID(int32(L.CheckInt(2)))
		}
		return 0
	}))
	e.vm.SetField(mod, "unhide_id", e.vm.NewFunction(func(L *lua.LState) int {
		if owner := e.state.Get(L.CheckString(1)); owner != nil {
			owner.Visibility.UnhideID(int32(L.CheckInt(2)))
		}
		return 0
	}))
	e.vm.SetField(mod, "is_near", e.vm.NewFunction(func(L *lua.LState) int {
		a := e.state.Get(L.CheckString(1))
		b := e.state.Get(L.CheckString(2))
		radius := int32(L.CheckInt(3))
		if a == nil || b == nil {
			L.Push(lua.LFalse)
			return 1
		}
		L.Push(lua.LBool(world.IsNear(a, b, radius)))
		return 1
	}))
	e.vm.SetField(mod, "special_state", e.vm.NewFunction(func(L *lua.LState) int {
		ent := e.state.Get(L.CheckString(1))
		if ent == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(ent.SpecialState))
		return 1
	}))

	e.vm.SetGlobal("world", mod)
}

// OnSpawn calls the optional on_spawn hook for a freshly spawned entity.
func (e *Engine) OnSpawn(ent *world.Entity) {
	e.callHook("on_spawn",
		lua.LString(ent.Kind.String()),
		lua.LNumber(ent.ID),
		lua.LString(ent.Instance),
	)
}

// OnRegionEnter calls the optional on_region_enter hook after a crossing.
func (e *Engine) OnRegionEnter(ent *world.Entity, id region.ID) {
	e.callHook("on_region_enter",
		lua.LString(ent.Instance),
		lua.LString(string(id)),
	)
}

func (e *Engine) callHook(name string, args ...lua.LValue) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return
	}
	err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...)
	if err != nil {
		e.log.Error("lua hook failed", zap.String("hook", name), zap.Error(err))
	}
}
