package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/voxelkeep/server/internal/data"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM used to extend the item catalogs.
// Scripts run once at startup; the VM is not shared across goroutines.
type Engine struct {
	vm       *lua.LState
	catalogs *data.Catalogs
	log      *zap.Logger
	added    int
}

// NewEngine creates a Lua engine, exposes the catalog registration API and
// runs every script under <scriptsDir>/catalog.
func NewEngine(scriptsDir string, catalogs *data.Catalogs, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, catalogs: catalogs, log: log}
	vm.SetGlobal("register_block", vm.NewFunction(e.registerBlock))
	vm.SetGlobal("register_tool", vm.NewFunction(e.registerTool))
	vm.SetGlobal("register_spawn_egg", vm.NewFunction(e.registerSpawnEgg))
	vm.SetGlobal("item_kind", vm.NewFunction(e.itemKind))

	if err := e.loadDir(filepath.Join(scriptsDir, "catalog")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load catalog scripts: %w", err)
	}
	return e, nil
}

// Added returns how many catalog entries the scripts registered.
func (e *Engine) Added() int {
	return e.added
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// DoString runs a chunk of Lua against the engine's API.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
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

// register_block(id, name [, placeable])
func (e *Engine) registerBlock(L *lua.LState) int {
	id := L.CheckInt(1)
	name := L.CheckString(2)
	placeable := true
	if L.GetTop() >= 3 {
		placeable = L.ToBool(3)
	}
	if err := e.catalogs.RegisterBlock(data.BlockInfo{ItemID: id, Name: name, Placeable: placeable}); err != nil {
		L.RaiseError("register_block: %s", err.Error())
		return 0
	}
	e.added++
	return 0
}

// register_tool(id, name [, durability])
func (e *Engine) registerTool(L *lua.LState) int {
	id := L.CheckInt(1)
	name := L.CheckString(2)
	durability := L.OptInt(3, 0)
	if err := e.catalogs.RegisterTool(data.ToolInfo{ItemID: id, Name: name, Durability: durability}); err != nil {
		L.RaiseError("register_tool: %s", err.Error())
		return 0
	}
	e.added++
	return 0
}

// register_spawn_egg(id, mob [, name])
func (e *Engine) registerSpawnEgg(L *lua.LState) int {
	id := L.CheckInt(1)
	mob := L.CheckString(2)
	name := L.OptString(3, mob+"_spawn_egg")
	if err := e.catalogs.RegisterSpawnEgg(data.SpawnEggInfo{ItemID: id, Name: name, Mob: mob}); err != nil {
		L.RaiseError("register_spawn_egg: %s", err.Error())
		return 0
	}
	e.added++
	return 0
}

// item_kind(id) -> "block" | "tool" | "spawn_egg" | "none"
func (e *Engine) itemKind(L *lua.LState) int {
	id := L.CheckInt(1)
	L.Push(lua.LString(e.catalogs.Owner(id).String()))
	return 1
}
