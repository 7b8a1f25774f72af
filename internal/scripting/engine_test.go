package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelkeep/server/internal/data"
	"go.uber.org/zap"
)

func writeScript(t *testing.T, root, name, body string) {
	t.Helper()
	dir := filepath.Join(root, "catalog")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestEngineRegistersCatalogEntries(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "extra.lua", `
register_block(900, "pumpkin_lantern")
register_block(902, "banner", false)
register_tool(910, "candy_cane_pickaxe", 80)
register_spawn_egg(920, "snow_golem")
`)
	c := data.NewCatalogs()
	e, err := NewEngine(root, c, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 4, e.Added())
	assert.True(t, c.Blocks.IsKnownItem(900))
	assert.False(t, c.Blocks.Get(902).Placeable)
	assert.Equal(t, 80, c.Tools.Get(910).Durability)
	assert.Equal(t, "snow_golem_spawn_egg", c.Eggs.Get(920).Name)
}

func TestEngineRejectsDuplicateIDs(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "dup.lua", `
register_block(5, "planks")
register_tool(5, "planks_pickaxe")
`)
	_, err := NewEngine(root, data.NewCatalogs(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestEngineMissingDirIsFine(t *testing.T) {
	e, err := NewEngine(t.TempDir(), data.NewCatalogs(), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.Zero(t, e.Added())
}

func TestItemKind(t *testing.T) {
	c := data.NewCatalogs()
	require.NoError(t, c.RegisterTool(data.ToolInfo{ItemID: 270, Name: "wooden_pickaxe"}))
	e, err := NewEngine(t.TempDir(), c, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.DoString(`
assert(item_kind(270) == "tool")
assert(item_kind(1) == "none")
`))
}

func TestShippedScripts(t *testing.T) {
	c := data.NewCatalogs()
	e, err := NewEngine(filepath.Join("..", "..", "scripts"), c, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.Positive(t, e.Added())
}
