package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadCatalogs(t *testing.T) {
	dir := t.TempDir()
	blocks := writeFile(t, dir, "blocks.yaml", `
blocks:
  - { item_id: 1, name: stone }
  - { item_id: 33, name: diamond, placeable: false }
`)
	tools := writeFile(t, dir, "tools.yaml", `
tools:
  - { item_id: 270, name: wooden_pickaxe, durability: 59 }
`)
	eggs := writeFile(t, dir, "eggs.yaml", `
spawn_eggs:
  - { item_id: 383, name: pig_spawn_egg, mob: pig }
`)

	c, err := LoadCatalogs(blocks, tools, eggs)
	require.NoError(t, err)

	assert.Equal(t, 4, c.Count())
	assert.True(t, c.Blocks.IsKnownItem(1))
	assert.True(t, c.Blocks.Get(1).Placeable)
	assert.False(t, c.Blocks.Get(33).Placeable)
	assert.True(t, c.Tools.IsTool(270))
	assert.Equal(t, 59, c.Tools.Get(270).Durability)
	assert.True(t, c.Eggs.IsSpawnEgg(383))
	assert.Equal(t, "pig", c.Eggs.Get(383).Mob)

	assert.Equal(t, KindTool, c.Owner(270))
	assert.Equal(t, KindNone, c.Owner(99999))
	assert.False(t, c.Blocks.IsKnownItem(270), "catalogs are disjoint")
}

func TestLoadCatalogsRejectsOverlap(t *testing.T) {
	dir := t.TempDir()
	blocks := writeFile(t, dir, "blocks.yaml", "blocks:\n  - { item_id: 270, name: odd_block }\n")
	tools := writeFile(t, dir, "tools.yaml", "tools:\n  - { item_id: 270, name: wooden_pickaxe }\n")
	eggs := writeFile(t, dir, "eggs.yaml", "spawn_eggs: []\n")

	_, err := LoadCatalogs(blocks, tools, eggs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered as block")
}

func TestLoadCatalogsRejectsAir(t *testing.T) {
	dir := t.TempDir()
	blocks := writeFile(t, dir, "blocks.yaml", "blocks:\n  - { item_id: 0, name: air }\n")
	tools := writeFile(t, dir, "tools.yaml", "tools: []\n")
	eggs := writeFile(t, dir, "eggs.yaml", "spawn_eggs: []\n")

	_, err := LoadCatalogs(blocks, tools, eggs)
	assert.Error(t, err)
}

func TestLoadCatalogsMissingFile(t *testing.T) {
	_, err := LoadCatalogs(filepath.Join(t.TempDir(), "nope.yaml"), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read blocks")
}

func TestLoadShippedCatalogs(t *testing.T) {
	root := filepath.Join("..", "..", "data", "yaml")
	c, err := LoadCatalogs(
		filepath.Join(root, "blocks.yaml"),
		filepath.Join(root, "tools.yaml"),
		filepath.Join(root, "spawn_eggs.yaml"),
	)
	require.NoError(t, err)
	assert.True(t, c.Blocks.IsKnownItem(3))
	assert.True(t, c.Tools.IsTool(270))
	assert.True(t, c.Eggs.IsSpawnEgg(384))
}
