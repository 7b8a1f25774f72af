package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogKind names which catalog owns an item id.
type CatalogKind int

const (
	KindNone CatalogKind = iota
	KindBlock
	KindTool
	KindSpawnEgg
)

func (k CatalogKind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindTool:
		return "tool"
	case KindSpawnEgg:
		return "spawn_egg"
	}
	return "none"
}

// BlockInfo is a block, material or other placeable item.
type BlockInfo struct {
	ItemID    int
	Name      string
	Placeable bool
}

// ToolInfo is a non-stackable tool.
type ToolInfo struct {
	ItemID     int
	Name       string
	Durability int
}

// SpawnEggInfo is a spawn egg and the mob it hatches.
type SpawnEggInfo struct {
	ItemID int
	Name   string
	Mob    string
}

// BlockTable holds block/material templates indexed by item ID.
type BlockTable struct {
	items map[int]*BlockInfo
}

// Get returns a block by ID, or nil if not found.
func (t *BlockTable) Get(id int) *BlockInfo { return t.items[id] }

// Count returns total loaded blocks.
func (t *BlockTable) Count() int { return len(t.items) }

// IsKnownItem implements validate.BlockCatalog.
func (t *BlockTable) IsKnownItem(id int) bool { return t.items[id] != nil }

// ToolTable holds tool templates indexed by item ID.
type ToolTable struct {
	items map[int]*ToolInfo
}

// Get returns a tool by ID, or nil if not found.
func (t *ToolTable) Get(id int) *ToolInfo { return t.items[id] }

// Count returns total loaded tools.
func (t *ToolTable) Count() int { return len(t.items) }

// IsTool implements validate.ToolCatalog.
func (t *ToolTable) IsTool(id int) bool { return t.items[id] != nil }

// SpawnEggTable holds spawn egg templates indexed by item ID.
type SpawnEggTable struct {
	items map[int]*SpawnEggInfo
}

// Get returns a spawn egg by ID, or nil if not found.
func (t *SpawnEggTable) Get(id int) *SpawnEggInfo { return t.items[id] }

// Count returns total loaded spawn eggs.
func (t *SpawnEggTable) Count() int { return len(t.items) }

// IsSpawnEgg implements validate.SpawnEggCatalog.
func (t *SpawnEggTable) IsSpawnEgg(id int) bool { return t.items[id] != nil }

// Catalogs bundles the three disjoint item catalogs.
// Filled at startup (YAML, then Lua extensions); read-only once the server runs.
type Catalogs struct {
	Blocks *BlockTable
	Tools  *ToolTable
	Eggs   *SpawnEggTable
}

// NewCatalogs returns empty catalogs.
func NewCatalogs() *Catalogs {
	return &Catalogs{
		Blocks: &BlockTable{items: make(map[int]*BlockInfo, 256)},
		Tools:  &ToolTable{items: make(map[int]*ToolInfo, 64)},
		Eggs:   &SpawnEggTable{items: make(map[int]*SpawnEggInfo, 64)},
	}
}

// Owner reports which catalog holds id.
func (c *Catalogs) Owner(id int) CatalogKind {
	switch {
	case c.Blocks.IsKnownItem(id):
		return KindBlock
	case c.Tools.IsTool(id):
		return KindTool
	case c.Eggs.IsSpawnEgg(id):
		return KindSpawnEgg
	}
	return KindNone
}

// Count returns the number of items across all catalogs.
func (c *Catalogs) Count() int {
	return c.Blocks.Count() + c.Tools.Count() + c.Eggs.Count()
}

func (c *Catalogs) claim(id int, kind CatalogKind) error {
	if id <= 0 {
		return fmt.Errorf("%s id %d: ids must be positive (0 is air)", kind, id)
	}
	if owner := c.Owner(id); owner != KindNone {
		return fmt.Errorf("%s id %d already registered as %s", kind, id, owner)
	}
	return nil
}

// RegisterBlock adds a block. Ids are unique across all catalogs.
func (c *Catalogs) RegisterBlock(b BlockInfo) error {
	if err := c.claim(b.ItemID, KindBlock); err != nil {
		return err
	}
	c.Blocks.items[b.ItemID] = &b
	return nil
}

// RegisterTool adds a tool.
func (c *Catalogs) RegisterTool(tl ToolInfo) error {
	if err := c.claim(tl.ItemID, KindTool); err != nil {
		return err
	}
	c.Tools.items[tl.ItemID] = &tl
	return nil
}

// RegisterSpawnEgg adds a spawn egg.
func (c *Catalogs) RegisterSpawnEgg(e SpawnEggInfo) error {
	if err := c.claim(e.ItemID, KindSpawnEgg); err != nil {
		return err
	}
	c.Eggs.items[e.ItemID] = &e
	return nil
}

// LoadCatalogs loads block, tool, and spawn egg YAML files.
func LoadCatalogs(blockPath, toolPath, eggPath string) (*Catalogs, error) {
	c := NewCatalogs()
	if err := loadBlocks(c, blockPath); err != nil {
		return nil, err
	}
	if err := loadTools(c, toolPath); err != nil {
		return nil, err
	}
	if err := loadSpawnEggs(c, eggPath); err != nil {
		return nil, err
	}
	return c, nil
}

// --- block loading ---

type blockEntry struct {
	ItemID    int    `yaml:"item_id"`
	Name      string `yaml:"name"`
	Placeable *bool  `yaml:"placeable"`
}

type blockListFile struct {
	Blocks []blockEntry `yaml:"blocks"`
}

func loadBlocks(c *Catalogs, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read blocks: %w", err)
	}
	var f blockListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse blocks: %w", err)
	}
	for i := range f.Blocks {
		b := &f.Blocks[i]
		placeable := true
		if b.Placeable != nil {
			placeable = *b.Placeable
		}
		if err := c.RegisterBlock(BlockInfo{ItemID: b.ItemID, Name: b.Name, Placeable: placeable}); err != nil {
			return fmt.Errorf("blocks: %w", err)
		}
	}
	return nil
}

// --- tool loading ---

type toolEntry struct {
	ItemID     int    `yaml:"item_id"`
	Name       string `yaml:"name"`
	Durability int    `yaml:"durability"`
}

type toolListFile struct {
	Tools []toolEntry `yaml:"tools"`
}

func loadTools(c *Catalogs, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tools: %w", err)
	}
	var f toolListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse tools: %w", err)
	}
	for i := range f.Tools {
		tl := &f.Tools[i]
		if err := c.RegisterTool(ToolInfo{ItemID: tl.ItemID, Name: tl.Name, Durability: tl.Durability}); err != nil {
			return fmt.Errorf("tools: %w", err)
		}
	}
	return nil
}

// --- spawn egg loading ---

type spawnEggEntry struct {
	ItemID int    `yaml:"item_id"`
	Name   string `yaml:"name"`
	Mob    string `yaml:"mob"`
}

type spawnEggListFile struct {
	Eggs []spawnEggEntry `yaml:"spawn_eggs"`
}

func loadSpawnEggs(c *Catalogs, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read spawn eggs: %w", err)
	}
	var f spawnEggListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse spawn eggs: %w", err)
	}
	for i := range f.Eggs {
		e := &f.Eggs[i]
		if err := c.RegisterSpawnEgg(SpawnEggInfo{ItemID: e.ItemID, Name: e.Name, Mob: e.Mob}); err != nil {
			return fmt.Errorf("spawn eggs: %w", err)
		}
	}
	return nil
}
