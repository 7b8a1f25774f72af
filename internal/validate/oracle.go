package validate

import "github.com/voxelkeep/server/internal/item"

// BlockCatalog knows blocks, materials and other placeable items.
type BlockCatalog interface {
	IsKnownItem(id int) bool
}

// ToolCatalog knows tools. Tools never stack.
type ToolCatalog interface {
	IsTool(id int) bool
}

// SpawnEggCatalog knows spawn eggs.
type SpawnEggCatalog interface {
	IsSpawnEgg(id int) bool
}

// Oracle answers item validity questions from three disjoint read-only catalogs.
// It holds no mutable state of its own.
type Oracle struct {
	blocks BlockCatalog
	tools  ToolCatalog
	eggs   SpawnEggCatalog
}

// NewOracle wires the catalogs. A nil catalog knows nothing.
func NewOracle(blocks BlockCatalog, tools ToolCatalog, eggs SpawnEggCatalog) *Oracle {
	return &Oracle{blocks: blocks, tools: tools, eggs: eggs}
}

// IsValidItem reports whether id names a real item. Air and negative ids are never items.
func (o *Oracle) IsValidItem(id int) bool {
	if id <= item.AirID {
		return false
	}
	if o.blocks != nil && o.blocks.IsKnownItem(id) {
		return true
	}
	if o.tools != nil && o.tools.IsTool(id) {
		return true
	}
	return o.eggs != nil && o.eggs.IsSpawnEgg(id)
}

// IsNonStackable reports whether id is limited to one unit per slot.
func (o *Oracle) IsNonStackable(id int) bool {
	return id > item.AirID && o.tools != nil && o.tools.IsTool(id)
}

// MaxStack returns the canonical capacity for id.
func (o *Oracle) MaxStack(id int) int {
	if o.IsNonStackable(id) {
		return 1
	}
	return item.DefaultMaxStack
}

// NewStack builds a stack of id with its canonical capacity.
func (o *Oracle) NewStack(id, count int) *item.Stack {
	return item.NewWithMax(id, count, o.MaxStack(id))
}
