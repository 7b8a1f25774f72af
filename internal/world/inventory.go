package world

import (
	"fmt"
	"sync"

	"github.com/voxelkeep/server/internal/item"
)

// ContainerKind names a slot container.
type ContainerKind string

const (
	KindHotbar   ContainerKind = "hotbar"
	KindBackpack ContainerKind = "backpack"
	KindChest    ContainerKind = "chest"
)

// PlayerInventory is the authoritative hotbar + backpack of one player.
// Callers hold the lock across validate-then-commit so two submissions can
// never both pass against the same stale snapshot.
type PlayerInventory struct {
	sync.Mutex

	Name     string
	Hotbar   item.Slots
	Backpack item.Slots
}

// NewPlayerInventory creates an inventory from already-trusted slots.
func NewPlayerInventory(name string, hotbar, backpack item.Slots) *PlayerInventory {
	if hotbar == nil {
		hotbar = item.Slots{}
	}
	if backpack == nil {
		backpack = item.Slots{}
	}
	return &PlayerInventory{Name: name, Hotbar: hotbar, Backpack: backpack}
}

// Totals sums hotbar and backpack.
func (p *PlayerInventory) Totals() item.Totals {
	return item.Combine(p.Hotbar.Totals(), p.Backpack.Totals())
}

// Commit replaces both containers with copies of the given slots.
func (p *PlayerInventory) Commit(hotbar, backpack item.Slots) {
	p.Hotbar = hotbar.Clone()
	p.Backpack = backpack.Clone()
	if p.Hotbar == nil {
		p.Hotbar = item.Slots{}
	}
	if p.Backpack == nil {
		p.Backpack = item.Slots{}
	}
}

// HotbarSlot returns a copy of a hotbar slot, or nil when the slot is empty.
func (p *PlayerInventory) HotbarSlot(index int) *item.Record {
	return p.Hotbar[index].Clone()
}

// SetHotbarSlot stores a copy of r; nil or air clears the slot.
func (p *PlayerInventory) SetHotbarSlot(index int, r *item.Record) {
	if r == nil || r.IsAir() || r.Count <= 0 {
		delete(p.Hotbar, index)
		return
	}
	p.Hotbar[index] = r.Clone()
}

// ChestKey identifies a placed chest by world and block position.
type ChestKey struct {
	World   string
	X, Y, Z int
}

func (k ChestKey) String() string {
	return fmt.Sprintf("%s:%d,%d,%d", k.World, k.X, k.Y, k.Z)
}

// ParseChestKey is the inverse of ChestKey.String.
func ParseChestKey(s string) (ChestKey, error) {
	var k ChestKey
	sep := -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			sep = i
			break
		}
	}
	if sep <= 0 {
		return k, fmt.Errorf("chest key %q: missing world", s)
	}
	k.World = s[:sep]
	if _, err := fmt.Sscanf(s[sep+1:], "%d,%d,%d", &k.X, &k.Y, &k.Z); err != nil {
		return k, fmt.Errorf("chest key %q: %w", s, err)
	}
	return k, nil
}

// Chest is a shared container. Lock the chest before any player inventory.
type Chest struct {
	sync.Mutex

	Key   ChestKey
	Size  int
	Slots item.Slots
}

// NewChest creates a chest holding already-trusted slots.
func NewChest(key ChestKey, size int, slots item.Slots) *Chest {
	if slots == nil {
		slots = item.Slots{}
	}
	return &Chest{Key: key, Size: size, Slots: slots}
}

// Totals sums the chest contents.
func (c *Chest) Totals() item.Totals {
	return c.Slots.Totals()
}

// Commit replaces the chest contents with a copy of slots.
func (c *Chest) Commit(slots item.Slots) {
	c.Slots = slots.Clone()
	if c.Slots == nil {
		c.Slots = item.Slots{}
	}
}
