package validate

import (
	"github.com/voxelkeep/server/internal/item"
	"go.uber.org/zap"
)

// ChestState is one side of a chest transfer. The cursor is not part of it:
// transfers are only submitted once the cursor has been put back into a slot.
type ChestState struct {
	Chest     item.Totals
	Inventory item.Totals
}

// Combined returns chest and inventory totals summed per item.
func (c ChestState) Combined() item.Totals {
	return item.Combine(c.Chest, c.Inventory)
}

// ValidateInventoryTransaction enforces the no-net-gain rule on a personal
// inventory. Items may disappear; they may never appear.
func (v *Validator) ValidateInventoryTransaction(oldTotals, newTotals item.Totals) error {
	for _, id := range newTotals.ItemIDs() {
		before, after := oldTotals[id], newTotals[id]
		if after > before {
			return reject(KindDuplication, "item %d increased from %d to %d", id, before, after)
		}
	}
	return nil
}

// ValidateChestTransaction enforces no-net-gain across chest plus inventory.
// Decreases are legitimate (drops, destruction); they are logged and returned
// as a loss map for auditing, never rejected.
func (v *Validator) ValidateChestTransaction(player string, before, after ChestState) (item.Totals, error) {
	oldTotals := before.Combined()
	newTotals := after.Combined()

	for _, id := range newTotals.ItemIDs() {
		if excess := newTotals[id] - oldTotals[id]; excess > 0 {
			return nil, reject(KindDuplication, "player %s duplicated item %d by %d", player, id, excess)
		}
	}

	losses := item.Totals{}
	for _, id := range oldTotals.ItemIDs() {
		if lost := oldTotals[id] - newTotals[id]; lost > 0 {
			losses[id] = lost
			v.log.Info("chest transfer lowered item total",
				zap.String("player", player),
				zap.Int("item_id", id),
				zap.Int("before", oldTotals[id]),
				zap.Int("after", newTotals[id]),
			)
		}
	}
	return losses, nil
}

// ValidateBlockPlacement checks that placing itemID from hotbar slotIndex
// consumed exactly one unit.
func (v *Validator) ValidateBlockPlacement(slotIndex, itemID int, oldStack, newStack *item.Record) error {
	if slotIndex < 1 || slotIndex > v.limits.HotbarSize {
		return reject(KindMalformed, "hotbar slot %d outside [1, %d]", slotIndex, v.limits.HotbarSize)
	}
	if itemID <= item.AirID {
		return reject(KindMalformed, "cannot place item id %d", itemID)
	}
	if oldStack == nil || oldStack.ItemID != itemID || oldStack.Count < 1 {
		return reject(KindConsumption, "hotbar slot %d does not hold item %d", slotIndex, itemID)
	}

	newCount := 0
	if newStack != nil {
		newCount = newStack.Count
		if newCount > 0 && newStack.ItemID != itemID {
			return reject(KindConsumption, "hotbar slot %d changed item from %d to %d", slotIndex, itemID, newStack.ItemID)
		}
	}
	if newCount != oldStack.Count-1 {
		return reject(KindConsumption, "placing item %d must consume 1 unit: count went from %d to %d",
			itemID, oldStack.Count, newCount)
	}
	return nil
}
