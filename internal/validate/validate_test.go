package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelkeep/server/internal/item"
	"go.uber.org/zap"
)

type idSet map[int]bool

func (s idSet) IsKnownItem(id int) bool { return s[id] }
func (s idSet) IsTool(id int) bool      { return s[id] }
func (s idSet) IsSpawnEgg(id int) bool  { return s[id] }

const (
	stone   = 1
	dirt    = 3
	diamond = 33
	planks  = 98
	pickaxe = 270
	cowEgg  = 383
)

func newTestValidator() *Validator {
	oracle := NewOracle(
		idSet{stone: true, dirt: true, diamond: true, planks: true},
		idSet{pickaxe: true},
		idSet{cowEgg: true},
	)
	return NewValidator(oracle, DefaultLimits(), zap.NewNop())
}

func rec(id, count int) *item.Record {
	return &item.Record{ItemID: id, Count: count}
}

func TestOracle(t *testing.T) {
	v := newTestValidator()
	o := v.Oracle()

	assert.True(t, o.IsValidItem(stone))
	assert.True(t, o.IsValidItem(pickaxe))
	assert.True(t, o.IsValidItem(cowEgg))
	assert.False(t, o.IsValidItem(item.AirID))
	assert.False(t, o.IsValidItem(-3))
	assert.False(t, o.IsValidItem(99999))

	assert.True(t, o.IsNonStackable(pickaxe))
	assert.False(t, o.IsNonStackable(cowEgg))
	assert.Equal(t, 1, o.MaxStack(pickaxe))
	assert.Equal(t, 64, o.MaxStack(dirt))

	s := o.NewStack(pickaxe, 4)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 1, s.MaxStack)
}

func TestOracleNilCatalogs(t *testing.T) {
	o := NewOracle(nil, nil, nil)
	assert.False(t, o.IsValidItem(stone))
	assert.False(t, o.IsNonStackable(pickaxe))
}

func TestValidateItemStack(t *testing.T) {
	v := newTestValidator()
	tests := []struct {
		name string
		rec  *item.Record
		kind Kind
	}{
		{"missing", nil, KindMalformed},
		{"unknown item", rec(99999, 5), KindUnknownItem},
		{"unknown item zero count", rec(99999, 0), KindUnknownItem},
		{"negative id", rec(-1, 1), KindUnknownItem},
		{"air with count", rec(item.AirID, 3), KindInvariant},
		{"count too large", rec(dirt, 65), KindInvariant},
		{"negative count", rec(dirt, -2), KindInvariant},
		{"stacked tool", rec(pickaxe, 2), KindInvariant},
		{"item with zero count", rec(dirt, 0), KindInvariant},
		{"air", rec(item.AirID, 0), 0},
		{"full stack", rec(dirt, 64), 0},
		{"single tool", rec(pickaxe, 1), 0},
		{"spawn egg", rec(cowEgg, 16), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateItemStack(tt.rec)
			if tt.kind == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestNewValidatorCapsMaxStack(t *testing.T) {
	oracle := NewOracle(idSet{dirt: true}, nil, nil)
	v := NewValidator(oracle, Limits{MaxStack: 128, HotbarSize: 9}, zap.NewNop())
	assert.Equal(t, item.DefaultMaxStack, v.Limits().MaxStack)
	assert.ErrorIs(t, v.ValidateItemStack(rec(dirt, 65)), ErrInvariant)

	v = NewValidator(oracle, Limits{MaxStack: 16}, zap.NewNop())
	assert.Equal(t, 16, v.Limits().MaxStack)
	assert.ErrorIs(t, v.ValidateItemStack(rec(dirt, 17)), ErrInvariant)
}

func TestValidateItemStackUnknownRegardlessOfCount(t *testing.T) {
	v := newTestValidator()
	for _, c := range []int{-1, 0, 1, 64, 1000} {
		err := v.ValidateItemStack(rec(424242, c))
		assert.ErrorIs(t, err, ErrUnknownItem, "count %d", c)
	}
}

func TestValidateItemStackToolCounts(t *testing.T) {
	v := newTestValidator()
	for c := -1; c <= 3; c++ {
		err := v.ValidateItemStack(rec(pickaxe, c))
		if c == 1 {
			assert.NoError(t, err)
		} else {
			assert.Error(t, err, "count %d", c)
		}
	}
}

func TestValidateSlotArray(t *testing.T) {
	v := newTestValidator()
	totals, err := v.ValidateSlotArray(item.Slots{
		1: rec(dirt, 10),
		2: rec(dirt, 4),
		5: rec(item.AirID, 0),
		9: rec(pickaxe, 1),
	}, 9)
	require.NoError(t, err)
	assert.Equal(t, item.Totals{dirt: 14, pickaxe: 1}, totals)
}

func TestValidateSlotArrayEmpty(t *testing.T) {
	v := newTestValidator()
	totals, err := v.ValidateSlotArray(item.Slots{}, 27)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestValidateSlotArrayIndexOutOfRange(t *testing.T) {
	v := newTestValidator()
	for _, idx := range []int{0, -1, 10} {
		_, err := v.ValidateSlotArray(item.Slots{idx: rec(dirt, 1)}, 9)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Contains(t, err.Error(), "slot index")
	}
}

func TestValidateSlotArrayNamesFailingSlot(t *testing.T) {
	v := newTestValidator()
	_, err := v.ValidateSlotArray(item.Slots{
		1: rec(dirt, 1),
		4: rec(pickaxe, 5),
		6: rec(99999, 1),
	}, 9)
	require.Error(t, err)

	var rej *Rejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, 4, rej.Slot)
	assert.Equal(t, KindInvariant, rej.Kind)
	assert.Contains(t, err.Error(), "slot 4 invalid:")
}

func TestValidateSlotArrayNilRecord(t *testing.T) {
	v := newTestValidator()
	_, err := v.ValidateSlotArray(item.Slots{2: nil}, 9)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "slot 2 invalid")
}

func TestValidateSlotArrayBadSize(t *testing.T) {
	v := newTestValidator()
	_, err := v.ValidateSlotArray(item.Slots{}, 0)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestValidateInventoryTransaction(t *testing.T) {
	v := newTestValidator()

	err := v.ValidateInventoryTransaction(item.Totals{diamond: 10}, item.Totals{diamond: 15})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplication)
	assert.Contains(t, err.Error(), "33")
	assert.Contains(t, err.Error(), "10")
	assert.Contains(t, err.Error(), "15")

	assert.NoError(t, v.ValidateInventoryTransaction(item.Totals{diamond: 10}, item.Totals{diamond: 10}))
	assert.NoError(t, v.ValidateInventoryTransaction(item.Totals{diamond: 10}, item.Totals{diamond: 7}))
	assert.NoError(t, v.ValidateInventoryTransaction(item.Totals{diamond: 10}, item.Totals{}))
}

func TestValidateInventoryTransactionNewItem(t *testing.T) {
	v := newTestValidator()
	err := v.ValidateInventoryTransaction(item.Totals{dirt: 3}, item.Totals{dirt: 3, stone: 1})
	assert.ErrorIs(t, err, ErrDuplication)
	assert.Contains(t, err.Error(), "from 0 to 1")
}

func TestValidateChestTransaction(t *testing.T) {
	v := newTestValidator()
	before := ChestState{Chest: item.Totals{planks: 8}, Inventory: item.Totals{planks: 4}}

	_, err := v.ValidateChestTransaction("steve", before,
		ChestState{Chest: item.Totals{planks: 6}, Inventory: item.Totals{planks: 7}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplication)
	assert.Contains(t, err.Error(), "steve")
	assert.Contains(t, err.Error(), "98")
	assert.Contains(t, err.Error(), "by 1")

	losses, err := v.ValidateChestTransaction("steve", before,
		ChestState{Chest: item.Totals{}, Inventory: item.Totals{planks: 12}})
	require.NoError(t, err)
	assert.Empty(t, losses)

	losses, err = v.ValidateChestTransaction("steve", before,
		ChestState{Chest: item.Totals{planks: 5}, Inventory: item.Totals{planks: 4}})
	require.NoError(t, err)
	assert.Equal(t, item.Totals{planks: 3}, losses)
}

func TestValidateChestTransactionMovesBetweenItems(t *testing.T) {
	v := newTestValidator()
	before := ChestState{Chest: item.Totals{planks: 2}, Inventory: item.Totals{dirt: 2}}
	after := ChestState{Chest: item.Totals{dirt: 2}, Inventory: item.Totals{planks: 2}}
	losses, err := v.ValidateChestTransaction("alex", before, after)
	require.NoError(t, err)
	assert.Empty(t, losses)
}

func TestValidateBlockPlacement(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateBlockPlacement(1, dirt, rec(dirt, 5), rec(dirt, 4)))
	assert.NoError(t, v.ValidateBlockPlacement(9, dirt, rec(dirt, 1), rec(item.AirID, 0)))
	assert.NoError(t, v.ValidateBlockPlacement(9, dirt, rec(dirt, 1), nil))

	tests := []struct {
		name     string
		slot     int
		id       int
		old, new *item.Record
		kind     Kind
	}{
		{"unchanged", 1, dirt, rec(dirt, 5), rec(dirt, 5), KindConsumption},
		{"double consume", 1, dirt, rec(dirt, 5), rec(dirt, 3), KindConsumption},
		{"gained", 1, dirt, rec(dirt, 5), rec(dirt, 6), KindConsumption},
		{"slot zero", 0, dirt, rec(dirt, 5), rec(dirt, 4), KindMalformed},
		{"slot past hotbar", 10, dirt, rec(dirt, 5), rec(dirt, 4), KindMalformed},
		{"wrong item in slot", 1, dirt, rec(stone, 5), rec(stone, 4), KindConsumption},
		{"empty slot", 1, dirt, rec(item.AirID, 0), rec(item.AirID, 0), KindConsumption},
		{"missing old", 1, dirt, nil, rec(dirt, 4), KindConsumption},
		{"item swapped", 1, dirt, rec(dirt, 5), rec(stone, 4), KindConsumption},
		{"air placement", 1, item.AirID, rec(dirt, 5), rec(dirt, 4), KindMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateBlockPlacement(tt.slot, tt.id, tt.old, tt.new)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}
