package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelkeep/server/internal/item"
)

func TestSanitizeUnknownItem(t *testing.T) {
	v := newTestValidator()
	out, modified := v.SanitizeSlotArray(item.Slots{1: rec(99999, 5)}, 9)
	assert.True(t, modified)
	require.Contains(t, out, 1)
	assert.Equal(t, item.AirID, out[1].ItemID)
	assert.Equal(t, 0, out[1].Count)
}

func TestSanitizeRepairs(t *testing.T) {
	v := newTestValidator()
	in := item.Slots{
		0:  rec(dirt, 3),
		1:  rec(dirt, 80),
		2:  rec(dirt, -4),
		3:  rec(item.AirID, 9),
		4:  rec(pickaxe, 6),
		5:  rec(-7, 2),
		6:  nil,
		7:  rec(cowEgg, 12),
		10: rec(dirt, 1),
	}
	out, modified := v.SanitizeSlotArray(in, 9)
	assert.True(t, modified)

	assert.NotContains(t, out, 0)
	assert.NotContains(t, out, 6)
	assert.NotContains(t, out, 10)
	assert.Equal(t, 64, out[1].Count)
	assert.Equal(t, item.AirID, out[2].ItemID)
	assert.Equal(t, 0, out[3].Count)
	assert.Equal(t, 1, out[4].Count)
	assert.Equal(t, pickaxe, out[4].ItemID)
	assert.Equal(t, item.AirID, out[5].ItemID)
	assert.Equal(t, 12, out[7].Count)

	// the input is left alone
	assert.Equal(t, 80, in[1].Count)

	_, err := v.ValidateSlotArray(out, 9)
	assert.NoError(t, err, "sanitized output must validate")
}

func TestSanitizeCleanInputUnmodified(t *testing.T) {
	v := newTestValidator()
	in := item.Slots{1: rec(dirt, 10), 2: rec(item.AirID, 0), 3: rec(pickaxe, 1)}
	out, modified := v.SanitizeSlotArray(in, 9)
	assert.False(t, modified)
	assert.Equal(t, in, out)
}

func TestSanitizeIdempotent(t *testing.T) {
	v := newTestValidator()
	inputs := []item.Slots{
		{1: rec(99999, 5)},
		{1: rec(dirt, 200), 2: rec(pickaxe, 2), 40: rec(stone, 1)},
		{3: rec(item.AirID, -1), 4: nil, 5: {ItemID: item.AirID, Metadata: map[string]any{"x": 1}}},
		{},
	}
	for _, in := range inputs {
		first, _ := v.SanitizeSlotArray(in, 27)
		second, modified := v.SanitizeSlotArray(first, 27)
		assert.False(t, modified)
		assert.Equal(t, first, second)
	}
}
