package validate

import "github.com/voxelkeep/server/internal/item"

// SanitizeSlotArray repairs instead of rejecting. Out-of-range and nil entries
// are dropped, unknown ids become air, counts are clamped, and a non-air slot
// left with nothing in it becomes air. The input is never modified.
// wasModified is false when the output equals the input, so a second pass over
// sanitized output always reports false.
func (v *Validator) SanitizeSlotArray(slots item.Slots, expectedSize int) (item.Slots, bool) {
	out := make(item.Slots, len(slots))
	modified := false

	for _, idx := range slots.Indices() {
		src := slots[idx]
		if idx < 1 || idx > expectedSize || src == nil {
			modified = true
			continue
		}

		r := src.Clone()
		if r.ItemID < item.AirID || (r.ItemID != item.AirID && !v.oracle.IsValidItem(r.ItemID)) {
			r.ItemID = item.AirID
		}
		if r.Count < 0 {
			r.Count = 0
		}
		if r.Count > v.limits.MaxStack {
			r.Count = v.limits.MaxStack
		}
		if v.oracle.IsNonStackable(r.ItemID) && r.Count > 1 {
			r.Count = 1
		}
		if r.ItemID != item.AirID && r.Count == 0 {
			r.ItemID = item.AirID
		}
		if r.ItemID == item.AirID {
			r.Count = 0
			r.Metadata = nil
		}

		if r.ItemID != src.ItemID || r.Count != src.Count || len(r.Metadata) != len(src.Metadata) {
			modified = true
		}
		out[idx] = r
	}
	return out, modified
}
