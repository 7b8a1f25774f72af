package item

import "sort"

// Record is the plain per-slot payload shape exchanged with transport and
// persistence. MaxStack and Metadata are optional.
type Record struct {
	ItemID   int            `json:"itemId"`
	Count    int            `json:"count"`
	MaxStack *int           `json:"maxStack,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IsAir reports whether the record describes an empty slot.
func (r *Record) IsAir() bool {
	return r.ItemID == AirID
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{
		ItemID:   r.ItemID,
		Count:    r.Count,
		Metadata: cloneMetadata(r.Metadata),
	}
	if r.MaxStack != nil {
		m := *r.MaxStack
		out.MaxStack = &m
	}
	return out
}

// Slots is a sparse, 1-indexed slot collection. An absent index is an empty slot.
type Slots map[int]*Record

// Indices returns the present slot indices in ascending order.
func (s Slots) Indices() []int {
	out := make([]int, 0, len(s))
	for idx := range s {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Clone deep-copies every record.
func (s Slots) Clone() Slots {
	if s == nil {
		return nil
	}
	out := make(Slots, len(s))
	for idx, r := range s {
		out[idx] = r.Clone()
	}
	return out
}

// Totals sums item quantities across all non-air records, ignoring nil entries.
func (s Slots) Totals() Totals {
	out := Totals{}
	for _, r := range s {
		if r == nil || r.ItemID == AirID || r.Count <= 0 {
			continue
		}
		out[r.ItemID] += r.Count
	}
	return out
}

// Totals maps item id to total quantity. It deliberately forgets which slot
// held the units.
type Totals map[int]int

// Add accumulates other into t.
func (t Totals) Add(other Totals) {
	for id, n := range other {
		t[id] += n
	}
}

// ItemIDs returns every item id with an entry, ascending.
func (t Totals) ItemIDs() []int {
	out := make([]int, 0, len(t))
	for id := range t {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Combine sums any number of totals into a fresh map.
func Combine(parts ...Totals) Totals {
	out := Totals{}
	for _, p := range parts {
		out.Add(p)
	}
	return out
}
