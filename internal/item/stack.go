package item

// AirID is the reserved item id for an empty slot.
const AirID = 0

// DefaultMaxStack is the stack capacity of every stackable item.
const DefaultMaxStack = 64

// Stack is a homogeneous quantity of one item type.
// Invariants: 0 <= Count <= MaxStack, and ItemID == AirID implies Count == 0.
// Not safe for concurrent use; owners serialize access.
type Stack struct {
	ItemID   int
	Count    int
	MaxStack int
	Metadata map[string]any // durability, enchantments; opaque here
}

// New creates a stack with the default capacity.
func New(itemID, count int) *Stack {
	return NewWithMax(itemID, count, DefaultMaxStack)
}

// NewWithMax creates a stack with an explicit capacity. A non-positive
// maxStack falls back to DefaultMaxStack.
func NewWithMax(itemID, count, maxStack int) *Stack {
	if maxStack <= 0 {
		maxStack = DefaultMaxStack
	}
	s := &Stack{ItemID: itemID, MaxStack: maxStack}
	s.SetCount(count)
	return s
}

// IsEmpty reports whether the slot holds nothing.
func (s *Stack) IsEmpty() bool {
	return s.ItemID == AirID || s.Count <= 0
}

// SetCount clamps n into [0, MaxStack]. A result of zero turns the stack into air.
// Truncation is silent; use SetCountChecked to observe it.
func (s *Stack) SetCount(n int) {
	if n > s.MaxStack {
		n = s.MaxStack
	}
	if n <= 0 || s.ItemID == AirID {
		s.ItemID = AirID
		s.Count = 0
		return
	}
	s.Count = n
}

// SetCountChecked behaves like SetCount and returns n minus the stored count:
// positive when units did not fit, negative when n was below zero.
func (s *Stack) SetCountChecked(n int) (truncated int) {
	s.SetCount(n)
	return n - s.Count
}

// AddCount adds n units, clamped to capacity.
func (s *Stack) AddCount(n int) {
	s.SetCount(s.Count + n)
}

// RemoveCount removes n units; removing everything empties the stack.
func (s *Stack) RemoveCount(n int) {
	s.SetCount(s.Count - n)
}

// RemainingSpace returns how many more units fit.
func (s *Stack) RemainingSpace() int {
	if s.Count >= s.MaxStack {
		return 0
	}
	return s.MaxStack - s.Count
}

// CanStack reports whether other holds units of the same item.
func (s *Stack) CanStack(other *Stack) bool {
	return other != nil && !other.IsEmpty() && other.ItemID == s.ItemID
}

// Merge moves as many units as fit from other into s and returns the
// amount moved. Units are conserved: s gains exactly what other loses.
func (s *Stack) Merge(other *Stack) int {
	if !s.CanStack(other) {
		return 0
	}
	moved := min(s.RemainingSpace(), other.Count)
	if moved <= 0 {
		return 0
	}
	s.Count += moved
	other.SetCount(other.Count - moved)
	return moved
}

// SplitHalf removes ceil(Count/2) units into a new stack, leaving floor(Count/2).
func (s *Stack) SplitHalf() *Stack {
	if s.IsEmpty() {
		return NewWithMax(AirID, 0, DefaultMaxStack)
	}
	taken := (s.Count + 1) / 2
	out := &Stack{
		ItemID:   s.ItemID,
		Count:    taken,
		MaxStack: s.MaxStack,
		Metadata: cloneMetadata(s.Metadata),
	}
	s.SetCount(s.Count - taken)
	return out
}

// TakeOne removes a single unit into a new stack. An empty stack yields an empty result.
func (s *Stack) TakeOne() *Stack {
	if s.IsEmpty() {
		return NewWithMax(AirID, 0, DefaultMaxStack)
	}
	out := &Stack{
		ItemID:   s.ItemID,
		Count:    1,
		MaxStack: s.MaxStack,
		Metadata: cloneMetadata(s.Metadata),
	}
	s.SetCount(s.Count - 1)
	return out
}

// Clear resets the stack to canonical air.
func (s *Stack) Clear() {
	s.ItemID = AirID
	s.Count = 0
	s.MaxStack = DefaultMaxStack
	s.Metadata = nil
}

// Clone returns a copy whose mutation never affects s.
func (s *Stack) Clone() *Stack {
	return &Stack{
		ItemID:   s.ItemID,
		Count:    s.Count,
		MaxStack: s.MaxStack,
		Metadata: cloneMetadata(s.Metadata),
	}
}

// Serialize converts the stack into its plain slot record.
func (s *Stack) Serialize() Record {
	maxStack := s.MaxStack
	return Record{
		ItemID:   s.ItemID,
		Count:    s.Count,
		MaxStack: &maxStack,
		Metadata: cloneMetadata(s.Metadata),
	}
}

// Deserialize rebuilds a stack from a record. A nil record yields an empty stack.
// Counts are clamped the same way SetCount clamps them.
func Deserialize(r *Record) *Stack {
	if r == nil {
		return NewWithMax(AirID, 0, DefaultMaxStack)
	}
	maxStack := DefaultMaxStack
	if r.MaxStack != nil && *r.MaxStack > 0 {
		maxStack = *r.MaxStack
	}
	s := &Stack{ItemID: r.ItemID, MaxStack: maxStack, Metadata: cloneMetadata(r.Metadata)}
	s.SetCount(r.Count)
	if s.ItemID == AirID {
		s.Metadata = nil
	}
	return s
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
