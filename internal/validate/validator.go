package validate

import (
	"github.com/voxelkeep/server/internal/item"
	"go.uber.org/zap"
)

// Limits bounds what a single slot or container may hold.
type Limits struct {
	MaxStack   int // largest count any slot may carry
	HotbarSize int // valid hotbar slots are [1, HotbarSize]
}

// DefaultLimits matches the stock client: 64 per slot, 9 hotbar slots.
func DefaultLimits() Limits {
	return Limits{MaxStack: item.DefaultMaxStack, HotbarSize: 9}
}

// Validator checks untrusted slot data. It never mutates its inputs and is
// safe for concurrent use; serializing validate-then-commit is the caller's job.
type Validator struct {
	oracle *Oracle
	limits Limits
	log    *zap.Logger
}

// NewValidator creates a validator. Zero limits fall back to DefaultLimits;
// MaxStack never exceeds item.DefaultMaxStack.
func NewValidator(oracle *Oracle, limits Limits, log *zap.Logger) *Validator {
	def := DefaultLimits()
	if limits.MaxStack <= 0 || limits.MaxStack > def.MaxStack {
		limits.MaxStack = def.MaxStack
	}
	if limits.HotbarSize <= 0 {
		limits.HotbarSize = def.HotbarSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{oracle: oracle, limits: limits, log: log}
}

// Oracle returns the item oracle backing this validator.
func (v *Validator) Oracle() *Oracle {
	return v.oracle
}

// Limits returns the effective limits.
func (v *Validator) Limits() Limits {
	return v.limits
}

// ValidateItemStack checks a single slot record. Rules are applied in a fixed
// order so the reported reason is stable.
func (v *Validator) ValidateItemStack(r *item.Record) error {
	if r == nil {
		return reject(KindMalformed, "record is missing")
	}
	if r.ItemID != item.AirID && !v.oracle.IsValidItem(r.ItemID) {
		return reject(KindUnknownItem, "unknown item id %d", r.ItemID)
	}
	if r.ItemID == item.AirID && r.Count != 0 {
		return reject(KindInvariant, "air must have count 0, got %d", r.Count)
	}
	if r.Count < 0 || r.Count > v.limits.MaxStack {
		return reject(KindInvariant, "count %d outside [0, %d]", r.Count, v.limits.MaxStack)
	}
	if v.oracle.IsNonStackable(r.ItemID) && r.Count > 1 {
		return reject(KindInvariant, "tool %d cannot stack, got count %d", r.ItemID, r.Count)
	}
	if r.ItemID > item.AirID && r.Count <= 0 {
		return reject(KindInvariant, "item %d must have count >= 1", r.ItemID)
	}
	return nil
}

// ValidateSlotArray checks every present slot against expectedSize and the
// per-record rules, returning aggregated totals on success.
func (v *Validator) ValidateSlotArray(slots item.Slots, expectedSize int) (item.Totals, error) {
	if expectedSize <= 0 {
		return nil, reject(KindMalformed, "container size %d must be positive", expectedSize)
	}

	indices := slots.Indices()
	for _, idx := range indices {
		if idx < 1 || idx > expectedSize {
			return nil, reject(KindMalformed, "slot index %d outside [1, %d]", idx, expectedSize)
		}
	}
	for _, idx := range indices {
		if err := v.ValidateItemStack(slots[idx]); err != nil {
			rej := err.(*Rejection)
			return nil, &Rejection{Kind: rej.Kind, Slot: idx, Reason: rej.Reason}
		}
	}
	if len(indices) > expectedSize {
		return nil, reject(KindOversized, "%d populated slots exceed capacity %d", len(indices), expectedSize)
	}

	return slots.Totals(), nil
}
