package validate

import (
	"errors"
	"fmt"
)

// Kind classifies why a submission was rejected.
type Kind int

const (
	KindMalformed   Kind = iota + 1 // nil record, bad slot index, bad container size
	KindUnknownItem                 // item id in no catalog
	KindInvariant                   // count rules broken
	KindOversized                   // more populated slots than capacity
	KindDuplication                 // total of some item grew
	KindConsumption                 // placement delta other than -1
)

var (
	ErrMalformed   = errors.New("malformed record")
	ErrUnknownItem = errors.New("unknown item")
	ErrInvariant   = errors.New("invariant violation")
	ErrOversized   = errors.New("oversized container")
	ErrDuplication = errors.New("item duplication")
	ErrConsumption = errors.New("consumption mismatch")
)

var kindSentinels = map[Kind]error{
	KindMalformed:   ErrMalformed,
	KindUnknownItem: ErrUnknownItem,
	KindInvariant:   ErrInvariant,
	KindOversized:   ErrOversized,
	KindDuplication: ErrDuplication,
	KindConsumption: ErrConsumption,
}

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindUnknownItem:
		return "unknown_item"
	case KindInvariant:
		return "invariant"
	case KindOversized:
		return "oversized"
	case KindDuplication:
		return "duplication"
	case KindConsumption:
		return "consumption"
	}
	return "unknown"
}

// Rejection is the structured verdict returned by every validator.
// Error() is the audit reason. Slot is 0 when no slot is involved.
type Rejection struct {
	Kind   Kind
	Slot   int
	Reason string
}

func (r *Rejection) Error() string {
	if r.Slot != 0 {
		return fmt.Sprintf("slot %d invalid: %s", r.Slot, r.Reason)
	}
	return r.Reason
}

// Is lets errors.Is match a rejection against the package sentinels.
func (r *Rejection) Is(target error) bool {
	return kindSentinels[r.Kind] == target
}

func reject(kind Kind, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf extracts the rejection kind from err, or 0 when err is not a rejection.
func KindOf(err error) Kind {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Kind
	}
	return 0
}
