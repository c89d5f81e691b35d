package order

import (
	"fmt"

	"ordertracker/internal/pkg/errs"
)

// DisputeState tracks whether a buyer raised a dispute on the order.
//
//	None ──> Open ──> Resolved
type DisputeState int

const (
	DisputeUnknown DisputeState = iota
	DisputeNone
	DisputeOpen
	DisputeResolved
)

func getDisputeStateStrings() map[DisputeState]string {
	return map[DisputeState]string{
		DisputeUnknown:  "unknown",
		DisputeNone:     "none",
		DisputeOpen:     "open",
		DisputeResolved: "resolved",
	}
}

// Validate rejects DisputeUnknown and out-of-range values, e.g. a corrupted column.
func (s DisputeState) Validate() error {
	if s <= DisputeUnknown || s > DisputeResolved {
		return errs.NewValueIsInvalidErrorWithCause("disputeState", fmt.Errorf("%d is not a valid dispute state", s))
	}
	return nil
}

func (s DisputeState) String() string {
	if str, ok := getDisputeStateStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// ParseDisputeState is the inverse of String for valid states.
func ParseDisputeState(s string) (DisputeState, error) {
	for state, str := range getDisputeStateStrings() {
		if str == s && state != DisputeUnknown {
			return state, nil
		}
	}
	return DisputeUnknown, errs.NewValueIsInvalidErrorWithCause("disputeState", fmt.Errorf("%q is not a valid dispute state", s))
}
