package scheduling

import (
	"errors"
	"fmt"
)

// Stable error kinds surfaced to handlers. Callers distinguish them with
// errors.Is / errors.As; none of them are ever swallowed between the store and
// the service boundary.
var (
	ErrNotFound          = errors.New("availability record not found")
	ErrSlotNotFound      = errors.New("slot index out of range")
	ErrVersionConflict   = errors.New("availability record was modified concurrently")
	ErrCapacityExceeded  = errors.New("no tokens left for this slot")
	ErrContention        = errors.New("slot is under heavy contention, retry later")
	ErrForbidden         = errors.New("actor may not access doctors outside their branch")
	ErrHasActiveBookings = errors.New("day has reserved tokens, pass force to delete")
)

// ValidationError marks a malformed slot: bad time range, zero capacity,
// duration mismatch, or a corrupt token set. Always rejected before any write.
type ValidationError struct {
	SlotIndex int
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("slot %d: %s", e.SlotIndex, e.Message)
}

// ConflictError marks two overlapping slots within one day.
type ConflictError struct {
	First  int
	Second int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slots %d and %d overlap", e.First, e.Second)
}
