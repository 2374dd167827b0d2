package scheduling

import (
	"math"
	"sort"

	"github.com/hospitalhq/hospital_ops/models"
)

// durationTolerance is how far (in hours) a slot's declared HoursAvailable may
// drift from its actual start/end span before the slot is rejected. One minute.
const durationTolerance = 1.0 / 60.0

type slotSpan struct {
	index int
	start int
	end   int
}

// ValidateSlots checks a day's slot list before it is allowed near the store.
// Malformed slots come back as *ValidationError, overlapping slots as
// *ConflictError. Pure: no I/O, no mutation.
func ValidateSlots(slots models.SlotList) error {
	spans := make([]slotSpan, 0, len(slots))

	for i := range slots {
		slot := &slots[i]

		start, err := t2m(slot.StartTime)
		if err != nil {
			return &ValidationError{SlotIndex: i, Message: err.Error()}
		}
		end, err := t2m(slot.EndTime)
		if err != nil {
			return &ValidationError{SlotIndex: i, Message: err.Error()}
		}
		if start >= end {
			return &ValidationError{SlotIndex: i, Message: "start time must be before end time"}
		}
		if slot.TokenCount < 1 {
			return &ValidationError{SlotIndex: i, Message: "token count must be at least 1"}
		}

		actualHours := float64(end-start) / 60.0
		if math.Abs(slot.HoursAvailable-actualHours) > durationTolerance {
			return &ValidationError{SlotIndex: i, Message: "hours_available does not match the slot duration"}
		}

		if err := validateTokenSet(i, slot); err != nil {
			return err
		}

		spans = append(spans, slotSpan{index: i, start: start, end: end})
	}

	// Half-open overlap test: A and B overlap iff A.start < B.end && B.start < A.end.
	sort.Slice(spans, func(a, b int) bool { return spans[a].start < spans[b].start })
	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if cur.start < prev.end {
			return &ConflictError{First: prev.index, Second: cur.index}
		}
	}

	return nil
}

func validateTokenSet(index int, slot *models.TimeSlot) error {
	if len(slot.BookedTokens) > slot.TokenCount {
		return &ValidationError{SlotIndex: index, Message: "more booked tokens than capacity"}
	}
	seen := make(map[int]bool, len(slot.BookedTokens))
	for _, token := range slot.BookedTokens {
		if token < 1 || token > slot.TokenCount {
			return &ValidationError{SlotIndex: index, Message: "booked token outside the valid range"}
		}
		if seen[token] {
			return &ValidationError{SlotIndex: index, Message: "duplicate booked token"}
		}
		seen[token] = true
	}
	return nil
}
