package scheduling

import "github.com/hospitalhq/hospital_ops/models"

// SlotStatus is the display state of a slot or a whole day. Order matters:
// higher values are "worse" and win when a day aggregates its slots.
type SlotStatus int

const (
	StatusAvailable SlotStatus = iota
	StatusAlmostFull
	StatusFull
	StatusUnavailable
)

func (s SlotStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusAlmostFull:
		return "almost_full"
	case StatusFull:
		return "full"
	case StatusUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// ClassifySlot maps a booked-vs-capacity ratio to a display state. Stateless,
// recomputed on every read so it can never go stale against the token ledger.
// AlmostFull starts at 80% occupancy; integer arithmetic avoids float edges.
func ClassifySlot(booked, capacity int, isAvailable bool) SlotStatus {
	switch {
	case !isAvailable:
		return StatusUnavailable
	case booked >= capacity:
		return StatusFull
	case 5*booked >= 4*capacity:
		return StatusAlmostFull
	default:
		return StatusAvailable
	}
}

// ClassifyDay aggregates a record's slots, worst case wins. A deactivated or
// empty day is Unavailable regardless of its slots.
func ClassifyDay(av *models.Availability) SlotStatus {
	if !av.IsAvailable || len(av.Slots) == 0 {
		return StatusUnavailable
	}
	worst := StatusAvailable
	for i := range av.Slots {
		slot := &av.Slots[i]
		status := ClassifySlot(slot.BookedCount(), slot.TokenCount, true)
		if status > worst {
			worst = status
		}
	}
	return worst
}
