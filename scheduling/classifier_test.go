package scheduling

import (
	"testing"

	"github.com/hospitalhq/hospital_ops/models"
)

func TestClassifySlot(t *testing.T) {
	cases := []struct {
		booked      int
		capacity    int
		isAvailable bool
		expected    SlotStatus
	}{
		{booked: 0, capacity: 10, isAvailable: true, expected: StatusAvailable},
		{booked: 7, capacity: 10, isAvailable: true, expected: StatusAvailable},
		{booked: 8, capacity: 10, isAvailable: true, expected: StatusAlmostFull},
		{booked: 9, capacity: 10, isAvailable: true, expected: StatusAlmostFull},
		{booked: 10, capacity: 10, isAvailable: true, expected: StatusFull},
		{booked: 4, capacity: 5, isAvailable: true, expected: StatusAlmostFull},
		{booked: 3, capacity: 5, isAvailable: true, expected: StatusAvailable},
		{booked: 1, capacity: 1, isAvailable: true, expected: StatusFull},
		{booked: 0, capacity: 1, isAvailable: true, expected: StatusAvailable},
		{booked: 0, capacity: 10, isAvailable: false, expected: StatusUnavailable},
		{booked: 10, capacity: 10, isAvailable: false, expected: StatusUnavailable},
	}

	for _, c := range cases {
		got := ClassifySlot(c.booked, c.capacity, c.isAvailable)
		if got != c.expected {
			t.Errorf("ClassifySlot(%d, %d, %v): expected %s, got %s",
				c.booked, c.capacity, c.isAvailable, c.expected, got)
		}
	}
}

func TestClassifyDay_WorstCaseWins(t *testing.T) {
	av := &models.Availability{
		IsAvailable: true,
		Slots: models.SlotList{
			{StartTime: "09:00", EndTime: "10:00", TokenCount: 10},
			{StartTime: "10:00", EndTime: "11:00", TokenCount: 5, BookedTokens: []int{1, 2, 3, 4, 5}},
		},
	}
	if got := ClassifyDay(av); got != StatusFull {
		t.Errorf("expected full day status, got %s", got)
	}

	av.Slots[1].BookedTokens = []int{1, 2, 3, 4}
	if got := ClassifyDay(av); got != StatusAlmostFull {
		t.Errorf("expected almost_full day status, got %s", got)
	}

	av.IsAvailable = false
	if got := ClassifyDay(av); got != StatusUnavailable {
		t.Errorf("expected unavailable day status, got %s", got)
	}
}

func TestClassifyDay_EmptyDayIsUnavailable(t *testing.T) {
	av := &models.Availability{IsAvailable: true}
	if got := ClassifyDay(av); got != StatusUnavailable {
		t.Errorf("expected unavailable for empty day, got %s", got)
	}
}
