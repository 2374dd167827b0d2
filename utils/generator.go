package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var dayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// GenerateBookingReference builds the short human-readable reference printed
// on a patient's token slip, e.g. "A1B2C3-MO-S0-T2". Deterministic per grant
// so a retried reserve prints the same slip.
func GenerateBookingReference(doctorID uuid.UUID, dayOfWeek, slotIndex, token int) string {
	day := "XX"
	if dayOfWeek >= 0 && dayOfWeek < len(dayCodes) {
		day = dayCodes[dayOfWeek]
	}
	short := strings.ToUpper(strings.ReplaceAll(doctorID.String(), "-", ""))[:6]
	return fmt.Sprintf("%s-%s-S%d-T%d", short, day, slotIndex, token)
}
