package scheduling

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// t2m parses an "HH:MM" time-of-day into minutes from midnight.
func t2m(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	if hours < 0 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	total := hours*60 + minutes
	if total > minutesPerDay {
		return 0, fmt.Errorf("time %q is past end of day", s)
	}
	return total, nil
}

func m2t(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
