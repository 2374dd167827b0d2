package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is one bookable interval inside a day's availability. Times are
// time-of-day only ("HH:MM", recurring weekly), never calendar dates.
type TimeSlot struct {
	StartTime      string         `json:"start_time"`
	EndTime        string         `json:"end_time"`
	HoursAvailable float64        `json:"hours_available"`
	TokenCount     int            `json:"token_count"`
	BookedTokens   []int          `json:"booked_tokens"`
	Grants         map[string]int `json:"grants,omitempty"`
}

type SlotList []TimeSlot

type Availability struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DoctorID    uuid.UUID  `gorm:"not null;uniqueIndex:idx_doctor_day" json:"doctor_id"`
	DayOfWeek   int        `gorm:"not null;uniqueIndex:idx_doctor_day" json:"day_of_week"`
	IsAvailable bool       `gorm:"not null;default:true" json:"is_available"`
	Slots       SlotList   `gorm:"serializer:json" json:"slots"`
	AddedBy     AuditStamp `gorm:"embedded;embeddedPrefix:added_by_" json:"added_by"`
	UpdatedBy   AuditStamp `gorm:"embedded;embeddedPrefix:updated_by_" json:"updated_by"`
	Version     int64      `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *TimeSlot) BookedCount() int {
	return len(s.BookedTokens)
}

func (s *TimeSlot) HasToken(token int) bool {
	for _, t := range s.BookedTokens {
		if t == token {
			return true
		}
	}
	return false
}

// NextFreeToken returns the lowest unused token number in [1, TokenCount].
func (s *TimeSlot) NextFreeToken() (int, bool) {
	for token := 1; token <= s.TokenCount; token++ {
		if !s.HasToken(token) {
			return token, true
		}
	}
	return 0, false
}

// Book marks a token as reserved, keeping the set sorted. Booking an already
// reserved token is rejected so the capacity ledger can never double-count.
func (s *TimeSlot) Book(token int) bool {
	if token < 1 || token > s.TokenCount || s.HasToken(token) {
		return false
	}
	i := 0
	for i < len(s.BookedTokens) && s.BookedTokens[i] < token {
		i++
	}
	s.BookedTokens = append(s.BookedTokens, 0)
	copy(s.BookedTokens[i+1:], s.BookedTokens[i:])
	s.BookedTokens[i] = token
	return true
}

// Release removes a token from the booked set. Returns false when the token
// was not booked; callers treat that as a no-op, not an error.
func (s *TimeSlot) Release(token int) bool {
	for i, t := range s.BookedTokens {
		if t == token {
			s.BookedTokens = append(s.BookedTokens[:i], s.BookedTokens[i+1:]...)
			for key, granted := range s.Grants {
				if granted == token {
					delete(s.Grants, key)
				}
			}
			return true
		}
	}
	return false
}

// RememberGrant records that an idempotency key was granted a token, so a
// retried reserve after an ambiguous failure gets the same token back.
func (s *TimeSlot) RememberGrant(key string, token int) {
	if key == "" {
		return
	}
	if s.Grants == nil {
		s.Grants = make(map[string]int)
	}
	s.Grants[key] = token
}

func (s *TimeSlot) GrantFor(key string) (int, bool) {
	if key == "" || s.Grants == nil {
		return 0, false
	}
	token, ok := s.Grants[key]
	return token, ok
}

// SameWindow reports whether two slots describe the same interval; an edit that
// keeps the window keeps the slot's identity (and its bookings).
func (s *TimeSlot) SameWindow(other *TimeSlot) bool {
	return s.StartTime == other.StartTime && s.EndTime == other.EndTime
}

// HasBookings reports whether any slot in the record holds reserved tokens.
func (a *Availability) HasBookings() bool {
	for i := range a.Slots {
		if a.Slots[i].BookedCount() > 0 {
			return true
		}
	}
	return false
}
