package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditStamp records who touched an availability record. It is informational
// only and must round-trip through the store untouched.
type AuditStamp struct {
	ActorID     uuid.UUID `json:"actor_id"`
	Role        Role      `gorm:"size:20" json:"role"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	At          time.Time `json:"at"`
}

func StampFor(actor Actor, at time.Time) AuditStamp {
	return AuditStamp{
		ActorID:     actor.ID,
		Role:        actor.Role,
		DisplayName: actor.DisplayName,
		At:          at,
	}
}

// AuditLog is one row per schedule mutation, used by the operations dashboard.
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Action    string    `gorm:"size:40;not null" json:"action"`
	DoctorID  uuid.UUID `gorm:"index" json:"doctor_id"`
	DayOfWeek int       `json:"day_of_week"`
	Version   int64     `json:"version"`
	ActorID   uuid.UUID `json:"actor_id"`
	ActorRole Role      `gorm:"size:20" json:"actor_role"`
	ActorName string    `gorm:"size:255" json:"actor_name"`
	Detail    string    `gorm:"size:500" json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
