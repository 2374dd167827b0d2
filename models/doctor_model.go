package models

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName       string    `gorm:"size:255;not null" json:"full_name"`
	Specialization string    `gorm:"size:100" json:"specialization"`
	BranchID       uuid.UUID `gorm:"not null;index" json:"branch_id"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
