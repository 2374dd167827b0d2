package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a console account (sub-admin, receptionist, or a doctor's login).
// Doctor users carry the staff-directory DoctorID they act as.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName  string     `gorm:"size:255;not null" json:"full_name"`
	Email     string     `gorm:"size:255;not null;unique" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Role      Role       `gorm:"size:20;not null;default:'receptionist'" json:"role"`
	BranchID  uuid.UUID  `gorm:"index" json:"branch_id"`
	DoctorID  *uuid.UUID `json:"doctor_id,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (u *User) Actor() Actor {
	a := Actor{
		ID:          u.ID,
		Role:        u.Role,
		BranchID:    u.BranchID,
		DisplayName: u.FullName,
	}
	if u.DoctorID != nil {
		a.DoctorID = *u.DoctorID
	}
	return a
}
