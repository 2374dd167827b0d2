package models

import "github.com/google/uuid"

type Role string

const (
	RoleMasterAdmin  Role = "master_admin"
	RoleSubAdmin     Role = "sub_admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
)

// Actor is the resolved identity behind a request: who is calling, in what
// role, and for which branch. Doctors additionally carry their own DoctorID.
type Actor struct {
	ID          uuid.UUID `json:"id"`
	Role        Role      `json:"role"`
	BranchID    uuid.UUID `json:"branch_id"`
	DoctorID    uuid.UUID `json:"doctor_id,omitempty"`
	DisplayName string    `json:"display_name"`
}

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleMasterAdmin, RoleSubAdmin, RoleDoctor, RoleReceptionist:
		return Role(s), true
	}
	return "", false
}
