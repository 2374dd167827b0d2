package scheduling

import "github.com/hospitalhq/hospital_ops/models"

// Authorize decides whether an actor may touch a doctor's schedule. It is a
// precondition run before any store access, so cross-branch data can not leak
// through reads either. The switch is exhaustive over the known roles; an
// unknown role is always forbidden.
func Authorize(actor models.Actor, doctor *models.Doctor, write bool) error {
	switch actor.Role {
	case models.RoleMasterAdmin:
		return nil
	case models.RoleSubAdmin:
		if actor.BranchID != doctor.BranchID {
			return ErrForbidden
		}
		return nil
	case models.RoleDoctor:
		if actor.BranchID != doctor.BranchID {
			return ErrForbidden
		}
		if write && actor.DoctorID != doctor.ID {
			return ErrForbidden
		}
		return nil
	case models.RoleReceptionist:
		if write {
			return ErrForbidden
		}
		if actor.BranchID != doctor.BranchID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

// CanReserve reports whether the role may consume or free tokens. Every
// branch-scoped role can; reservation is not a schedule mutation.
func CanReserve(actor models.Actor, doctor *models.Doctor) error {
	switch actor.Role {
	case models.RoleMasterAdmin:
		return nil
	case models.RoleSubAdmin, models.RoleDoctor, models.RoleReceptionist:
		if actor.BranchID != doctor.BranchID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}
