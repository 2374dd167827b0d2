package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/database"
	"github.com/hospitalhq/hospital_ops/middleware"
	"github.com/hospitalhq/hospital_ops/models"
)

// ListDoctors returns the actor's branch roster, the list the scheduling
// screens are built from.
func ListDoctors(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
	}

	doctors, err := Schedule.ListDoctorsInBranch(c.UserContext(), actor)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(fiber.Map{"doctors": doctors})
}

type CreateDoctorRequest struct {
	FullName       string `json:"full_name" validate:"required,min=2"`
	Specialization string `json:"specialization,omitempty"`
	BranchID       string `json:"branch_id,omitempty" validate:"omitempty,uuid"`
}

// CreateDoctor adds a doctor to the staff directory. Sub-admins always create
// within their own branch; only the master admin may name another branch.
func CreateDoctor(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
	}

	var req CreateDoctorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	branchID := actor.BranchID
	if req.BranchID != "" {
		requested, _ := uuid.Parse(req.BranchID)
		if requested != actor.BranchID && actor.Role != models.RoleMasterAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Cannot create doctors in another branch"})
		}
		branchID = requested
	}

	doctor := models.Doctor{
		FullName:       req.FullName,
		Specialization: req.Specialization,
		BranchID:       branchID,
		Active:         true,
	}
	if err := database.DB.Create(&doctor).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create doctor"})
	}
	return c.Status(fiber.StatusCreated).JSON(doctor)
}

// DeactivateDoctor flags a doctor inactive; their schedule records stay for
// the audit trail but drop out of the branch roster.
func DeactivateDoctor(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
	}
	doctorID, err := uuid.Parse(c.Params("doctorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid doctor id"})
	}

	var doctor models.Doctor
	if err := database.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Doctor not found"})
	}
	if actor.Role != models.RoleMasterAdmin && actor.BranchID != doctor.BranchID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Cannot manage doctors in another branch"})
	}

	if err := database.DB.Model(&doctor).Update("active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate doctor"})
	}
	return c.JSON(fiber.Map{"message": "Doctor deactivated", "doctor_id": doctorID})
}
