package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/middleware"
	"github.com/hospitalhq/hospital_ops/utils"
)

type slotRef struct {
	doctorID  uuid.UUID
	dayOfWeek int
	slotIndex int
}

func parseSlotRef(c *fiber.Ctx) (slotRef, error) {
	doctorID, err := uuid.Parse(c.Params("doctorId"))
	if err != nil {
		return slotRef{}, fiber.NewError(fiber.StatusBadRequest, "Invalid doctor id")
	}
	dayOfWeek, err := strconv.Atoi(c.Params("dayOfWeek"))
	if err != nil || dayOfWeek < 0 || dayOfWeek > 6 {
		return slotRef{}, fiber.NewError(fiber.StatusBadRequest, "Invalid day of week")
	}
	slotIndex, err := strconv.Atoi(c.Params("slotIndex"))
	if err != nil || slotIndex < 0 {
		return slotRef{}, fiber.NewError(fiber.StatusBadRequest, "Invalid slot index")
	}
	return slotRef{doctorID: doctorID, dayOfWeek: dayOfWeek, slotIndex: slotIndex}, nil
}

// ReserveToken grants the lowest free token number for a slot. The external
// appointment system calls this instead of ever touching booked_tokens itself.
// An Idempotency-Key header makes retries after ambiguous failures safe.
func ReserveToken(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
	}
	ref, err := parseSlotRef(c)
	if err != nil {
		return err
	}
	idemKey := c.Get("Idempotency-Key")

	token, err := Schedule.ReserveToken(c.UserContext(), actor, ref.doctorID, ref.dayOfWeek, ref.slotIndex, idemKey)
	if err != nil {
		return scheduleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":       token,
		"booking_ref": utils.GenerateBookingReference(ref.doctorID, ref.dayOfWeek, ref.slotIndex, token),
	})
}

type ReleaseTokenRequest struct {
	Token int `json:"token" validate:"required,gte=1"`
}

// ReleaseToken frees a token. Releasing an already-released token succeeds
// with the same response, so cancellation retries are harmless.
func ReleaseToken(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
	}
	ref, err := parseSlotRef(c)
	if err != nil {
		return err
	}

	var req ReleaseTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := Schedule.ReleaseToken(c.UserContext(), actor, ref.doctorID, ref.dayOfWeek, ref.slotIndex, req.Token); err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Token released", "token": req.Token})
}

func PeekCapacity(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
	}
	ref, err := parseSlotRef(c)
	if err != nil {
		return err
	}

	capacity, err := Schedule.PeekCapacity(c.UserContext(), actor, ref.doctorID, ref.dayOfWeek, ref.slotIndex)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(capacity)
}
