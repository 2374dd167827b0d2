package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hospitalhq/hospital_ops/scheduling"
)

var validate = validator.New()

// Schedule is the orchestrating service behind every availability endpoint,
// wired up once in main (or with a MemStore in handler tests).
var Schedule *scheduling.Service

func Setup(svc *scheduling.Service) {
	Schedule = svc
}

// scheduleError translates the scheduling error kinds into HTTP responses.
// The kinds are the contract; the UI collaborator owns the user wording.
func scheduleError(c *fiber.Ctx, err error) error {
	var validationErr *scheduling.ValidationError
	var conflictErr *scheduling.ConflictError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error(), "kind": "validation"})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": conflictErr.Error(), "kind": "slot_conflict"})
	case errors.Is(err, scheduling.ErrNotFound), errors.Is(err, scheduling.ErrSlotNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error(), "kind": "not_found"})
	case errors.Is(err, scheduling.ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "kind": "version_conflict"})
	case errors.Is(err, scheduling.ErrCapacityExceeded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "kind": "capacity_exceeded"})
	case errors.Is(err, scheduling.ErrHasActiveBookings):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "kind": "has_active_bookings"})
	case errors.Is(err, scheduling.ErrForbidden):
		log.Printf("SECURITY: branch-scope violation: %s %s", c.Method(), c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error(), "kind": "forbidden"})
	case errors.Is(err, scheduling.ErrContention):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error(), "kind": "contention"})
	default:
		log.Printf("[ERROR] %v | Path: %s", err, c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
