package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/middleware"
	"github.com/hospitalhq/hospital_ops/models"
)

type SlotRequest struct {
	StartTime      string  `json:"start_time" validate:"required"`
	EndTime        string  `json:"end_time" validate:"required"`
	HoursAvailable float64 `json:"hours_available" validate:"required,gt=0"`
	TokenCount     int     `json:"token_count" validate:"required,gte=1"`
}

type UpsertDayRequest struct {
	DayOfWeek   int           `json:"day_of_week" validate:"gte=0,lte=6"`
	IsAvailable *bool         `json:"is_available,omitempty"`
	Slots       []SlotRequest `json:"slots" validate:"dive"`
	Version     int64         `json:"version" validate:"gte=0"`
}

// GetBranchAvailability returns every record visible to the actor's branch,
// annotated with display statuses.
func GetBranchAvailability(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
	}

	schedules, err := Schedule.BranchOverview(c.UserContext(), actor)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(fiber.Map{"schedules": schedules})
}

func GetWeeklySchedule(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
	}
	doctorID, err := uuid.Parse(c.Params("doctorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid doctor id"})
	}

	schedules, err := Schedule.GetWeeklySchedule(c.UserContext(), actor, doctorID)
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(fiber.Map{"doctor_id": doctorID, "schedules": schedules})
}

// UpsertDaySlots replaces one day's slot list. The request carries the version
// the client last saw; a stale version comes back as 409 so the client
// re-renders current state instead of silently overwriting a concurrent edit.
func UpsertDaySlots(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
	}
	doctorID, err := uuid.Parse(c.Params("doctorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid doctor id"})
	}

	var req UpsertDayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	slots := make(models.SlotList, len(req.Slots))
	for i, s := range req.Slots {
		slots[i] = models.TimeSlot{
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			HoursAvailable: s.HoursAvailable,
			TokenCount:     s.TokenCount,
		}
	}
	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	schedule, err := Schedule.UpsertDaySlots(c.UserContext(), actor, doctorID, req.DayOfWeek, slots, isAvailable, req.Version)
	if err != nil {
		return scheduleError(c, err)
	}
	if schedule == nil {
		return c.JSON(fiber.Map{"message": "Day removed", "day_of_week": req.DayOfWeek})
	}
	return c.JSON(fiber.Map{"message": "Schedule saved", "schedule": schedule})
}

// DeleteDay removes a day's record; days with reserved tokens need the
// force=true query flag acknowledged by the operator.
func DeleteDay(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
	}
	doctorID, err := uuid.Parse(c.Params("doctorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid doctor id"})
	}
	dayOfWeek, err := strconv.Atoi(c.Params("dayOfWeek"))
	if err != nil || dayOfWeek < 0 || dayOfWeek > 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid day of week"})
	}
	force := c.Query("force") == "true"

	if err := Schedule.DeleteDay(c.UserContext(), actor, doctorID, dayOfWeek, force); err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Day deleted", "day_of_week": dayOfWeek, "forced": force})
}
