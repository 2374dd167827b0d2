package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hospitalhq/hospital_ops/handlers"
	"github.com/hospitalhq/hospital_ops/middleware"
)

func AvailabilityRoutes(app *fiber.App) {
	api := app.Group("/api")

	availability := api.Group("/doctor-availability", middleware.Protected())

	// Staff directory.
	availability.Get("/doctors/list", handlers.ListDoctors)
	availability.Post("/doctors", middleware.SubAdminRequired(), handlers.CreateDoctor)
	availability.Delete("/doctors/:doctorId", middleware.SubAdminRequired(), handlers.DeactivateDoctor)

	// Schedule reads and edits.
	availability.Get("", handlers.GetBranchAvailability)
	availability.Get("/:doctorId", handlers.GetWeeklySchedule)
	availability.Post("/:doctorId", middleware.WriterRequired(), handlers.UpsertDaySlots)
	availability.Delete("/:doctorId/:dayOfWeek", middleware.WriterRequired(), handlers.DeleteDay)

	// Token capacity ledger, called by the appointment system.
	availability.Post("/:doctorId/:dayOfWeek/slots/:slotIndex/reserve", handlers.ReserveToken)
	availability.Post("/:doctorId/:dayOfWeek/slots/:slotIndex/release", handlers.ReleaseToken)
	availability.Get("/:doctorId/:dayOfWeek/slots/:slotIndex/capacity", handlers.PeekCapacity)
}
