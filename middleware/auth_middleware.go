package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/hospitalhq/hospital_ops/configs"
	"github.com/hospitalhq/hospital_ops/models"
)

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

// ActorFromContext rebuilds the {actorId, role, branchId} triple the upstream
// credential resolved to. The scheduling service trusts nothing else about
// the request.
func ActorFromContext(c *fiber.Ctx) (models.Actor, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return models.Actor{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, false
	}

	roleStr, _ := claims["role"].(string)
	role, ok := models.ParseRole(roleStr)
	if !ok {
		return models.Actor{}, false
	}

	idStr, _ := claims["user_id"].(string)
	actorID, err := uuid.Parse(idStr)
	if err != nil {
		return models.Actor{}, false
	}

	actor := models.Actor{
		ID:   actorID,
		Role: role,
	}
	if branchStr, ok := claims["branch_id"].(string); ok {
		actor.BranchID, _ = uuid.Parse(branchStr)
	}
	if doctorStr, ok := claims["doctor_id"].(string); ok {
		actor.DoctorID, _ = uuid.Parse(doctorStr)
	}
	if name, ok := claims["name"].(string); ok {
		actor.DisplayName = name
	}
	return actor, true
}

// WriterRequired rejects roles that may never mutate schedules, before the
// branch-scope guard does the per-doctor check.
func WriterRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unrecognized credentials",
			})
		}
		switch actor.Role {
		case models.RoleMasterAdmin, models.RoleSubAdmin, models.RoleDoctor:
			return c.Next()
		default:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: schedule write access required",
			})
		}
	}
}

// SubAdminRequired gates the staff-directory mutations.
func SubAdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unrecognized credentials",
			})
		}
		switch actor.Role {
		case models.RoleMasterAdmin, models.RoleSubAdmin:
			return c.Next()
		default:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: admin access required",
			})
		}
	}
}
