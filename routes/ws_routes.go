package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/hospitalhq/hospital_ops/middleware"
	"github.com/hospitalhq/hospital_ops/models"
	ws "github.com/hospitalhq/hospital_ops/websocket"
)

func WebsocketRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	feed := app.Group("/ws", middleware.Protected(), func(c *fiber.Ctx) error {
		actor, ok := middleware.ActorFromContext(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unrecognized credentials"})
		}
		c.Locals("actor", actor)
		return c.Next()
	})

	feed.Get("/schedule", websocket.New(func(conn *websocket.Conn) {
		actor := conn.Locals("actor").(models.Actor)
		client := &ws.Client{ActorID: actor.ID, BranchID: actor.BranchID, Conn: conn}

		ws.Register <- client
		defer func() {
			ws.Unregister <- client
			conn.Close()
		}()

		// The feed is push-only; the read loop just detects disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
