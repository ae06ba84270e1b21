package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"taskdesk/internal/api/v1/handlers"
	"taskdesk/internal/apierr"
	"taskdesk/internal/middleware"
	"taskdesk/internal/ws"
)

func RegisterRoutes(app *fiber.App, h *handlers.Handler) {
	// Auth
	app.Post("/login", h.Login)

	// Tasks
	taskRoutes := app.Group("/tasks", middleware.RequireAuth(h.Issuer))
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Put("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)

	// Task event stream. Browsers cannot set headers on websocket upgrades,
	// so the token rides in the query string.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		raw := c.Query("token")
		if raw == "" {
			return apierr.Respond(c, apierr.MissingToken())
		}
		userID, err := h.Issuer.Validate(raw)
		if err != nil {
			return apierr.Respond(c, apierr.InvalidToken(err))
		}
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		client := &ws.Client{
			OwnerID: conn.Locals("userID").(int),
			Conn:    conn,
		}
		h.Hub.Register <- client
		defer func() {
			h.Hub.Unregister <- client
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
