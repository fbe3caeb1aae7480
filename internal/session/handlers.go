package session

import "github.com/gofiber/fiber/v2"

// RegisterRoutes exposes the session control surface. The guard middleware
// protects the mutating transitions; reads stay open.
func RegisterRoutes(r fiber.Router, o *Orchestrator, guard fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		info := o.Info()
		return c.JSON(fiber.Map{
			"session":      o.Snapshot(),
			"current_lap":  info.CurrentLap,
			"session_time": info.ElapsedTime,
			"total_cars":   info.VehicleCount,
			"is_active":    info.IsActive,
		})
	})

	r.Post("/start", guard, func(c *fiber.Ctx) error {
		if o.Start() {
			return c.JSON(ActionResponse{Success: true, Message: "Session started"})
		}
		return c.JSON(ActionResponse{Success: false, Message: "Session already active"})
	})

	r.Post("/stop", guard, func(c *fiber.Ctx) error {
		if o.Stop() {
			return c.JSON(ActionResponse{Success: true, Message: "Session stopped"})
		}
		return c.JSON(ActionResponse{Success: false, Message: "No active session"})
	})

	r.Post("/reset", guard, func(c *fiber.Ctx) error {
		if o.Reset() {
			return c.JSON(ActionResponse{Success: true, Message: "Session reset"})
		}
		return c.JSON(ActionResponse{Success: false, Message: "Session not started"})
	})
}
