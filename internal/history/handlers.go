package history

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes exposes read access to retained alerts and incidents.
func RegisterRoutes(r fiber.Router, store *Store) {
	r.Get("/alerts", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit"))
		alerts, err := store.RecentAlerts(c.Context(), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(alerts)
	})

	r.Get("/incidents", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit"))
		incidents, err := store.RecentIncidents(c.Context(), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(incidents)
	})
}
