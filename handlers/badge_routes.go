package handlers

import (
	"prophecy-badge-system/middleware"
	"prophecy-badge-system/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupBadgeRoutes wires the read-only badge surface. The gateway forwards
// the user identity in headers; UserContextMiddleware enforces it.
func SetupBadgeRoutes(app *fiber.App, badgeService *services.BadgeService, statsService *services.StatsService, log *zap.Logger) {
	secured := app.Group("/", middleware.UserContextMiddleware(log))

	secured.Get("/user/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		badges, err := badgeService.GetUserBadges(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load badges",
				"cause": err.Error(),
			})
		}

		response := make([]fiber.Map, 0, len(badges))
		for _, ub := range badges {
			response = append(response, fiber.Map{
				"id":          ub.ID,
				"key":         ub.Badge.Key,
				"name":        ub.Badge.Name,
				"description": ub.Badge.Description,
				"icon_url":    ub.Badge.IconURL,
				"category":    ub.Badge.Category,
				"rarity":      ub.Badge.Rarity,
				"earned_at":   ub.EarnedAt,
			})
		}
		return c.JSON(response)
	})

	secured.Get("/user/badges/summary", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		summary, err := badgeService.GetUserBadgeSummary(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to build badge summary",
				"cause": err.Error(),
			})
		}
		return c.JSON(summary)
	})

	secured.Get("/user/badges/stream", badgeService.StreamUserBadgesSSE)

	secured.Get("/user/stats", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		stats, err := statsService.ComputeUserStats(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to compute stats",
				"cause": err.Error(),
			})
		}
		return c.JSON(stats)
	})
}
