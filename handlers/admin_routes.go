package handlers

import (
	"prophecy-badge-system/middleware"
	"prophecy-badge-system/models"
	"prophecy-badge-system/services"
	"prophecy-badge-system/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupAdminRoutes wires catalog maintenance: re-seeding and icon uploads.
func SetupAdminRoutes(app *fiber.App, db *gorm.DB, catalog *services.CatalogIndex, log *zap.Logger) {
	admin := app.Group("/s/admin",
		middleware.UserContextMiddleware(log),
		middleware.RequireRole("admin"),
	)

	admin.Post("/badges/seed", func(c *fiber.Ctx) error {
		if err := services.SeedBadgeCatalog(db, log); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "seeding failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "badge catalog seeded"})
	})

	admin.Post("/badges/:key/icon", func(c *fiber.Ctx) error {
		key := c.Params("key")
		if _, ok := catalog.ByKey(key); !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "unknown badge key",
			})
		}

		fileHeader, err := c.FormFile("icon")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "icon file missing",
				"cause": err.Error(),
			})
		}

		iconURL, err := utils.UploadBadgeIcon(fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "icon upload failed",
				"cause": err.Error(),
			})
		}

		if err := db.Model(&models.BadgeDefinition{}).
			Where("key = ?", key).
			Update("icon_url", iconURL).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to store icon URL",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"key":      key,
			"icon_url": iconURL,
		})
	})
}
