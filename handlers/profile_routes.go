// handlers/profile_routes.go
package handlers

import (
	"log"

	"quiz-learning-system/middleware"
	"quiz-learning-system/models"
	"quiz-learning-system/services"
	"quiz-learning-system/utils"
	"quiz-learning-system/workers"

	"github.com/gofiber/fiber/v2"
)

// SetupProfileRoutes wires the aggregated profile view, the watch lifecycle
// backing the periodic refresh, and the avatar upload.
func SetupProfileRoutes(app *fiber.App, profiles *services.ProfileService, refresher *workers.ProfileRefresher, identity services.IdentityService) {
	secured := app.Group("/", middleware.SessionMiddleware(identity))

	secured.Get("/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if userID == "" {
			// Valid terminal state for anonymous access, not a failure.
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}

		// Serve the refresher's snapshot when the view is being watched;
		// fall back to an on-demand aggregation otherwise.
		if view, ok := refresher.Snapshot(userID); ok {
			if view == nil {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.JSON(view)
		}

		view, err := profiles.Aggregate(c.UserContext(), userID)
		if err != nil {
			log.Printf("❌ [PROFILE] aggregation failed for %s: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load profile",
			})
		}
		if view == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.JSON(view)
	})

	// The web client posts /profile/watch on view mount and deletes it on
	// unmount; between the two the refresher re-aggregates every cycle.
	secured.Post("/profile/watch", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		if err := refresher.Attach(userID); err != nil {
			log.Printf("❌ [PROFILE] failed to attach refresh for %s: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to start profile refresh",
			})
		}
		return c.JSON(fiber.Map{"watching": true})
	})

	secured.Delete("/profile/watch", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		refresher.Detach(userID)
		return c.JSON(fiber.Map{"watching": false})
	})

	secured.Post("/profile/photo", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}

		fileHeader, err := c.FormFile("photo")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo file is required"})
		}

		url, err := utils.UploadAvatar(c.UserContext(), fileHeader, userID)
		if err != nil {
			log.Printf("❌ [PROFILE] avatar upload failed for %s: %v", userID, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "avatar upload failed",
				"cause": err.Error(),
			})
		}

		if err := profiles.DB.WithContext(c.UserContext()).Model(&models.User{}).
			Where("id = ?", userID).
			Update("profile_photo", url).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save profile photo",
			})
		}
		return c.JSON(fiber.Map{"profile_photo": url})
	})
}
