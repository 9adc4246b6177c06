// handlers/auth_routes.go
package handlers

import (
	"log"

	"quiz-learning-system/middleware"
	"quiz-learning-system/services"
	"quiz-learning-system/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes wires the four form flows: sign-up (the bootstrap
// sequence), sign-in, forgot/reset password and sign-out. Success and
// failure both travel back as encoded redirects the form pages render.
func SetupAuthRoutes(app *fiber.App, bootstrap *services.BootstrapService, identity services.IdentityService) {
	auth := app.Group("/auth")

	auth.Post("/sign-up", func(c *fiber.Ctx) error {
		email := c.FormValue("email")
		username := c.FormValue("username")
		password := c.FormValue("password")

		if _, err := bootstrap.SignUp(c.UserContext(), email, username, password); err != nil {
			log.Printf("❌ [AUTH] sign-up failed for %q: %v", email, err)
			return utils.EncodedRedirect(c, "error", "/sign-up", services.UserMessage(err))
		}

		// Implicit success: landing on /home is the confirmation.
		return c.Redirect("/home", fiber.StatusSeeOther)
	})

	auth.Post("/sign-in", func(c *fiber.Ctx) error {
		email := c.FormValue("email")
		password := c.FormValue("password")

		sess, err := identity.SignInWithPassword(c.UserContext(), email, password)
		if err != nil {
			return utils.EncodedRedirect(c, "error", "/sign-in", err.Error())
		}

		c.Cookie(&fiber.Cookie{
			Name:     middleware.AccessTokenCookie,
			Value:    sess.AccessToken,
			MaxAge:   sess.ExpiresIn,
			HTTPOnly: true,
			SameSite: "Lax",
		})
		return c.Redirect("/home", fiber.StatusSeeOther)
	})

	auth.Post("/forgot-password", func(c *fiber.Ctx) error {
		email := c.FormValue("email")
		callbackURL := c.FormValue("callbackUrl")

		if email == "" {
			return utils.EncodedRedirect(c, "error", "/forgot-password", "Email is required")
		}

		if err := identity.ResetPasswordForEmail(c.UserContext(), email); err != nil {
			log.Printf("❌ [AUTH] password recovery failed for %q: %v", email, err)
			return utils.EncodedRedirect(c, "error", "/forgot-password", "Could not reset password")
		}

		if callbackURL != "" {
			return c.Redirect(callbackURL, fiber.StatusSeeOther)
		}
		return utils.EncodedRedirect(c, "success", "/forgot-password",
			"Check your email for a link to reset your password.")
	})

	auth.Post("/reset-password", func(c *fiber.Ctx) error {
		password := c.FormValue("password")
		confirmPassword := c.FormValue("confirmPassword")

		if password == "" || confirmPassword == "" {
			return utils.EncodedRedirect(c, "error", "/protected/reset-password",
				"Password and confirm password are required")
		}
		// Mismatch never reaches the identity service.
		if password != confirmPassword {
			return utils.EncodedRedirect(c, "error", "/protected/reset-password",
				"Passwords do not match")
		}

		token := middleware.AccessToken(c)
		if err := identity.UpdatePassword(c.UserContext(), token, password); err != nil {
			log.Printf("❌ [AUTH] password update failed: %v", err)
			return utils.EncodedRedirect(c, "error", "/protected/reset-password",
				"Password update failed")
		}
		return utils.EncodedRedirect(c, "success", "/protected/reset-password", "Password updated")
	})

	auth.Post("/sign-out", func(c *fiber.Ctx) error {
		// Sign-out is unconditional — a dead session on the identity side
		// still means the browser session ends here.
		if token := middleware.AccessToken(c); token != "" {
			if err := identity.SignOut(c.UserContext(), token); err != nil {
				log.Printf("⚠️ [AUTH] identity sign-out failed: %v", err)
			}
		}
		c.ClearCookie(middleware.AccessTokenCookie)
		return c.Redirect("/sign-in", fiber.StatusSeeOther)
	})
}
