// middleware/session.go
package middleware

import (
	"log"
	"strings"

	"quiz-learning-system/services"

	"github.com/gofiber/fiber/v2"
)

// AccessTokenCookie is where the sign-in handler parks the session token
// for browser clients. API clients send it as a bearer header instead.
const AccessTokenCookie = "access_token"

// AccessToken extracts the session token from the Authorization header,
// falling back to the session cookie.
func AccessToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		// Parse "Bearer <token>"; accept a raw token too.
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Cookies(AccessTokenCookie)
}

// SessionMiddleware resolves the current identity behind the request's
// session token and attaches it to the context. A request with no (or a
// stale) token still proceeds with an empty user_id — handlers decide what
// unauthenticated means for their route.
func SessionMiddleware(identity services.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := ""
		token := AccessToken(c)
		if token != "" {
			id, err := identity.GetUser(c.UserContext(), token)
			if err != nil {
				log.Printf("⚠️ [SESSION] identity lookup failed on %s: %v", c.Path(), err)
			} else {
				userID = id
			}
		}

		c.Locals("user_id", userID)
		c.Locals("access_token", token)
		return c.Next()
	}
}
