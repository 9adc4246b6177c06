// utils/redirect.go
package utils

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// EncodedRedirect sends the browser back to path with a (status, message)
// banner encoded in the query string — the receiving page renders
// "?error=..." or "?success=..." as a banner. This is the whole success/
// failure channel for the form flows; there are no JSON error bodies there.
func EncodedRedirect(c *fiber.Ctx, status, path, message string) error {
	return c.Redirect(
		fmt.Sprintf("%s?%s=%s", path, status, url.QueryEscape(message)),
		fiber.StatusSeeOther,
	)
}
