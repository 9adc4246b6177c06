package utils

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedRedirect(t *testing.T) {
	app := fiber.New()
	app.Post("/submit", func(c *fiber.Ctx) error {
		return EncodedRedirect(c, "error", "/sign-up", "Email and password are required")
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/submit", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/sign-up", loc.Path)
	assert.Equal(t, "Email and password are required", loc.Query().Get("error"))
}

func TestEncodedRedirectSuccessBanner(t *testing.T) {
	app := fiber.New()
	app.Post("/submit", func(c *fiber.Ctx) error {
		return EncodedRedirect(c, "success", "/forgot-password", "Check your email for a link to reset your password.")
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/submit", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/forgot-password", loc.Path)
	assert.Equal(t, "Check your email for a link to reset your password.", loc.Query().Get("success"))
}
