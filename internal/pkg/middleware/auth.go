package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
	"github.com/saasbase-io/saasbase/internal/pkg/usercontext"
)

// RequireAuth ensures a logged-in session for API routes, returning
// the JSON error envelope instead of a redirect.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return renderError(c, apperr.Authentication("login required"))
	}
	return c.Next()
}

// RequireAdmin ensures a logged-in admin.
func RequireAdmin(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return renderError(c, apperr.Authentication("login required"))
	}
	if !usercontext.IsAdmin(c) {
		return renderError(c, apperr.Authentication("admin access required"))
	}
	return c.Next()
}

func renderError(c *fiber.Ctx, err *apperr.Error) error {
	return c.Status(err.HTTPStatus()).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"type":    string(err.Kind),
			"message": err.Message,
		},
	})
}
