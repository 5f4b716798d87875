package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
)

// renderError converts any error into the uniform envelope, classifying
// unknown errors through the apperr taxonomy first.
func renderError(c *fiber.Ctx, err error) error {
	appErr := apperr.From(err)
	return c.Status(appErr.HTTPStatus()).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"type":    string(appErr.Kind),
			"message": appErr.Message,
		},
	})
}

func renderSuccess(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// formatTimePtr renders a nullable timestamp as RFC3339 or nil.
func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
