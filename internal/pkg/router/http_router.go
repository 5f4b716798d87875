package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saasbase-io/saasbase/app/controllers"
	"github.com/saasbase-io/saasbase/internal/pkg/middleware"
	"github.com/saasbase-io/saasbase/internal/pkg/oauth"
	"github.com/saasbase-io/saasbase/internal/pkg/session"
)

// HttpRouter installs the session layer and the browser-facing OAuth
// routes.
type HttpRouter struct {
	oauthController *controllers.OAuthController
}

func NewHttpRouter(oauthController *controllers.OAuthController) *HttpRouter {
	return &HttpRouter{oauthController: oauthController}
}

func (h *HttpRouter) InstallRouter(app *fiber.App) {
	session.SetupSession()
	oauth.Setup()

	// Resolve the session into a request-scoped user context before
	// anything else runs.
	app.Use(middleware.UserContext)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/auth/:provider", h.oauthController.HandleBegin)
	app.Get("/auth/:provider/callback", h.oauthController.HandleCallback)
	app.Get("/auth/logout", h.oauthController.HandleOAuthLogout)
}
