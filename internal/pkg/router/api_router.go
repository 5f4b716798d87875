package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saasbase-io/saasbase/app/controllers"
	"github.com/saasbase-io/saasbase/internal/pkg/middleware"
	"github.com/saasbase-io/saasbase/internal/pkg/ratelimit"
)

// ApiRouter installs the JSON API under /api/v1.
type ApiRouter struct {
	auth    *controllers.AuthController
	users   *controllers.UserController
	billing *controllers.BillingController
	files   *controllers.FileController
	gdpr    *controllers.GDPRController
}

func NewApiRouter(
	auth *controllers.AuthController,
	users *controllers.UserController,
	billing *controllers.BillingController,
	files *controllers.FileController,
	gdpr *controllers.GDPRController,
) *ApiRouter {
	return &ApiRouter{
		auth:    auth,
		users:   users,
		billing: billing,
		files:   files,
		gdpr:    gdpr,
	}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	v1 := app.Group("/api/v1")

	registerLimit := middleware.RateLimit(ratelimit.Config{
		Limit:  5,
		Window: time.Minute,
		Prefix: "register",
	})
	checkoutLimit := middleware.RateLimit(ratelimit.Config{
		Limit:  10,
		Window: time.Minute,
		Prefix: "checkout",
	})

	auth := v1.Group("/auth")
	auth.Post("/register", registerLimit, h.auth.HandleRegister)
	auth.Post("/login", h.auth.HandleLogin)
	auth.Post("/logout", middleware.RequireAuth, h.auth.HandleLogout)

	users := v1.Group("/users")
	users.Get("/", middleware.RequireAdmin, h.users.HandleListUsers)
	users.Get("/me", middleware.RequireAuth, h.users.HandleGetMe)
	users.Patch("/me", middleware.RequireAuth, h.users.HandleUpdateMe)

	billing := v1.Group("/billing")
	// Webhook authenticates itself through the signature check.
	billing.Post("/webhook", h.billing.HandleStripeWebhook)
	billing.Get("/plans", h.billing.HandleListPlans)
	billing.Get("/stats", middleware.RequireAdmin, h.billing.HandleWebhookStats)
	billing.Post("/checkout/subscription", middleware.RequireAuth, checkoutLimit, h.billing.HandleCreateSubscriptionCheckout)

	files := v1.Group("/files", middleware.RequireAuth)
	files.Post("/", h.files.HandleUpload)
	files.Get("/", h.files.HandleListFiles)
	files.Get("/:id", h.files.HandleDownload)
	files.Delete("/:id", h.files.HandleDeleteFile)

	gdpr := v1.Group("/gdpr", middleware.RequireAuth)
	gdpr.Get("/export", h.gdpr.HandleExport)
	gdpr.Delete("/delete", h.gdpr.HandleDelete)
}
