package application

import (
	"context"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/saasbase-io/saasbase/app/controllers"
	"github.com/saasbase-io/saasbase/app/repository"
	"github.com/saasbase-io/saasbase/internal/pkg/billing"
	"github.com/saasbase-io/saasbase/internal/pkg/cache"
	"github.com/saasbase-io/saasbase/internal/pkg/database"
	"github.com/saasbase-io/saasbase/internal/pkg/env"
	"github.com/saasbase-io/saasbase/internal/pkg/objectstore"
	"github.com/saasbase-io/saasbase/internal/pkg/mail"
	"github.com/saasbase-io/saasbase/internal/pkg/router"
)

// mailNotifier forwards billing notifications to the SMTP mailer.
type mailNotifier struct{}

func (mailNotifier) PaymentFailed(email string, amount int64, currency string) {
	mail.SendPaymentFailed(email, amount, currency)
}

// New constructs the fully wired fiber application: database, cache,
// billing core, controllers and routes. Everything is injected
// explicitly; no package holds ambient service state.
func New() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repos := repository.NewFactory(database.GetDB()).GetRepositories()

	provider := billing.NewStripeProvider(
		env.GetEnv("STRIPE_SECRET_KEY", ""),
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
	)

	stores := billing.Stores{
		Customers:     repos.Customer,
		Subscriptions: repos.Subscription,
		Invoices:      repos.Invoice,
		Payments:      repos.Payment,
		Events:        repos.WebhookEvent,
		Plans:         repos.Plan,
	}

	handlers := billing.NewHandlers(stores, mailNotifier{})
	dispatcher := billing.NewDispatcher(provider, repos.WebhookEvent, handlers.Routes())

	publicDomain := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:"+env.GetEnv("APP_PORT", "8080"))
	checkout := billing.NewCheckoutService(provider, stores, billing.CheckoutDefaults{
		SuccessURL: env.GetEnv("CHECKOUT_SUCCESS_URL", publicDomain+"/billing/success"),
		CancelURL:  env.GetEnv("CHECKOUT_CANCEL_URL", publicDomain+"/billing/cancel"),
	})

	var store objectstore.Storage
	if cfg, err := objectstore.LoadConfig(); err == nil && cfg.IsEnabled() {
		client, clientErr := objectstore.NewClient(cfg)
		if clientErr != nil {
			log.Warnf("[App] object store disabled: %v", clientErr)
		} else {
			store = client
		}
	} else if err != nil {
		log.Warnf("[App] object store config invalid: %v", err)
	}

	authController := controllers.NewAuthController(repos.User)
	oauthController := controllers.NewOAuthController(repos.User)
	userController := controllers.NewUserController(repos.User)
	billingController := controllers.NewBillingController(dispatcher, checkout, repos.Plan)
	fileController := controllers.NewFileController(repos.File, store)
	gdprController := controllers.NewGDPRController(repos, store)

	app := fiber.New(fiber.Config{
		AppName: "saasbase",
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	if path := openAPIPath(); path != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: path,
			Path:     "v1",
		}))
	}

	router.InstallRouter(app,
		router.NewHttpRouter(oauthController),
		router.NewApiRouter(authController, userController, billingController, fileController, gdprController),
	)

	// Idempotency-ledger retention sweep runs for the process lifetime.
	go billing.RunLedgerJanitor(context.Background(), repos.WebhookEvent)

	return app
}

// openAPIPath locates the static OpenAPI document from either the
// project root or a cmd/ working directory.
func openAPIPath() string {
	for _, base := range []string{"./", "../../"} {
		path := base + "public/docs/v1/openapi.yml"
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	log.Warn("[App] OpenAPI document not found, /docs/api disabled")
	return ""
}
