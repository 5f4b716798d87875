package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saasbase-io/saasbase/app/repository"
	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
	"github.com/saasbase-io/saasbase/internal/pkg/billing"
	"github.com/saasbase-io/saasbase/internal/pkg/metrics/counter"
	"github.com/saasbase-io/saasbase/internal/pkg/usercontext"
)

// BillingController exposes the webhook, checkout, plan catalog and
// stats endpoints over the billing core.
type BillingController struct {
	dispatcher *billing.Dispatcher
	checkout   *billing.CheckoutService
	plans      repository.PlanRepository
}

func NewBillingController(dispatcher *billing.Dispatcher, checkout *billing.CheckoutService, plans repository.PlanRepository) *BillingController {
	return &BillingController{
		dispatcher: dispatcher,
		checkout:   checkout,
		plans:      plans,
	}
}

// HandleStripeWebhook receives provider event deliveries. Only a
// failed signature check produces a non-200; every processing outcome
// is acknowledged so the provider stops redelivering.
func (bc *BillingController) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.BodyRaw()...)
	sigHeader := c.Get("Stripe-Signature")

	status, evt, err := bc.dispatcher.Dispatch(c.UserContext(), payload, sigHeader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid signature",
		})
	}

	counter.TrackWebhookEvent(string(evt.Kind), string(status))

	return c.JSON(fiber.Map{
		"received": true,
		"status":   string(status),
	})
}

type checkoutRequest struct {
	PriceID             string            `json:"priceId"`
	SuccessURL          string            `json:"successUrl"`
	CancelURL           string            `json:"cancelUrl"`
	Metadata            map[string]string `json:"metadata"`
	TrialDays           *int64            `json:"trialDays"`
	AllowPromotionCodes *bool             `json:"allowPromotionCodes"`
}

// HandleCreateSubscriptionCheckout starts a subscription checkout for
// the logged-in user and returns the provider-hosted redirect URL.
func (bc *BillingController) HandleCreateSubscriptionCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		req = checkoutRequest{}
	}

	session, err := bc.checkout.CreateSubscriptionCheckout(c.UserContext(), billing.CheckoutInput{
		UserID:              userCtx.UserID,
		Email:               userCtx.Email,
		Name:                userCtx.Name,
		PriceID:             req.PriceID,
		SuccessURL:          req.SuccessURL,
		CancelURL:           req.CancelURL,
		Metadata:            req.Metadata,
		TrialDays:           req.TrialDays,
		AllowPromotionCodes: req.AllowPromotionCodes,
	})
	if err != nil {
		return renderError(c, err)
	}

	counter.TrackCheckoutSession()

	return renderSuccess(c, fiber.Map{
		"sessionId": session.SessionID,
		"url":       session.URL,
	})
}

// HandleListPlans returns the active plan catalog for the pricing page.
func (bc *BillingController) HandleListPlans(c *fiber.Ctx) error {
	plans, err := bc.plans.ListActive()
	if err != nil {
		return renderError(c, apperr.Database("plan listing failed", err))
	}

	items := make([]fiber.Map, 0, len(plans))
	for _, p := range plans {
		items = append(items, fiber.Map{
			"stripePriceId": p.StripePriceID,
			"name":          p.Name,
			"interval":      p.Interval,
			"trialDays":     p.TrialDays,
		})
	}

	return renderSuccess(c, fiber.Map{"items": items})
}

// HandleWebhookStats reads the per-kind webhook counters back for
// admins. Counters live in Redis; a cold cache reads as zero.
func (bc *BillingController) HandleWebhookStats(c *fiber.Ctx) error {
	outcomes := []string{
		counter.OutcomeProcessed,
		counter.OutcomeAlreadyProcessed,
		counter.OutcomeError,
	}

	stats := fiber.Map{}
	for _, kind := range billing.KnownKinds() {
		byOutcome := fiber.Map{}
		for _, outcome := range outcomes {
			byOutcome[outcome] = counter.GetWebhookCount(string(kind), outcome)
		}
		stats[string(kind)] = byOutcome
	}

	return renderSuccess(c, fiber.Map{"webhooks": stats})
}
