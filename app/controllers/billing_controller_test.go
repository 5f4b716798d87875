package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/models"
	"github.com/saasbase-io/saasbase/internal/pkg/billing"
	"github.com/saasbase-io/saasbase/internal/pkg/usercontext"
)

type stubVerifier struct {
	event billing.Event
}

func (v *stubVerifier) Verify(payload []byte, sigHeader string) (billing.Event, error) {
	if sigHeader != "valid" {
		return billing.Event{}, errors.New("signature verification failed")
	}
	return v.event, nil
}

type stubLedger struct {
	marked map[string]bool
}

func (l *stubLedger) IsProcessed(id string) (bool, error) { return l.marked[id], nil }

func (l *stubLedger) MarkProcessed(id, eventType string) (*models.WebhookEvent, error) {
	if l.marked[id] {
		return nil, gorm.ErrDuplicatedKey
	}
	l.marked[id] = true
	return &models.WebhookEvent{StripeEventID: id, EventType: eventType}, nil
}

func (l *stubLedger) DeleteOlderThan(cutoff time.Time) (int64, error) { return 0, nil }

type stubProvider struct {
	sessions  int
	customers []billing.CustomerParams
}

func (p *stubProvider) CreateCustomer(ctx context.Context, params billing.CustomerParams) (string, error) {
	p.customers = append(p.customers, params)
	return "cus_stub", nil
}

func (p *stubProvider) CreateCheckoutSession(ctx context.Context, params billing.SessionParams) (*billing.CheckoutSession, error) {
	p.sessions++
	return &billing.CheckoutSession{SessionID: "cs_stub", URL: "https://checkout.stripe.com/c/pay/cs_stub"}, nil
}

type stubCustomerStore struct {
	customers map[uint]*models.Customer
}

func (s *stubCustomerStore) GetByUserID(userID uint) (*models.Customer, error) {
	if c, ok := s.customers[userID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomerStore) GetByStripeCustomerID(id string) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomerStore) Create(c *models.Customer) error {
	c.ID = uint(len(s.customers) + 1)
	s.customers[c.UserID] = c
	return nil
}

func (s *stubCustomerStore) Upsert(c *models.Customer) error { return s.Create(c) }

type stubSubscriptionStore struct{}

func (s *stubSubscriptionStore) GetByStripeSubscriptionID(string) (*models.Subscription, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubscriptionStore) GetActiveByCustomerID(uint) (*models.Subscription, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubscriptionStore) CountByCustomerID(uint) (int64, error) { return 0, nil }

func (s *stubSubscriptionStore) Upsert(*models.Subscription) error { return nil }

type stubPlanStore struct{}

func (s *stubPlanStore) GetActiveByStripePriceID(string) (*models.Plan, error) {
	return nil, gorm.ErrRecordNotFound
}

func testStores() billing.Stores {
	return billing.Stores{
		Customers:     &stubCustomerStore{customers: map[uint]*models.Customer{}},
		Subscriptions: &stubSubscriptionStore{},
		Events:        &stubLedger{marked: map[string]bool{}},
		Plans:         &stubPlanStore{},
	}
}

func newWebhookApp(evt billing.Event) *fiber.App {
	stores := testStores()
	handlers := billing.NewHandlers(stores, nil)
	dispatcher := billing.NewDispatcher(&stubVerifier{event: evt}, stores.Events, handlers.Routes())
	bc := NewBillingController(dispatcher, nil, nil)

	app := fiber.New()
	app.Post("/api/v1/billing/webhook", bc.HandleStripeWebhook)
	return app
}

func newCheckoutApp(loggedIn bool) (*fiber.App, *stubProvider) {
	stores := testStores()
	provider := &stubProvider{}
	checkout := billing.NewCheckoutService(provider, stores, billing.CheckoutDefaults{
		SuccessURL: "https://app.example.com/success",
		CancelURL:  "https://app.example.com/cancel",
	})
	bc := NewBillingController(nil, checkout, nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if loggedIn {
			usercontext.Set(c, usercontext.UserContext{
				UserID:     42,
				Email:      "jo@example.com",
				Name:       "Jo Smith",
				IsLoggedIn: true,
			})
		}
		return c.Next()
	})
	app.Post("/api/v1/billing/checkout/subscription", bc.HandleCreateSubscriptionCheckout)
	return app, provider
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	app := newWebhookApp(billing.Event{ID: "evt_1", Kind: "charge.refunded", Raw: []byte(`{}`)})

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/billing/webhook", bytes.NewBufferString(`{}`))
	req.Header.Set("Stripe-Signature", "garbage")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebhookAcknowledgesProcessedAndDuplicate(t *testing.T) {
	app := newWebhookApp(billing.Event{ID: "evt_2", Kind: "charge.refunded", Raw: []byte(`{}`)})

	send := func() map[string]any {
		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/billing/webhook", bytes.NewBufferString(`{}`))
		req.Header.Set("Stripe-Signature", "valid")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		return decodeBody(t, resp.Body)
	}

	first := send()
	assert.Equal(t, true, first["received"])
	assert.Equal(t, "processed", first["status"])

	second := send()
	assert.Equal(t, "already_processed", second["status"])
}

func TestCheckoutUnauthenticatedGets401Envelope(t *testing.T) {
	app, provider := newCheckoutApp(false)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/billing/checkout/subscription",
		bytes.NewBufferString(`{"priceId":"price_monthly"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, false, body["success"])
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "AUTHENTICATION_ERROR", errObj["type"])
	assert.Zero(t, provider.sessions)
}

func TestCheckoutMissingPriceIDGets400(t *testing.T) {
	app, _ := newCheckoutApp(true)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/billing/checkout/subscription",
		bytes.NewBufferString(`{}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["type"])
}

func TestCheckoutHappyPathReturnsSessionURL(t *testing.T) {
	app, provider := newCheckoutApp(true)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/billing/checkout/subscription",
		bytes.NewBufferString(`{"priceId":"price_monthly"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "cs_stub", data["sessionId"])
	assert.Contains(t, data["url"], "checkout.stripe.com")
	assert.Equal(t, 1, provider.sessions)
}

func TestCheckoutPassesDisplayNameToProvider(t *testing.T) {
	app, provider := newCheckoutApp(true)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/billing/checkout/subscription",
		bytes.NewBufferString(`{"priceId":"price_monthly"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, provider.customers, 1)
	assert.Equal(t, "Jo Smith", provider.customers[0].Name)
	assert.Equal(t, "jo@example.com", provider.customers[0].Email)
}

type stubPlanRepo struct {
	plans []models.Plan
}

func (s *stubPlanRepo) GetActiveByStripePriceID(string) (*models.Plan, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPlanRepo) ListActive() ([]models.Plan, error) { return s.plans, nil }

func TestListPlansReturnsCatalog(t *testing.T) {
	bc := NewBillingController(nil, nil, &stubPlanRepo{plans: []models.Plan{
		{StripePriceID: "price_monthly", Name: "Pro", Interval: models.PlanIntervalMonth, TrialDays: 14},
		{StripePriceID: "price_yearly", Name: "Pro Annual", Interval: models.PlanIntervalYear},
	}})

	app := fiber.New()
	app.Get("/api/v1/billing/plans", bc.HandleListPlans)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/billing/plans", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	items := body["data"].(map[string]any)["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "price_monthly", first["stripePriceId"])
	assert.Equal(t, "Pro", first["name"])
	assert.Equal(t, float64(14), first["trialDays"])
}

func TestWebhookStatsCoversAllKinds(t *testing.T) {
	bc := NewBillingController(nil, nil, nil)

	app := fiber.New()
	app.Get("/api/v1/billing/stats", bc.HandleWebhookStats)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/billing/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	webhooks := body["data"].(map[string]any)["webhooks"].(map[string]any)
	require.Len(t, webhooks, len(billing.KnownKinds()))

	// Redis is not configured in tests, so every counter reads zero.
	paid := webhooks["invoice.paid"].(map[string]any)
	assert.Equal(t, float64(0), paid["processed"])
	assert.Equal(t, float64(0), paid["already_processed"])
	assert.Equal(t, float64(0), paid["error"])
}
