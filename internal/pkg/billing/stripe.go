package billing

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider and SignatureVerifier against the
// Stripe API. The client handle is constructed once and injected, no
// package-level key.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

// NewStripeProvider builds a provider from a secret API key and the
// webhook signing secret.
func NewStripeProvider(apiKey, webhookSecret string) *StripeProvider {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeProvider{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

// CreateCustomer creates a customer at Stripe and returns its id.
func (p *StripeProvider) CreateCustomer(ctx context.Context, params CustomerParams) (string, error) {
	cp := &stripe.CustomerParams{
		Email:    stripe.String(params.Email),
		Metadata: params.Metadata,
	}
	cp.Context = ctx
	if params.Name != "" {
		cp.Name = stripe.String(params.Name)
	}

	cust, err := p.api.Customers.New(cp)
	if err != nil {
		return "", fmt.Errorf("stripe customer create: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession creates a subscription-mode hosted checkout.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error) {
	sp := &stripe.CheckoutSessionParams{
		Customer: stripe.String(params.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:          stripe.String(params.SuccessURL),
		CancelURL:           stripe.String(params.CancelURL),
		AllowPromotionCodes: stripe.Bool(params.AllowPromotionCodes),
		Metadata:            params.Metadata,
	}
	sp.Context = ctx
	if params.TrialDays > 0 {
		sp.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(params.TrialDays),
		}
	}

	sess, err := p.api.CheckoutSessions.New(sp)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session create: %w", err)
	}
	return &CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// Verify authenticates a webhook delivery. Version mismatch between
// the SDK pin and the account's API version is tolerated since
// handlers decode payloads themselves.
func (p *StripeProvider) Verify(payload []byte, sigHeader string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return Event{
		ID:   event.ID,
		Kind: EventKind(event.Type),
		Raw:  event.Data.Raw,
	}, nil
}
