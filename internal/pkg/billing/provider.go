package billing

import "context"

// CustomerParams is the input for provider-side customer creation.
type CustomerParams struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// SessionParams is the input for provider-side checkout session creation.
type SessionParams struct {
	CustomerID          string
	PriceID             string
	SuccessURL          string
	CancelURL           string
	Metadata            map[string]string
	TrialDays           int64
	AllowPromotionCodes bool
}

// CheckoutSession is a created provider-hosted checkout flow.
type CheckoutSession struct {
	SessionID string
	URL       string
}

// Provider is the payment provider client surface the orchestrator
// uses. Production wires the Stripe implementation; tests use fakes.
type Provider interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error)
}

// SignatureVerifier authenticates a raw webhook payload against its
// signature header before any of its content is parsed or trusted.
type SignatureVerifier interface {
	Verify(payload []byte, sigHeader string) (Event, error)
}
