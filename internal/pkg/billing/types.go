package billing

import (
	"encoding/json"
	"time"

	"github.com/saasbase-io/saasbase/app/models"
)

// EventKind identifies a supported provider event type. The dispatcher
// routes over a closed set; anything else is acknowledged and dropped.
type EventKind string

const (
	EventCheckoutSessionCompleted EventKind = "checkout.session.completed"
	EventCustomerCreated          EventKind = "customer.created"
	EventSubscriptionCreated      EventKind = "customer.subscription.created"
	EventSubscriptionUpdated      EventKind = "customer.subscription.updated"
	EventSubscriptionDeleted      EventKind = "customer.subscription.deleted"
	EventInvoicePaid              EventKind = "invoice.paid"
	EventInvoicePaymentFailed     EventKind = "invoice.payment_failed"
	EventPaymentIntentSucceeded   EventKind = "payment_intent.succeeded"
	EventPaymentIntentFailed      EventKind = "payment_intent.payment_failed"
)

// KnownKinds lists every event kind the dispatcher routes.
func KnownKinds() []EventKind {
	return []EventKind{
		EventCheckoutSessionCompleted,
		EventCustomerCreated,
		EventSubscriptionCreated,
		EventSubscriptionUpdated,
		EventSubscriptionDeleted,
		EventInvoicePaid,
		EventInvoicePaymentFailed,
		EventPaymentIntentSucceeded,
		EventPaymentIntentFailed,
	}
}

// Event is a verified provider event. Raw holds the event's object
// payload; handlers decode only the fields they reconcile so provider
// API version drift cannot break them.
type Event struct {
	ID   string
	Kind EventKind
	Raw  json.RawMessage
}

// CheckoutSessionPayload mirrors the fields of a checkout.session
// object that reconciliation needs.
type CheckoutSessionPayload struct {
	ID            string          `json:"id"`
	Mode          string          `json:"mode"`
	Customer      string          `json:"customer"`
	Subscription  string          `json:"subscription"`
	PaymentIntent string          `json:"payment_intent"`
	PaymentStatus string          `json:"payment_status"`
	AmountTotal   int64           `json:"amount_total"`
	Currency      string          `json:"currency"`
	Metadata      models.Metadata `json:"metadata"`
}

// CustomerPayload mirrors the relevant fields of a customer object.
type CustomerPayload struct {
	ID       string          `json:"id"`
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Metadata models.Metadata `json:"metadata"`
}

// SubscriptionPayload mirrors a subscription object. Newer provider
// API versions move the billing period onto the items, so both
// locations are read and the top level wins when present.
type SubscriptionPayload struct {
	ID                 string          `json:"id"`
	Customer           string          `json:"customer"`
	Status             string          `json:"status"`
	CancelAtPeriodEnd  bool            `json:"cancel_at_period_end"`
	CanceledAt         int64           `json:"canceled_at"`
	EndedAt            int64           `json:"ended_at"`
	CurrentPeriodStart int64           `json:"current_period_start"`
	CurrentPeriodEnd   int64           `json:"current_period_end"`
	TrialStart         int64           `json:"trial_start"`
	TrialEnd           int64           `json:"trial_end"`
	Metadata           models.Metadata `json:"metadata"`
	Items              struct {
		Data []struct {
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
			Price              struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// PriceID returns the subscription's first price id.
func (p *SubscriptionPayload) PriceID() string {
	if len(p.Items.Data) > 0 {
		return p.Items.Data[0].Price.ID
	}
	return ""
}

// Period returns the current billing period, falling back to the
// first item when the top-level fields are absent.
func (p *SubscriptionPayload) Period() (start, end *time.Time) {
	s, e := p.CurrentPeriodStart, p.CurrentPeriodEnd
	if s == 0 && e == 0 && len(p.Items.Data) > 0 {
		s, e = p.Items.Data[0].CurrentPeriodStart, p.Items.Data[0].CurrentPeriodEnd
	}
	return epochPtr(s), epochPtr(e)
}

// InvoicePayload mirrors the relevant fields of an invoice object.
type InvoicePayload struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Subscription     string `json:"subscription"`
	AmountDue        int64  `json:"amount_due"`
	AmountPaid       int64  `json:"amount_paid"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	HostedInvoiceURL string `json:"hosted_invoice_url"`
	InvoicePDF       string `json:"invoice_pdf"`
	PeriodStart      int64  `json:"period_start"`
	PeriodEnd        int64  `json:"period_end"`
}

// PaymentIntentPayload mirrors the relevant fields of a payment_intent
// object.
type PaymentIntentPayload struct {
	ID          string          `json:"id"`
	Customer    string          `json:"customer"`
	Amount      int64           `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
	Metadata    models.Metadata `json:"metadata"`
}

// epochPtr converts provider epoch seconds to a nullable timestamp.
func epochPtr(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
