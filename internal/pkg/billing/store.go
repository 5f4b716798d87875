package billing

import (
	"time"

	"github.com/saasbase-io/saasbase/app/models"
)

// The store interfaces below are the slices of the persistence layer
// the billing core touches. The gorm repositories in app/repository
// satisfy them directly; tests plug in fakes.

// CustomerStore persists billing customers.
type CustomerStore interface {
	GetByUserID(userID uint) (*models.Customer, error)
	GetByStripeCustomerID(stripeCustomerID string) (*models.Customer, error)
	Create(customer *models.Customer) error
	Upsert(customer *models.Customer) error
}

// SubscriptionStore persists subscriptions.
type SubscriptionStore interface {
	GetByStripeSubscriptionID(stripeSubscriptionID string) (*models.Subscription, error)
	GetActiveByCustomerID(customerID uint) (*models.Subscription, error)
	CountByCustomerID(customerID uint) (int64, error)
	Upsert(sub *models.Subscription) error
}

// InvoiceStore persists invoices.
type InvoiceStore interface {
	Upsert(invoice *models.Invoice) error
}

// PaymentStore persists one-time payments.
type PaymentStore interface {
	GetByPaymentIntentID(stripePaymentIntentID string) (*models.Payment, error)
	UpsertByPaymentIntentID(payment *models.Payment) error
	UpsertByCheckoutSessionID(payment *models.Payment) error
}

// EventLedger is the idempotency ledger. MarkProcessed must surface a
// duplicate-key error when the event id already exists; that unique
// constraint, not IsProcessed, is what makes concurrent redelivery safe.
type EventLedger interface {
	IsProcessed(stripeEventID string) (bool, error)
	MarkProcessed(stripeEventID, eventType string) (*models.WebhookEvent, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// PlanStore resolves price ids against the local plan catalog.
type PlanStore interface {
	GetActiveByStripePriceID(stripePriceID string) (*models.Plan, error)
}

// Stores bundles the persistence handles the billing core needs. It is
// constructed once at startup and passed down explicitly.
type Stores struct {
	Customers     CustomerStore
	Subscriptions SubscriptionStore
	Invoices      InvoiceStore
	Payments      PaymentStore
	Events        EventLedger
	Plans         PlanStore
}
