package repository

import (
	"time"

	"github.com/saasbase-io/saasbase/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// CustomerRepository defines lookups and writes for billing customers
type CustomerRepository interface {
	GetByID(id uint) (*models.Customer, error)
	GetByUserID(userID uint) (*models.Customer, error)
	GetByStripeCustomerID(stripeCustomerID string) (*models.Customer, error)
	Create(customer *models.Customer) error
	Upsert(customer *models.Customer) error
	Update(customer *models.Customer) error
	DeleteByUserID(userID uint) error
}

// SubscriptionRepository defines lookups and writes for subscriptions
type SubscriptionRepository interface {
	GetByStripeSubscriptionID(stripeSubscriptionID string) (*models.Subscription, error)
	ListByCustomerID(customerID uint) ([]models.Subscription, error)
	GetActiveByCustomerID(customerID uint) (*models.Subscription, error)
	CountByCustomerID(customerID uint) (int64, error)
	Upsert(sub *models.Subscription) error
}

// InvoiceRepository defines lookups and writes for invoices
type InvoiceRepository interface {
	GetByStripeInvoiceID(stripeInvoiceID string) (*models.Invoice, error)
	ListByCustomerID(customerID uint, offset, limit int) ([]models.Invoice, error)
	Upsert(invoice *models.Invoice) error
}

// PaymentRepository defines lookups and writes for one-time payments
type PaymentRepository interface {
	GetByPaymentIntentID(stripePaymentIntentID string) (*models.Payment, error)
	GetByCheckoutSessionID(stripeCheckoutSessionID string) (*models.Payment, error)
	ListByCustomerID(customerID uint) ([]models.Payment, error)
	UpsertByPaymentIntentID(payment *models.Payment) error
	UpsertByCheckoutSessionID(payment *models.Payment) error
}

// FileRepository defines lookups and writes for user file uploads
type FileRepository interface {
	Create(file *models.File) error
	GetByID(id uint) (*models.File, error)
	ListByUserID(userID uint) ([]models.File, error)
	Delete(id uint) error
}

// WebhookEventRepository is the idempotency ledger for provider events.
// MarkProcessed returns gorm.ErrDuplicatedKey when the event id already
// exists; the unique constraint is the correctness guarantee and IsProcessed
// only the fast path.
type WebhookEventRepository interface {
	IsProcessed(stripeEventID string) (bool, error)
	MarkProcessed(stripeEventID, eventType string) (*models.WebhookEvent, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// PlanRepository resolves Stripe price ids against the local plan catalog
type PlanRepository interface {
	GetActiveByStripePriceID(stripePriceID string) (*models.Plan, error)
	ListActive() ([]models.Plan, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Customer     CustomerRepository
	Subscription SubscriptionRepository
	Invoice      InvoiceRepository
	Payment      PaymentRepository
	File         FileRepository
	WebhookEvent WebhookEventRepository
	Plan         PlanRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Customer:     NewCustomerRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Invoice:      NewInvoiceRepository(db),
		Payment:      NewPaymentRepository(db),
		File:         NewFileRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
		Plan:         NewPlanRepository(db),
	}
}
