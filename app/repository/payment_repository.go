package repository

import (
	"github.com/saasbase-io/saasbase/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// GetByPaymentIntentID retrieves a payment by its payment-intent id
func (r *paymentRepository) GetByPaymentIntentID(stripePaymentIntentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("stripe_payment_intent_id = ?", stripePaymentIntentID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByCheckoutSessionID retrieves a payment by its checkout-session id
func (r *paymentRepository) GetByCheckoutSessionID(stripeCheckoutSessionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("stripe_checkout_session_id = ?", stripeCheckoutSessionID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByCustomerID returns payments of a customer, newest first
func (r *paymentRepository) ListByCustomerID(customerID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("customer_id = ?", customerID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

// UpsertByPaymentIntentID creates or updates a payment keyed by its
// payment-intent id. The payment_intent.* handlers use this so a payment
// created entirely outside the checkout flow still gets a row.
func (r *paymentRepository) UpsertByPaymentIntentID(payment *models.Payment) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stripe_payment_intent_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_id",
			"amount",
			"currency",
			"status",
			"description",
			"metadata",
			"updated_at",
		}),
	}).Create(payment).Error; err != nil {
		return err
	}

	return r.db.Where("stripe_payment_intent_id = ?", payment.StripePaymentIntentID).
		First(payment).Error
}

// UpsertByCheckoutSessionID creates or updates a payment keyed by its
// checkout-session id, used for payment-mode checkout completions.
func (r *paymentRepository) UpsertByCheckoutSessionID(payment *models.Payment) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stripe_checkout_session_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_id",
			"stripe_payment_intent_id",
			"amount",
			"currency",
			"status",
			"metadata",
			"updated_at",
		}),
	}).Create(payment).Error; err != nil {
		return err
	}

	return r.db.Where("stripe_checkout_session_id = ?", payment.StripeCheckoutSessionID).
		First(payment).Error
}
