package repository

import (
	"github.com/saasbase-io/saasbase/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetByStripeSubscriptionID retrieves a subscription by its provider ID
func (r *subscriptionRepository) GetByStripeSubscriptionID(stripeSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByCustomerID returns all subscriptions of a customer, newest first
func (r *subscriptionRepository) ListByCustomerID(customerID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("customer_id = ?", customerID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// GetActiveByCustomerID returns the newest active or trialing subscription of
// a customer, or gorm.ErrRecordNotFound when there is none
func (r *subscriptionRepository) GetActiveByCustomerID(customerID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.
		Where("customer_id = ? AND status IN ?", customerID, []string{
			models.SubscriptionStatusActive,
			models.SubscriptionStatusTrialing,
		}).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CountByCustomerID counts subscriptions of any status for a customer.
// The checkout flow uses this for trial eligibility: any history at all
// disqualifies the default trial.
func (r *subscriptionRepository) CountByCustomerID(customerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}

// Upsert creates or updates a subscription keyed by its Stripe subscription
// id. Event handlers rely on this to tolerate out-of-order delivery: an
// "updated" or "deleted" event arriving before "created" still materializes
// the row.
func (r *subscriptionRepository) Upsert(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stripe_subscription_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_id",
			"stripe_price_id",
			"status",
			"current_period_start",
			"current_period_end",
			"cancel_at_period_end",
			"canceled_at",
			"ended_at",
			"trial_start",
			"trial_end",
			"metadata",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).
		First(sub).Error
}
