package repository

import (
	"github.com/saasbase-io/saasbase/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// GetActiveByStripePriceID resolves an active plan by its Stripe price id
func (r *planRepository) GetActiveByStripePriceID(stripePriceID string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("stripe_price_id = ? AND is_active = ?", stripePriceID, true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListActive returns all active plans
func (r *planRepository) ListActive() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&plans).Error
	return plans, err
}
