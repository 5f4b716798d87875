package repository

import (
	"time"

	"github.com/saasbase-io/saasbase/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// IsProcessed reports whether an event id is already in the ledger
func (r *webhookEventRepository) IsProcessed(stripeEventID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.WebhookEvent{}).
		Where("stripe_event_id = ?", stripeEventID).
		Count(&count).Error
	return count > 0, err
}

// MarkProcessed records an event id in the ledger. When two deliveries of the
// same event race, exactly one insert wins; the loser gets
// gorm.ErrDuplicatedKey and must treat the event as already processed.
func (r *webhookEventRepository) MarkProcessed(stripeEventID, eventType string) (*models.WebhookEvent, error) {
	event := &models.WebhookEvent{
		StripeEventID: stripeEventID,
		EventType:     eventType,
	}
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stripe_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrDuplicatedKey
	}
	return event, nil
}

// DeleteOlderThan garbage-collects ledger rows outside the retention window.
// Safe because the provider's retry window is bounded.
func (r *webhookEventRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	tx := r.db.Where("processed_at < ?", cutoff).Delete(&models.WebhookEvent{})
	return tx.RowsAffected, tx.Error
}
