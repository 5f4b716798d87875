package models

import "time"

// WebhookEvent is the idempotency marker for processed provider events.
// Rows are write-once: the unique index on the event id is the safety net
// against concurrent deliveries of the same event. Old rows may be garbage
// collected because Stripe's own retry window is bounded.
type WebhookEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StripeEventID string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_stripe_id" json:"stripe_event_id"`
	EventType     string    `gorm:"type:varchar(100);not null;index" json:"event_type"`
	ProcessedAt   time.Time `gorm:"autoCreateTime;index" json:"processed_at"`
}
