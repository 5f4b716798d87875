package models

import (
	"strings"
	"time"
)

// Subscription lifecycle statuses as delivered by Stripe.
const (
	SubscriptionStatusIncomplete        = "incomplete"
	SubscriptionStatusIncompleteExpired = "incomplete_expired"
	SubscriptionStatusTrialing          = "trialing"
	SubscriptionStatusActive            = "active"
	SubscriptionStatusPastDue           = "past_due"
	SubscriptionStatusCanceled          = "canceled"
	SubscriptionStatusUnpaid            = "unpaid"
	SubscriptionStatusPaused            = "paused"
)

// Subscription mirrors one provider billing-cycle contract. Rows are never
// deleted; a deleted subscription keeps its history with status canceled.
type Subscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	CustomerID           uint       `gorm:"not null;index" json:"customer_id"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_subscriptions_stripe_id" json:"stripe_subscription_id"`
	StripePriceID        string     `gorm:"type:varchar(191);not null;index" json:"stripe_price_id"`
	Status               string     `gorm:"type:varchar(32);not null;default:'incomplete';index" json:"status"`
	CurrentPeriodStart   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CanceledAt           *time.Time `gorm:"type:timestamp;default:null" json:"canceled_at,omitempty"`
	EndedAt              *time.Time `gorm:"type:timestamp;default:null" json:"ended_at,omitempty"`
	TrialStart           *time.Time `gorm:"type:timestamp;default:null" json:"trial_start,omitempty"`
	TrialEnd             *time.Time `gorm:"type:timestamp;default:null" json:"trial_end,omitempty"`
	Metadata             Metadata   `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the subscription currently entitles the customer.
func (s *Subscription) IsActive() bool {
	return IsActiveSubscriptionStatus(s.Status)
}

// IsActiveSubscriptionStatus reports whether a status counts as active.
// Trialing subscriptions are active for the duplicate-subscription guard.
func IsActiveSubscriptionStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
		return true
	default:
		return false
	}
}
