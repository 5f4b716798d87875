package models

import "time"

const (
	PlanIntervalMonth = "month"
	PlanIntervalYear  = "year"
)

// Plan maps a Stripe price to its display name, billing interval and the
// default trial length granted to first-time subscribers.
type Plan struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StripePriceID string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_plans_price" json:"stripe_price_id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	// "interval" is reserved in MySQL, hence the explicit column name.
	Interval      string    `gorm:"column:billing_interval;type:varchar(16);not null;default:'month'" json:"interval"`
	TrialDays     int       `gorm:"not null;default:0" json:"trial_days"`
	IsActive      bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
