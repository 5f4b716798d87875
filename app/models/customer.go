package models

import "time"

// Customer is the billing identity bound 1:1 to a user. It is created on the
// first checkout attempt and mirrored from customer.created webhook events for
// customers provisioned outside the app (e.g. the Stripe dashboard).
type Customer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;uniqueIndex:ux_customers_user" json:"user_id"`
	StripeCustomerID string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_customers_stripe_id" json:"stripe_customer_id"`
	Email            string    `gorm:"type:varchar(200);default:''" json:"email"`
	Name             string    `gorm:"type:varchar(150);default:''" json:"name"`
	Metadata         Metadata  `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
