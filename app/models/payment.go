package models

import "time"

// Payment statuses for one-time (non-subscription) payments.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusCanceled  = "canceled"
)

// Payment records a one-time payment. A row is keyed by payment-intent id or
// checkout-session id depending on which side of the flow created it first;
// both columns are unique so duplicate event applications converge.
type Payment struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	CustomerID              uint      `gorm:"not null;index" json:"customer_id"`
	StripePaymentIntentID   *string   `gorm:"type:varchar(191);uniqueIndex:ux_payments_intent;default:null" json:"stripe_payment_intent_id,omitempty"`
	StripeCheckoutSessionID *string   `gorm:"type:varchar(191);uniqueIndex:ux_payments_session;default:null" json:"stripe_checkout_session_id,omitempty"`
	Amount                  int64     `gorm:"not null;default:0" json:"amount"`
	Currency                string    `gorm:"type:varchar(8);not null;default:'usd'" json:"currency"`
	Status                  string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Description             string    `gorm:"type:varchar(512);default:''" json:"description,omitempty"`
	Metadata                Metadata  `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt               time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
