package models

import "time"

// Invoice statuses as delivered by Stripe.
const (
	InvoiceStatusDraft         = "draft"
	InvoiceStatusOpen          = "open"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusUncollectible = "uncollectible"
	InvoiceStatusVoid          = "void"
)

// Invoice is a billing document tied to a customer and optionally to a
// subscription. Rows are created and updated by invoice lifecycle events and
// never deleted in normal operation.
type Invoice struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CustomerID      uint       `gorm:"not null;index" json:"customer_id"`
	SubscriptionID  *uint      `gorm:"index;default:null" json:"subscription_id,omitempty"`
	StripeInvoiceID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_invoices_stripe_id" json:"stripe_invoice_id"`
	AmountDue       int64      `gorm:"not null;default:0" json:"amount_due"`
	AmountPaid      int64      `gorm:"not null;default:0" json:"amount_paid"`
	Currency        string     `gorm:"type:varchar(8);not null;default:'usd'" json:"currency"`
	Status          string     `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	InvoiceURL      string     `gorm:"type:varchar(512);default:''" json:"invoice_url,omitempty"`
	InvoicePDF      string     `gorm:"type:varchar(512);default:''" json:"invoice_pdf,omitempty"`
	PeriodStart     *time.Time `gorm:"type:timestamp;default:null" json:"period_start,omitempty"`
	PeriodEnd       *time.Time `gorm:"type:timestamp;default:null" json:"period_end,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
