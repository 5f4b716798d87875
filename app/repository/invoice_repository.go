package repository

import (
	"github.com/saasbase-io/saasbase/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// invoiceRepository implements the InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository instance
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// GetByStripeInvoiceID retrieves an invoice by its provider ID
func (r *invoiceRepository) GetByStripeInvoiceID(stripeInvoiceID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Where("stripe_invoice_id = ?", stripeInvoiceID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListByCustomerID returns invoices of a customer, newest first
func (r *invoiceRepository) ListByCustomerID(customerID uint, offset, limit int) ([]models.Invoice, error) {
	if limit <= 0 {
		limit = 20
	}
	var invoices []models.Invoice
	err := r.db.Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

// Upsert creates or updates an invoice keyed by its Stripe invoice id
func (r *invoiceRepository) Upsert(invoice *models.Invoice) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stripe_invoice_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_id",
			"subscription_id",
			"amount_due",
			"amount_paid",
			"currency",
			"status",
			"invoice_url",
			"invoice_pdf",
			"period_start",
			"period_end",
			"updated_at",
		}),
	}).Create(invoice).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("stripe_invoice_id = ?", invoice.StripeInvoiceID).
		First(invoice).Error
}
