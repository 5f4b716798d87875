package repository

import (
	"github.com/saasbase-io/saasbase/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// customerRepository implements the CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository instance
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// GetByID retrieves a customer by internal ID
func (r *customerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetByUserID retrieves the customer bound to a user. At most one exists.
func (r *customerRepository) GetByUserID(userID uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("user_id = ?", userID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetByStripeCustomerID retrieves a customer by its provider-assigned ID
func (r *customerRepository) GetByStripeCustomerID(stripeCustomerID string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("stripe_customer_id = ?", stripeCustomerID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Create inserts a new customer row
func (r *customerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// Upsert creates or updates a customer keyed by its Stripe customer id.
// Used by the customer.created handler so dashboard-created customers
// converge with orchestrator-created ones.
func (r *customerRepository) Upsert(customer *models.Customer) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stripe_customer_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"email",
			"name",
			"metadata",
			"updated_at",
		}),
	}).Create(customer).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("stripe_customer_id = ?", customer.StripeCustomerID).
		First(customer).Error
}

// Update saves all fields of the given customer
func (r *customerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

// DeleteByUserID removes the billing identity of a user (GDPR erasure path)
func (r *customerRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Customer{}).Error
}
