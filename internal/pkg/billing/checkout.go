package billing

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/models"
	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
)

// CheckoutDefaults carries the process-wide redirect URLs used when a
// request supplies none.
type CheckoutDefaults struct {
	SuccessURL string
	CancelURL  string
}

// CheckoutInput is one checkout attempt by an authenticated user.
type CheckoutInput struct {
	UserID              uint
	Email               string
	Name                string
	PriceID             string
	SuccessURL          string
	CancelURL           string
	Metadata            map[string]string
	TrialDays           *int64
	AllowPromotionCodes *bool
}

// CheckoutService provisions or reuses the billing customer and hands
// back a provider-hosted checkout session.
type CheckoutService struct {
	provider Provider
	stores   Stores
	defaults CheckoutDefaults
}

// NewCheckoutService wires the orchestrator.
func NewCheckoutService(provider Provider, stores Stores, defaults CheckoutDefaults) *CheckoutService {
	return &CheckoutService{
		provider: provider,
		stores:   stores,
		defaults: defaults,
	}
}

// CreateSubscriptionCheckout runs the full checkout flow: guard
// against a second concurrent subscription, create the provider
// customer on first contact, resolve trial eligibility from the plan
// catalog, and create the session.
func (s *CheckoutService) CreateSubscriptionCheckout(ctx context.Context, in CheckoutInput) (*CheckoutSession, error) {
	if in.UserID == 0 || in.Email == "" {
		return nil, apperr.Authentication("authentication required")
	}
	if in.PriceID == "" {
		return nil, apperr.Validation("priceId is required")
	}

	customer, err := s.stores.Customers.GetByUserID(in.UserID)
	switch {
	case err == nil:
		active, err := s.stores.Subscriptions.GetActiveByCustomerID(customer.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Database("subscription lookup failed", err)
		}
		if active != nil && err == nil {
			return nil, apperr.BusinessLogic("user already has an active subscription")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer, err = s.createCustomer(ctx, in)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Database("customer lookup failed", err)
	}

	trialDays, err := s.resolveTrialDays(customer.ID, in)
	if err != nil {
		return nil, err
	}

	metadata := models.Metadata(in.Metadata).Merge(models.Metadata{
		"userId": strconv.FormatUint(uint64(in.UserID), 10),
	})

	successURL := in.SuccessURL
	if successURL == "" {
		successURL = s.defaults.SuccessURL
	}
	cancelURL := in.CancelURL
	if cancelURL == "" {
		cancelURL = s.defaults.CancelURL
	}

	allowPromo := true
	if in.AllowPromotionCodes != nil {
		allowPromo = *in.AllowPromotionCodes
	}

	session, err := s.provider.CreateCheckoutSession(ctx, SessionParams{
		CustomerID:          customer.StripeCustomerID,
		PriceID:             in.PriceID,
		SuccessURL:          successURL,
		CancelURL:           cancelURL,
		Metadata:            metadata,
		TrialDays:           trialDays,
		AllowPromotionCodes: allowPromo,
	})
	if err != nil {
		return nil, apperr.External("checkout session creation failed", err)
	}
	return session, nil
}

// createCustomer creates the provider customer first and persists the
// local row after. A crash in between leaves an orphaned provider
// customer; the customer.created webhook reconciles it.
func (s *CheckoutService) createCustomer(ctx context.Context, in CheckoutInput) (*models.Customer, error) {
	stripeCustomerID, err := s.provider.CreateCustomer(ctx, CustomerParams{
		Email: in.Email,
		Name:  in.Name,
		Metadata: map[string]string{
			"userId": strconv.FormatUint(uint64(in.UserID), 10),
		},
	})
	if err != nil {
		return nil, apperr.External("customer creation failed", err)
	}

	customer := &models.Customer{
		UserID:           in.UserID,
		StripeCustomerID: stripeCustomerID,
		Email:            in.Email,
		Name:             in.Name,
	}
	if err := s.stores.Customers.Create(customer); err != nil {
		return nil, apperr.Database("customer persistence failed", err)
	}
	return customer, nil
}

// resolveTrialDays grants the plan's configured trial only to
// customers with no subscription history; an explicit override always
// wins.
func (s *CheckoutService) resolveTrialDays(customerID uint, in CheckoutInput) (int64, error) {
	if in.TrialDays != nil {
		return *in.TrialDays, nil
	}

	count, err := s.stores.Subscriptions.CountByCustomerID(customerID)
	if err != nil {
		return 0, apperr.Database("subscription count failed", err)
	}
	if count > 0 {
		return 0, nil
	}

	plan, err := s.stores.Plans.GetActiveByStripePriceID(in.PriceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, apperr.Database("plan lookup failed", err)
	}
	return int64(plan.TrialDays), nil
}
