package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/models"
	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
)

// Notifier receives customer-facing notifications triggered by event
// processing. A nil Notifier disables them.
type Notifier interface {
	PaymentFailed(email string, amount int64, currency string)
}

// Handlers applies verified provider events to the entity store. Each
// handler is upsert-based and tolerates duplicate and out-of-order
// delivery; a missing Customer that an event strictly references is a
// domain error so the failure shows up in logs.
type Handlers struct {
	stores   Stores
	notifier Notifier
}

// NewHandlers builds the handler set over the given stores.
func NewHandlers(stores Stores, notifier Notifier) *Handlers {
	return &Handlers{stores: stores, notifier: notifier}
}

// HandlerFunc applies one verified event.
type HandlerFunc func(ctx context.Context, evt Event) error

// Routes returns the closed event-kind routing table.
func (h *Handlers) Routes() map[EventKind]HandlerFunc {
	return map[EventKind]HandlerFunc{
		EventCheckoutSessionCompleted: h.HandleCheckoutSessionCompleted,
		EventCustomerCreated:          h.HandleCustomerCreated,
		EventSubscriptionCreated:      h.HandleSubscriptionChanged,
		EventSubscriptionUpdated:      h.HandleSubscriptionChanged,
		EventSubscriptionDeleted:      h.HandleSubscriptionDeleted,
		EventInvoicePaid:              h.HandleInvoicePaid,
		EventInvoicePaymentFailed:     h.HandleInvoicePaymentFailed,
		EventPaymentIntentSucceeded:   h.HandlePaymentIntentSucceeded,
		EventPaymentIntentFailed:      h.HandlePaymentIntentFailed,
	}
}

// requireCustomer resolves a provider customer id to the local row and
// converts absence into a domain error.
func (h *Handlers) requireCustomer(stripeCustomerID string) (*models.Customer, error) {
	if stripeCustomerID == "" {
		return nil, apperr.Validation("event carries no customer id")
	}
	customer, err := h.stores.Customers.GetByStripeCustomerID(stripeCustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("customer %s not found", stripeCustomerID))
		}
		return nil, apperr.Database("customer lookup failed", err)
	}
	return customer, nil
}

// HandleCheckoutSessionCompleted finalizes a completed checkout. The
// customer must already exist from the checkout flow; this handler
// never creates one.
func (h *Handlers) HandleCheckoutSessionCompleted(ctx context.Context, evt Event) error {
	var payload CheckoutSessionPayload
	if err := json.Unmarshal(evt.Raw, &payload); err != nil {
		return apperr.Validation("malformed checkout.session payload")
	}

	customer, err := h.requireCustomer(payload.Customer)
	if err != nil {
		return err
	}

	switch payload.Mode {
	case "subscription":
		if payload.Subscription == "" {
			return nil
		}
		_, err := h.stores.Subscriptions.GetByStripeSubscriptionID(payload.Subscription)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Database("subscription lookup failed", err)
		}
		// Placeholder until the subscription.created event lands.
		sub := &models.Subscription{
			CustomerID:           customer.ID,
			StripeSubscriptionID: payload.Subscription,
			Status:               models.SubscriptionStatusIncomplete,
			Metadata:             payload.Metadata,
		}
		if err := h.stores.Subscriptions.Upsert(sub); err != nil {
			return apperr.Database("subscription upsert failed", err)
		}
	case "payment":
		status := models.PaymentStatusPending
		if payload.PaymentStatus == "paid" {
			status = models.PaymentStatusSucceeded
		}
		payment := &models.Payment{
			CustomerID:              customer.ID,
			StripeCheckoutSessionID: strPtr(payload.ID),
			Amount:                  payload.AmountTotal,
			Currency:                payload.Currency,
			Status:                  status,
			Metadata:                payload.Metadata,
		}
		if payload.PaymentIntent != "" {
			payment.StripePaymentIntentID = strPtr(payload.PaymentIntent)
		}
		if err := h.stores.Payments.UpsertByCheckoutSessionID(payment); err != nil {
			return apperr.Database("payment upsert failed", err)
		}
	}
	return nil
}

// HandleCustomerCreated mirrors customers created outside the checkout
// flow, e.g. via the provider dashboard. Customers without a userId
// metadata tag cannot be bound to a local user and are skipped.
func (h *Handlers) HandleCustomerCreated(ctx context.Context, evt Event) error {
	var payload CustomerPayload
	if err := json.Unmarshal(evt.Raw, &payload); err != nil {
		return apperr.Validation("malformed customer payload")
	}

	userID := parseUserID(payload.Metadata)
	if userID == 0 {
		log.Printf("[Billing] customer %s has no userId metadata, skipping", payload.ID)
		return nil
	}

	customer := &models.Customer{
		UserID:           userID,
		StripeCustomerID: payload.ID,
		Email:            payload.Email,
		Name:             payload.Name,
		Metadata:         payload.Metadata,
	}
	if err := h.stores.Customers.Upsert(customer); err != nil {
		return apperr.Database("customer upsert failed", err)
	}
	return nil
}

// HandleSubscriptionChanged upserts a subscription from created and
// updated events. An updated event arriving before created still
// produces the row.
func (h *Handlers) HandleSubscriptionChanged(ctx context.Context, evt Event) error {
	var payload SubscriptionPayload
	if err := json.Unmarshal(evt.Raw, &payload); err != nil {
		return apperr.Validation("malformed subscription payload")
	}

	customer, err := h.requireCustomer(payload.Customer)
	if err != nil {
		return err
	}

	start, end := payload.Period()
	sub := &models.Subscription{
		CustomerID:           customer.ID,
		StripeSubscriptionID: payload.ID,
		StripePriceID:        payload.PriceID(),
		Status:               payload.Status,
		CurrentPeriodStart:   start,
		CurrentPeriodEnd:     end,
		CancelAtPeriodEnd:    payload.CancelAtPeriodEnd,
		CanceledAt:           epochPtr(payload.CanceledAt),
		EndedAt:              epochPtr(payload.EndedAt),
		TrialStart:           epochPtr(payload.TrialStart),
		TrialEnd:             epochPtr(payload.TrialEnd),
		Metadata:             payload.Metadata,
	}
	if err := h.stores.Subscriptions.Upsert(sub); err != nil {
		return apperr.Database("subscription upsert failed", err)
	}
	return nil
}

// HandleSubscriptionDeleted marks a subscription canceled, keeping the
// row for invoice history and audit.
func (h *Handlers) HandleSubscriptionDeleted(ctx context.Context, evt Event) error {
	var payload SubscriptionPayload
	if err := json.Unmarshal(evt.Raw, &payload); err != nil {
		return apperr.Validation("malformed subscription payload")
	}

	customer, err := h.requireCustomer(payload.Customer)
	if err != nil {
		return err
	}

	endedAt := epochPtr(payload.EndedAt)
	if endedAt == nil {
		now := time.Now().UTC()
		endedAt = &now
	}

	start, end := payload.Period()
	sub := &models.Subscription{
		CustomerID:           customer.ID,
		StripeSubscriptionID: payload.ID,
		StripePriceID:        payload.PriceID(),
		Status:               models.SubscriptionStatusCanceled,
		CurrentPeriodStart:   start,
		CurrentPeriodEnd:     end,
		CancelAtPeriodEnd:    payload.CancelAtPeriodEnd,
		CanceledAt:           epochPtr(payload.CanceledAt),
		EndedAt:              endedAt,
		Metadata:             payload.Metadata,
	}
	if err := h.stores.Subscriptions.Upsert(sub); err != nil {
		return apperr.Database("subscription upsert failed", err)
	}
	return nil
}

func (h *Handlers) upsertInvoice(evt Event, fallbackStatus string) (*models.Customer, *models.Invoice, error) {
	var payload InvoicePayload
	if err := json.Unmarshal(evt.Raw, &payload); err != nil {
		return nil, nil, apperr.Validation("malformed invoice payload")
	}

	customer, err := h.requireCustomer(payload.Customer)
	if err != nil {
		return nil, nil, err
	}

	invoice := &models.Invoice{
		CustomerID:      customer.ID,
		StripeInvoiceID: payload.ID,
		AmountDue:       payload.AmountDue,
		AmountPaid:      payload.AmountPaid,
		Currency:        payload.Currency,
		Status:          payload.Status,
		InvoiceURL:      payload.HostedInvoiceURL,
		InvoicePDF:      payload.InvoicePDF,
		PeriodStart:     epochPtr(payload.PeriodStart),
		PeriodEnd:       epochPtr(payload.PeriodEnd),
	}
	if invoice.Status == "" {
		invoice.Status = fallbackStatus
	}

	if payload.Subscription != "" {
		sub, err := h.stores.Subscriptions.GetByStripeSubscriptionID(payload.Subscription)
		if err == nil {
			invoice.SubscriptionID = &sub.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.Database("subscription lookup failed", err)
		}
	}

	if err := h.stores.Invoices.Upsert(invoice); err != nil {
		return nil, nil, apperr.Database("invoice upsert failed", err)
	}
	return customer, invoice, nil
}

// HandleInvoicePaid records a settled invoice.
func (h *Handlers) HandleInvoicePaid(ctx context.Context, evt Event) error {
	_, _, err := h.upsertInvoice(evt, models.InvoiceStatusPaid)
	return err
}

// HandleInvoicePaymentFailed records a failed collection and notifies
// the customer so they can fix their payment method.
func (h *Handlers) HandleInvoicePaymentFailed(ctx context.Context, evt Event) error {
	customer, invoice, err := h.upsertInvoice(evt, models.InvoiceStatusOpen)
	if err != nil {
		return err
	}
	if h.notifier != nil && customer.Email != "" {
		h.notifier.PaymentFailed(customer.Email, invoice.AmountDue, invoice.Currency)
	}
	return nil
}

func (h *Handlers) upsertPaymentIntent(evt Event, status string) error {
	var payload PaymentIntentPayload
	if err := json.Unmarshal(evt.Raw, &payload); err != nil {
		return apperr.Validation("malformed payment_intent payload")
	}

	customer, err := h.requireCustomer(payload.Customer)
	if err != nil {
		return err
	}

	payment := &models.Payment{
		CustomerID:            customer.ID,
		StripePaymentIntentID: strPtr(payload.ID),
		Amount:                payload.Amount,
		Currency:              payload.Currency,
		Status:                status,
		Description:           payload.Description,
		Metadata:              payload.Metadata,
	}
	if err := h.stores.Payments.UpsertByPaymentIntentID(payment); err != nil {
		return apperr.Database("payment upsert failed", err)
	}
	return nil
}

// HandlePaymentIntentSucceeded settles the matching payment, creating
// the row when the payment originated outside the checkout flow.
func (h *Handlers) HandlePaymentIntentSucceeded(ctx context.Context, evt Event) error {
	return h.upsertPaymentIntent(evt, models.PaymentStatusSucceeded)
}

// HandlePaymentIntentFailed marks the matching payment failed.
func (h *Handlers) HandlePaymentIntentFailed(ctx context.Context, evt Event) error {
	return h.upsertPaymentIntent(evt, models.PaymentStatusFailed)
}

func parseUserID(metadata models.Metadata) uint {
	raw, ok := metadata["userId"]
	if !ok {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func strPtr(s string) *string {
	return &s
}
