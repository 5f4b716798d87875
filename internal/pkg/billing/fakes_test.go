package billing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/models"
)

// In-memory fakes that mirror the unique-constraint semantics of the
// gorm repositories.

type fakeLedger struct {
	processed map[string]string
	lookups   int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{processed: map[string]string{}}
}

func (l *fakeLedger) IsProcessed(eventID string) (bool, error) {
	l.lookups++
	_, ok := l.processed[eventID]
	return ok, nil
}

func (l *fakeLedger) MarkProcessed(eventID, eventType string) (*models.WebhookEvent, error) {
	if _, ok := l.processed[eventID]; ok {
		return nil, gorm.ErrDuplicatedKey
	}
	l.processed[eventID] = eventType
	return &models.WebhookEvent{StripeEventID: eventID, EventType: eventType}, nil
}

func (l *fakeLedger) DeleteOlderThan(cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeCustomerStore struct {
	customers []*models.Customer
	nextID    uint
}

func (s *fakeCustomerStore) GetByUserID(userID uint) (*models.Customer, error) {
	for _, c := range s.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeCustomerStore) GetByStripeCustomerID(id string) (*models.Customer, error) {
	for _, c := range s.customers {
		if c.StripeCustomerID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeCustomerStore) Create(customer *models.Customer) error {
	for _, c := range s.customers {
		if c.UserID == customer.UserID || c.StripeCustomerID == customer.StripeCustomerID {
			return gorm.ErrDuplicatedKey
		}
	}
	s.nextID++
	customer.ID = s.nextID
	s.customers = append(s.customers, customer)
	return nil
}

func (s *fakeCustomerStore) Upsert(customer *models.Customer) error {
	for _, c := range s.customers {
		if c.StripeCustomerID == customer.StripeCustomerID {
			c.Email = customer.Email
			c.Name = customer.Name
			c.Metadata = customer.Metadata
			customer.ID = c.ID
			return nil
		}
	}
	return s.Create(customer)
}

type fakeSubscriptionStore struct {
	subs   []*models.Subscription
	nextID uint
}

func (s *fakeSubscriptionStore) GetByStripeSubscriptionID(id string) (*models.Subscription, error) {
	for _, sub := range s.subs {
		if sub.StripeSubscriptionID == id {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeSubscriptionStore) GetActiveByCustomerID(customerID uint) (*models.Subscription, error) {
	for _, sub := range s.subs {
		if sub.CustomerID == customerID && sub.IsActive() {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeSubscriptionStore) CountByCustomerID(customerID uint) (int64, error) {
	var n int64
	for _, sub := range s.subs {
		if sub.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (s *fakeSubscriptionStore) Upsert(sub *models.Subscription) error {
	for i, existing := range s.subs {
		if existing.StripeSubscriptionID == sub.StripeSubscriptionID {
			sub.ID = existing.ID
			s.subs[i] = sub
			return nil
		}
	}
	s.nextID++
	sub.ID = s.nextID
	s.subs = append(s.subs, sub)
	return nil
}

type fakeInvoiceStore struct {
	invoices []*models.Invoice
	nextID   uint
}

func (s *fakeInvoiceStore) Upsert(invoice *models.Invoice) error {
	for i, existing := range s.invoices {
		if existing.StripeInvoiceID == invoice.StripeInvoiceID {
			invoice.ID = existing.ID
			s.invoices[i] = invoice
			return nil
		}
	}
	s.nextID++
	invoice.ID = s.nextID
	s.invoices = append(s.invoices, invoice)
	return nil
}

type fakePaymentStore struct {
	payments []*models.Payment
	nextID   uint
}

func (s *fakePaymentStore) GetByPaymentIntentID(id string) (*models.Payment, error) {
	for _, p := range s.payments {
		if p.StripePaymentIntentID != nil && *p.StripePaymentIntentID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakePaymentStore) UpsertByPaymentIntentID(payment *models.Payment) error {
	for i, existing := range s.payments {
		if existing.StripePaymentIntentID != nil && payment.StripePaymentIntentID != nil &&
			*existing.StripePaymentIntentID == *payment.StripePaymentIntentID {
			payment.ID = existing.ID
			s.payments[i] = payment
			return nil
		}
	}
	s.nextID++
	payment.ID = s.nextID
	s.payments = append(s.payments, payment)
	return nil
}

func (s *fakePaymentStore) UpsertByCheckoutSessionID(payment *models.Payment) error {
	for i, existing := range s.payments {
		if existing.StripeCheckoutSessionID != nil && payment.StripeCheckoutSessionID != nil &&
			*existing.StripeCheckoutSessionID == *payment.StripeCheckoutSessionID {
			payment.ID = existing.ID
			s.payments[i] = payment
			return nil
		}
	}
	s.nextID++
	payment.ID = s.nextID
	s.payments = append(s.payments, payment)
	return nil
}

type fakePlanStore struct {
	plans map[string]*models.Plan
}

func (s *fakePlanStore) GetActiveByStripePriceID(priceID string) (*models.Plan, error) {
	if plan, ok := s.plans[priceID]; ok && plan.IsActive {
		return plan, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeStores struct {
	customers     *fakeCustomerStore
	subscriptions *fakeSubscriptionStore
	invoices      *fakeInvoiceStore
	payments      *fakePaymentStore
	ledger        *fakeLedger
	plans         *fakePlanStore
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		customers:     &fakeCustomerStore{},
		subscriptions: &fakeSubscriptionStore{},
		invoices:      &fakeInvoiceStore{},
		payments:      &fakePaymentStore{},
		ledger:        newFakeLedger(),
		plans:         &fakePlanStore{plans: map[string]*models.Plan{}},
	}
}

func (f *fakeStores) stores() Stores {
	return Stores{
		Customers:     f.customers,
		Subscriptions: f.subscriptions,
		Invoices:      f.invoices,
		Payments:      f.payments,
		Events:        f.ledger,
		Plans:         f.plans,
	}
}

// fakeVerifier accepts any payload signed with the literal header
// "valid" and returns the preconfigured event.
type fakeVerifier struct {
	event Event
}

func (v *fakeVerifier) Verify(payload []byte, sigHeader string) (Event, error) {
	if sigHeader != "valid" {
		return Event{}, errors.New("signature verification failed")
	}
	evt := v.event
	if evt.Raw == nil {
		evt.Raw = payload
	}
	return evt, nil
}

type fakeProvider struct {
	customerID      string
	customerCalls   int
	customerParams  CustomerParams
	sessionCalls    int
	sessionParams   SessionParams
	sessionErr      error
	customerErr     error
	sessionResponse *CheckoutSession
}

func (p *fakeProvider) CreateCustomer(ctx context.Context, params CustomerParams) (string, error) {
	p.customerCalls++
	p.customerParams = params
	if p.customerErr != nil {
		return "", p.customerErr
	}
	if p.customerID == "" {
		return "cus_fake", nil
	}
	return p.customerID, nil
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, params SessionParams) (*CheckoutSession, error) {
	p.sessionCalls++
	p.sessionParams = params
	if p.sessionErr != nil {
		return nil, p.sessionErr
	}
	if p.sessionResponse != nil {
		return p.sessionResponse, nil
	}
	return &CheckoutSession{
		SessionID: "cs_test_123",
		URL:       "https://checkout.stripe.com/c/pay/cs_test_123",
	}, nil
}
