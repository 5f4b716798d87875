package billing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/models"
)

func newTestDispatcher(f *fakeStores, evt Event) *Dispatcher {
	handlers := NewHandlers(f.stores(), nil)
	return NewDispatcher(&fakeVerifier{event: evt}, f.ledger, handlers.Routes())
}

func TestDispatchRejectsInvalidSignatureBeforeAnyWork(t *testing.T) {
	f := newFakeStores()
	d := newTestDispatcher(f, Event{ID: "evt_1", Kind: EventCustomerCreated})

	_, _, err := d.Dispatch(context.Background(), []byte(`{}`), "garbage")

	require.Error(t, err)
	assert.Zero(t, f.ledger.lookups, "ledger must not be read for unverified payloads")
	assert.Empty(t, f.customers.customers)
}

func TestDispatchProcessesThenShortCircuitsDuplicate(t *testing.T) {
	f := newFakeStores()
	f.customers.customers = []*models.Customer{{ID: 1, UserID: 7, StripeCustomerID: "cus_1"}}

	payload, _ := json.Marshal(map[string]any{
		"id":       "sub_1",
		"customer": "cus_1",
		"status":   "active",
	})
	evt := Event{ID: "evt_dup", Kind: EventSubscriptionCreated, Raw: payload}
	d := newTestDispatcher(f, evt)

	status, _, err := d.Dispatch(context.Background(), payload, "valid")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessed, status)
	require.Len(t, f.subscriptions.subs, 1)

	status, _, err = d.Dispatch(context.Background(), payload, "valid")
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyProcessed, status)
	assert.Len(t, f.subscriptions.subs, 1, "duplicate delivery must not change state")
}

func TestDispatchAcknowledgesUnknownKind(t *testing.T) {
	f := newFakeStores()
	evt := Event{ID: "evt_odd", Kind: EventKind("charge.refunded"), Raw: []byte(`{}`)}
	d := newTestDispatcher(f, evt)

	status, _, err := d.Dispatch(context.Background(), []byte(`{}`), "valid")

	require.NoError(t, err)
	assert.Equal(t, StatusProcessed, status)
	processed, _ := f.ledger.IsProcessed("evt_odd")
	assert.True(t, processed, "unknown kinds are marked so they are not replayed")
}

func TestDispatchHandlerFailureAcknowledgedButNotMarked(t *testing.T) {
	f := newFakeStores()
	// Subscription event for a customer that was never persisted.
	payload, _ := json.Marshal(map[string]any{
		"id":       "sub_x",
		"customer": "cus_missing",
		"status":   "active",
	})
	evt := Event{ID: "evt_fail", Kind: EventSubscriptionCreated, Raw: payload}
	d := newTestDispatcher(f, evt)

	status, _, err := d.Dispatch(context.Background(), payload, "valid")

	require.NoError(t, err)
	assert.Equal(t, StatusError, status)
	processed, _ := f.ledger.IsProcessed("evt_fail")
	assert.False(t, processed, "failed events stay unmarked so a later delivery can retry")
}

func TestDispatchMarkRaceReportsAlreadyProcessed(t *testing.T) {
	f := newFakeStores()
	evt := Event{ID: "evt_race", Kind: EventKind("charge.refunded"), Raw: []byte(`{}`)}
	// Simulate a concurrent delivery winning the insert between the
	// IsProcessed check and MarkProcessed.
	d := NewDispatcher(&fakeVerifier{event: evt}, &racingLedger{fakeLedger: f.ledger}, map[EventKind]HandlerFunc{})

	status, _, err := d.Dispatch(context.Background(), []byte(`{}`), "valid")

	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyProcessed, status)
}

// racingLedger reports unprocessed on lookup but already inserted on mark.
type racingLedger struct {
	*fakeLedger
}

func (l *racingLedger) IsProcessed(eventID string) (bool, error) {
	return false, nil
}

func (l *racingLedger) MarkProcessed(eventID, eventType string) (*models.WebhookEvent, error) {
	return nil, gorm.ErrDuplicatedKey
}
