package billing

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"
)

// Status reports what processing an event amounted to.
type Status string

const (
	StatusProcessed        Status = "processed"
	StatusAlreadyProcessed Status = "already_processed"
	StatusError            Status = "error"
)

// Dispatcher runs the verify, deduplicate, route phases for inbound
// provider events. A handler failure is logged and reported as
// StatusError but never as a transport error, so the provider does not
// retry a permanently failing event forever.
type Dispatcher struct {
	verifier SignatureVerifier
	ledger   EventLedger
	routes   map[EventKind]HandlerFunc
}

// NewDispatcher wires a dispatcher from its verifier, ledger and
// routing table.
func NewDispatcher(verifier SignatureVerifier, ledger EventLedger, routes map[EventKind]HandlerFunc) *Dispatcher {
	return &Dispatcher{
		verifier: verifier,
		ledger:   ledger,
		routes:   routes,
	}
}

// Dispatch authenticates and applies one raw webhook delivery. A
// non-nil error means signature verification failed and nothing was
// read or written; every post-verification outcome is a Status.
func (d *Dispatcher) Dispatch(ctx context.Context, payload []byte, sigHeader string) (Status, Event, error) {
	evt, err := d.verifier.Verify(payload, sigHeader)
	if err != nil {
		return "", Event{}, err
	}

	processed, err := d.ledger.IsProcessed(evt.ID)
	if err != nil {
		log.Printf("[Billing] ledger lookup failed for %s: %v", evt.ID, err)
		return StatusError, evt, nil
	}
	if processed {
		return StatusAlreadyProcessed, evt, nil
	}

	handler, ok := d.routes[evt.Kind]
	if !ok {
		// Unknown kinds are acknowledged, never an error.
		log.Printf("[Billing] unhandled event type %s (%s)", evt.Kind, evt.ID)
		return d.mark(evt)
	}

	if err := handler(ctx, evt); err != nil {
		log.Printf("[Billing] handler for %s (%s) failed: %v", evt.Kind, evt.ID, err)
		return StatusError, evt, nil
	}

	return d.mark(evt)
}

// mark records the event in the ledger. Losing the duplicate-key race
// means a concurrent delivery already applied it.
func (d *Dispatcher) mark(evt Event) (Status, Event, error) {
	if _, err := d.ledger.MarkProcessed(evt.ID, string(evt.Kind)); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return StatusAlreadyProcessed, evt, nil
		}
		log.Printf("[Billing] marking %s processed failed: %v", evt.ID, err)
		return StatusError, evt, nil
	}
	return StatusProcessed, evt, nil
}
