package billing

import (
	"context"
	"log"
	"time"
)

const (
	// Provider retries stop well within this window, so ledger rows
	// older than it can no longer be redelivered.
	eventRetention = 30 * 24 * time.Hour

	sweepInterval = 12 * time.Hour
)

// RunLedgerJanitor sweeps expired idempotency-ledger rows until the
// context is canceled. Run it in its own goroutine.
func RunLedgerJanitor(ctx context.Context, ledger EventLedger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	sweep := func() {
		cutoff := time.Now().Add(-eventRetention)
		deleted, err := ledger.DeleteOlderThan(cutoff)
		if err != nil {
			log.Printf("[Billing] ledger sweep failed: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("[Billing] ledger sweep removed %d events", deleted)
		}
	}

	sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
