package counter

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/saasbase-io/saasbase/internal/pkg/cache"
)

const (
	keyWebhookTotal   = "metrics:webhook:%s:%s"       // kind, outcome
	keyWebhookDaily   = "metrics:webhook:%s:%s:%s"    // kind, outcome, YYYY-MM-DD
	keyCheckoutTotal  = "metrics:checkout:sessions"
	keyCheckoutDaily  = "metrics:checkout:sessions:%s" // YYYY-MM-DD
	dailyKeyRetention = 48 * time.Hour
)

// Webhook outcome labels.
const (
	OutcomeProcessed        = "processed"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeError            = "error"
)

// TrackWebhookEvent bumps the per-kind counters for a handled webhook
// delivery. Best effort, a cold Redis never blocks event processing.
func TrackWebhookEvent(kind string, outcome string) {
	if !cache.IsEnabled() {
		return
	}
	day := time.Now().Format("2006-01-02")

	if _, err := cache.Increment(fmt.Sprintf(keyWebhookTotal, kind, outcome)); err != nil {
		log.Printf("[Metrics] webhook counter failed: %v", err)
		return
	}
	dailyKey := fmt.Sprintf(keyWebhookDaily, kind, outcome, day)
	if _, err := cache.Increment(dailyKey); err != nil {
		log.Printf("[Metrics] webhook daily counter failed: %v", err)
		return
	}
	_ = cache.Expire(dailyKey, dailyKeyRetention)
}

// TrackCheckoutSession counts every checkout session handed to a user.
func TrackCheckoutSession() {
	if !cache.IsEnabled() {
		return
	}
	day := time.Now().Format("2006-01-02")

	if _, err := cache.Increment(keyCheckoutTotal); err != nil {
		log.Printf("[Metrics] checkout counter failed: %v", err)
		return
	}
	dailyKey := fmt.Sprintf(keyCheckoutDaily, day)
	if _, err := cache.Increment(dailyKey); err != nil {
		log.Printf("[Metrics] checkout daily counter failed: %v", err)
		return
	}
	_ = cache.Expire(dailyKey, dailyKeyRetention)
}

// GetWebhookCount reads a total counter back, 0 when absent.
func GetWebhookCount(kind string, outcome string) int64 {
	val, err := cache.Get(fmt.Sprintf(keyWebhookTotal, kind, outcome))
	if err != nil {
		return 0
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
