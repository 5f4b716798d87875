package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saasbase-io/saasbase/internal/pkg/cache"
)

// Config describes a fixed window limit.
type Config struct {
	// Limit is the number of requests allowed per window.
	Limit int64
	// Window is the length of the counting window.
	Window time.Duration
	// Prefix namespaces the Redis keys per endpoint.
	Prefix string
}

// Result reports the outcome of a limit check.
type Result struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// Check counts a request against the identifier's window and reports
// whether it may proceed. Fails open when Redis is unavailable so a
// cache outage never locks users out.
func Check(ctx context.Context, identifier string, cfg Config) Result {
	client := cache.GetClient()
	if client == nil {
		return Result{Allowed: true, Remaining: cfg.Limit}
	}

	key := fmt.Sprintf("ratelimit:%s:%s", cfg.Prefix, identifier)

	pipe := client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, cfg.Window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		log.Printf("[RateLimit] check failed, allowing request: %v", err)
		return Result{Allowed: true, Remaining: cfg.Limit}
	}

	count := incr.Val()
	remaining := cfg.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetAt := time.Now().Add(cfg.Window)
	if d := ttl.Val(); d > 0 {
		resetAt = time.Now().Add(d)
	}

	return Result{
		Allowed:   count <= cfg.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
