package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saasbase-io/saasbase/internal/pkg/env"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// SetupCache initializes the Redis client used for caching, rate
// limiting and counters. Sessions use a separate DB, see session pkg.
func SetupCache() {
	db, _ := strconv.Atoi(env.GetEnv("REDIS_DB", "0"))
	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", env.GetEnv("REDIS_HOST", "127.0.0.1"), env.GetEnv("REDIS_PORT", "6379")),
		Password: env.GetEnv("REDIS_PASSWORD", ""),
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[Cache] Redis not reachable: %v", err)
		return
	}
	log.Println("[Cache] Redis connection established")
}

// GetClient exposes the raw client for packages that need pipelines
// or atomic commands (rate limiter, counters).
func GetClient() *redis.Client {
	return client
}

func IsEnabled() bool {
	return client != nil
}

func Get(key string) (string, error) {
	if client == nil {
		return "", redis.Nil
	}
	return client.Get(ctx, key).Result()
}

func Increment(key string) (int64, error) {
	if client == nil {
		return 0, nil
	}
	return client.Incr(ctx, key).Result()
}

func Expire(key string, expiration time.Duration) error {
	if client == nil {
		return nil
	}
	return client.Expire(ctx, key, expiration).Err()
}
