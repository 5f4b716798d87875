package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckFailsOpenWithoutRedis(t *testing.T) {
	cfg := Config{Limit: 5, Window: time.Minute, Prefix: "login"}

	res := Check(context.Background(), "10.0.0.1", cfg)

	assert.True(t, res.Allowed)
	assert.Equal(t, int64(5), res.Remaining)
}
