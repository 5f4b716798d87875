package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
	"github.com/saasbase-io/saasbase/internal/pkg/ratelimit"
	"github.com/saasbase-io/saasbase/internal/pkg/usercontext"
)

// RateLimit guards an endpoint with a fixed window per caller. Logged
// in users are counted per user id, anonymous callers per client IP.
func RateLimit(cfg ratelimit.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.IP()
		if userID := usercontext.GetUserID(c); userID != 0 {
			identifier = "u" + strconv.FormatUint(uint64(userID), 10)
		}

		res := ratelimit.Check(c.UserContext(), identifier, cfg)
		c.Set("X-RateLimit-Limit", strconv.FormatInt(cfg.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			return renderError(c, apperr.RateLimit("too many requests, slow down"))
		}
		return c.Next()
	}
}
