package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saasbase-io/saasbase/app/models"
	"github.com/saasbase-io/saasbase/internal/pkg/session"
	"github.com/saasbase-io/saasbase/internal/pkg/usercontext"
)

// UserContext resolves the session into a request-scoped user context
// so handlers never touch the session store directly.
func UserContext(c *fiber.Ctx) error {
	// Goth uses its own fiber session store on /auth/*; skip ours there
	// to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	sess, err := session.Get(c)
	if err != nil {
		usercontext.Set(c, usercontext.UserContext{})
		return c.Next()
	}

	userID, ok := sess.Get(session.KeyUserID).(uint)
	if !ok || userID == 0 {
		usercontext.Set(c, usercontext.UserContext{})
		return c.Next()
	}

	email, _ := sess.Get(session.KeyUserEmail).(string)
	name, _ := sess.Get(session.KeyUserName).(string)
	role, _ := sess.Get(session.KeyUserRole).(string)

	usercontext.Set(c, usercontext.UserContext{
		UserID:     userID,
		Email:      email,
		Name:       name,
		IsLoggedIn: true,
		IsAdmin:    role == models.ROLE_ADMIN,
	})
	return c.Next()
}
