package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"
	"github.com/saasbase-io/saasbase/internal/pkg/env"
)

var store *session.Store

const (
	KeyUserID    = "user_id"
	KeyUserEmail = "user_email"
	KeyUserName  = "user_name"
	KeyUserRole  = "user_role"
)

// SetupSession wires the Fiber session store against Redis DB 1 so
// sessions survive restarts and are shared between instances.
func SetupSession() {
	port, _ := strconv.Atoi(env.GetEnv("REDIS_PORT", "6379"))
	storage := redis.New(redis.Config{
		Host:     env.GetEnv("REDIS_HOST", "127.0.0.1"),
		Port:     port,
		Password: env.GetEnv("REDIS_PASSWORD", ""),
		Database: 1,
	})

	Setup(session.Config{
		Storage:        storage,
		Expiration:     72 * time.Hour,
		KeyLookup:      "cookie:session_id",
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		CookieSameSite: "Lax",
	})
}

// Setup installs the session store over the given config. Tests use it
// with fiber's in-memory storage instead of Redis.
func Setup(cfg session.Config) {
	store = session.New(cfg)
}

func Get(c *fiber.Ctx) (*session.Session, error) {
	if store == nil {
		return nil, fmt.Errorf("session store not initialized")
	}
	return store.Get(c)
}

func Login(c *fiber.Ctx, userID uint, email, name, role string) error {
	sess, err := Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(KeyUserID, userID)
	sess.Set(KeyUserEmail, email)
	sess.Set(KeyUserName, name)
	sess.Set(KeyUserRole, role)
	return sess.Save()
}

func Logout(c *fiber.Ctx) error {
	sess, err := Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
