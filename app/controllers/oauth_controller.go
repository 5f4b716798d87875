package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/models"
	"github.com/saasbase-io/saasbase/app/repository"
	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
	"github.com/saasbase-io/saasbase/internal/pkg/session"
)

// OAuthController completes provider logins via goth.
type OAuthController struct {
	users repository.UserRepository
}

func NewOAuthController(users repository.UserRepository) *OAuthController {
	return &OAuthController{users: users}
}

// HandleBegin starts the provider flow.
func (oc *OAuthController) HandleBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleCallback completes the provider flow and logs the user in.
// Accounts are matched by email; first-time OAuth users get a local
// account with a placeholder password that cannot be used for
// credentials login.
func (oc *OAuthController) HandleCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return renderError(c, apperr.Authentication(fmt.Sprintf("OAuth failed: %v", err)))
	}

	email := u.Email
	if email == "" {
		// Unique, non-empty email to satisfy the unique index
		email = fmt.Sprintf("%s_%s@%s.oauth.local", u.Provider, u.UserID, u.Provider)
	}

	user, err := oc.users.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
		user, err = models.CreateUser(firstNonEmpty(u.Name, u.NickName, email, "User"), email, placeholder)
		if err != nil {
			return renderError(c, apperr.Validation(err.Error()))
		}
		if err := oc.users.Create(user); err != nil {
			return renderError(c, apperr.Database("account creation failed", err))
		}
	} else if err != nil {
		return renderError(c, apperr.Database("account lookup failed", err))
	}

	if !user.IsActive() {
		return renderError(c, apperr.Authentication("account is disabled"))
	}

	if err := session.Login(c, user.ID, user.Email, user.Name, user.Role); err != nil {
		return renderError(c, apperr.Database("session creation failed", err))
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleOAuthLogout clears the goth session alongside ours.
func (oc *OAuthController) HandleOAuthLogout(c *fiber.Ctx) error {
	_ = gothfiber.Logout(c)
	if err := session.Logout(c); err != nil {
		return renderError(c, apperr.Database("logout failed", err))
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
