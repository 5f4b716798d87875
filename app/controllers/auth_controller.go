package controllers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/models"
	"github.com/saasbase-io/saasbase/app/repository"
	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
	"github.com/saasbase-io/saasbase/internal/pkg/mail"
	"github.com/saasbase-io/saasbase/internal/pkg/session"
)

var validate = validator.New()

// AuthController handles credentials-based authentication.
type AuthController struct {
	users repository.UserRepository
}

func NewAuthController(users repository.UserRepository) *AuthController {
	return &AuthController{users: users}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a new account and logs it in.
func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.Validation("invalid request body"))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return renderError(c, apperr.Validation("name, email and password are required"))
	}

	exists, err := ac.users.ExistsByEmail(req.Email)
	if err != nil {
		return renderError(c, apperr.Database("account lookup failed", err))
	}
	if exists {
		return renderError(c, apperr.AlreadyExists("an account with this email already exists"))
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return renderError(c, apperr.Validation(err.Error()))
	}
	if err := ac.users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return renderError(c, apperr.AlreadyExists("an account with this email already exists"))
		}
		return renderError(c, apperr.Database("account creation failed", err))
	}

	if err := session.Login(c, user.ID, user.Email, user.Name, user.Role); err != nil {
		return renderError(c, apperr.Database("session creation failed", err))
	}

	mail.SendWelcome(user.Email, user.Name)

	return renderSuccess(c, fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// HandleLogin authenticates a credentials login.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.Validation("invalid request body"))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return renderError(c, apperr.Validation("email and password are required"))
	}

	user, err := ac.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.Authentication("invalid credentials"))
		}
		return renderError(c, apperr.Database("account lookup failed", err))
	}
	if !user.IsActive() || !user.CheckPassword(req.Password) {
		return renderError(c, apperr.Authentication("invalid credentials"))
	}

	if err := session.Login(c, user.ID, user.Email, user.Name, user.Role); err != nil {
		return renderError(c, apperr.Database("session creation failed", err))
	}

	return renderSuccess(c, fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

// HandleLogout destroys the session.
func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := session.Logout(c); err != nil {
		return renderError(c, apperr.Database("logout failed", err))
	}
	return renderSuccess(c, fiber.Map{"loggedOut": true})
}
