package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/saasbase-io/saasbase/app/repository"
	"github.com/saasbase-io/saasbase/internal/pkg/apperr"
	"github.com/saasbase-io/saasbase/internal/pkg/usercontext"
)

// UserController serves account reads and updates.
type UserController struct {
	users repository.UserRepository
}

func NewUserController(users repository.UserRepository) *UserController {
	return &UserController{users: users}
}

// HandleListUsers returns a paginated user list for admins.
func (uc *UserController) HandleListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 25)
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	users, err := uc.users.List((page-1)*perPage, perPage)
	if err != nil {
		return renderError(c, apperr.Database("user list failed", err))
	}
	total, err := uc.users.Count()
	if err != nil {
		return renderError(c, apperr.Database("user count failed", err))
	}

	items := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		items = append(items, fiber.Map{
			"id":          u.ID,
			"name":        u.Name,
			"email":       u.Email,
			"role":        u.Role,
			"status":      u.Status,
			"lastLoginAt": formatTimePtr(u.LastLoginAt),
		})
	}

	return renderSuccess(c, fiber.Map{
		"users":   items,
		"total":   total,
		"page":    page,
		"perPage": perPage,
	})
}

// HandleGetMe returns the logged-in user's account.
func (uc *UserController) HandleGetMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := uc.users.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.NotFound("user not found"))
		}
		return renderError(c, apperr.Database("user lookup failed", err))
	}

	return renderSuccess(c, fiber.Map{
		"id":     user.ID,
		"name":   user.Name,
		"email":  user.Email,
		"role":   user.Role,
		"status": user.Status,
	})
}

type updateMeRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// HandleUpdateMe applies partial updates to the logged-in user.
func (uc *UserController) HandleUpdateMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req updateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.Validation("invalid request body"))
	}

	user, err := uc.users.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.NotFound("user not found"))
		}
		return renderError(c, apperr.Database("user lookup failed", err))
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 {
			return renderError(c, apperr.Validation("name must be at least 2 characters"))
		}
		user.Name = name
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return renderError(c, apperr.Validation("password must be at least 8 characters"))
		}
		if err := user.SetPassword(*req.Password); err != nil {
			return renderError(c, apperr.Database("password update failed", err))
		}
	}

	if err := uc.users.Update(user); err != nil {
		return renderError(c, apperr.Database("user update failed", err))
	}

	return renderSuccess(c, fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}
