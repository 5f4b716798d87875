package usercontext

import "github.com/gofiber/fiber/v2"

const localsKey = "USER_CONTEXT"

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// Set stores the user context on the request.
func Set(c *fiber.Ctx, ctx UserContext) {
	c.Locals(localsKey, ctx)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(localsKey); ctx != nil {
		if uc, ok := ctx.(UserContext); ok {
			return uc
		}
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}
