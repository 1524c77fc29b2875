package middleware

import (
	"mazal-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", user)
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentUserID extracts the numeric inventory user id from the session user.
// Session data round-trips through JSON, so numbers may arrive as float64.
func CurrentUserID(c *fiber.Ctx) (int64, bool) {
	m, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok {
		return 0, false
	}
	switch v := m["user_id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}
