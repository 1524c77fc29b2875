package middleware

import (
	"mazal-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the global error handler. Returns the standard error format.
// Operation-level failures are converted to error responses by handlers; this
// catches anything that still escapes so no error reaches the client unwrapped.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	details := map[string]interface{}{}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if code >= 500 {
		log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled request error")
	}

	return response.Error(c, message, code, details)
}
