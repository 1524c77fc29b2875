package auth

import (
	"context"
	"strconv"

	authsvc "mazal-backend/internal/application/auth"
	"mazal-backend/internal/middleware"
	"mazal-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *authsvc.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

// TelegramLoginRequest carries the Mini App init data string.
type TelegramLoginRequest struct {
	InitData string `json:"initData"`
}

// TelegramLogin POST /api/v1/auth/telegram — verify init data, create session,
// set cookie. The response carries telegram_environment so the client can gate
// cosmetic behaviors (theme toggle visibility).
func (h *Handlers) TelegramLogin(c *fiber.Ctx) error {
	if h.Service == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req TelegramLoginRequest
	if err := c.BodyParser(&req); err != nil || req.InitData == "" {
		return response.Error(c, authsvc.ErrInitDataRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.LoginWithTelegram(c.Context(), req.InitData)
	if err != nil {
		switch err {
		case authsvc.ErrInitDataRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case authsvc.ErrInvalidInitData, authsvc.ErrInitDataExpired:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			log.Error().Err(err).Msg("Telegram login failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	if err := h.establishSession(c, user); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{
		"user":                 user,
		"telegram_environment": true,
	}, nil)
}

// Login POST /api/v1/auth/login — dev/admin email+password fallback for
// non-Telegram environments.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.Service == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.LoginWithPassword(c.Context(), req)
	if err != nil {
		switch err {
		case authsvc.ErrEmailPasswordRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case authsvc.ErrInvalidEmail, authsvc.ErrIncorrectPassword:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	if err := h.establishSession(c, user); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{
		"user":                 user,
		"telegram_environment": false,
	}, nil)
}

func (h *Handlers) establishSession(c *fiber.Ctx, user *authsvc.SessionUserShape) error {
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:    user.UserID,
		FirstName: user.FirstName,
		Username:  user.Username,
		Role:      user.Role,
		Telegram:  user.Telegram,
	})

	ctx := context.Background()
	if err := h.Rdb.SAdd(ctx, userSessionsPrefix+strconv.FormatInt(user.UserID, 10), sessionID).Err(); err != nil {
		return err
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)
	return nil
}

// Me GET /api/v1/auth/me — return current session user in standard success format.
func (h *Handlers) Me(c *fiber.Ctx) error {
	sessionUser := middleware.GetUser(c)
	user, err := authsvc.VerifyUser(sessionUser)
	if err != nil {
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout — SRem user_sessions:user_id, Del session key, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	sessionUser := middleware.GetUser(c)

	ctx := context.Background()

	if sessionUser != nil && sessionID != "" {
		if userID, ok := middleware.CurrentUserID(c); ok {
			_ = h.Rdb.SRem(ctx, userSessionsPrefix+strconv.FormatInt(userID, 10), sessionID).Err()
		}
	}

	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}

	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
