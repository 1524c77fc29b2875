package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	authsvc "mazal-backend/internal/application/auth"
	"mazal-backend/internal/domain"
	"mazal-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testBotToken = "12345:TEST_TOKEN"

func setupAuthHandlers(t *testing.T) (*Handlers, *gorm.DB, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	h := &Handlers{
		Service: &authsvc.Service{DB: db, BotToken: testBotToken},
		Rdb:     rdb,
		Config: middleware.SessionConfig{
			AllowCrossSiteDev: false,
			IsProduction:      false,
		},
	}
	return h, db, rdb
}

func telegramInitData(t *testing.T, id int64) string {
	t.Helper()
	values := url.Values{
		"user":      {fmt.Sprintf(`{"id":%d,"first_name":"Dana","username":"dana_d"}`, id)},
		"auth_date": {fmt.Sprintf("%d", time.Now().Unix())},
	}
	values.Set("hash", authsvc.SignInitData(values, testBotToken))
	return values.Encode()
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestTelegramLogin_EmptyBody(t *testing.T) {
	h, _, _ := setupAuthHandlers(t)
	app := fiber.New()
	app.Post("/telegram", h.TelegramLogin)

	req := httptest.NewRequest("POST", "/telegram", nil)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTelegramLogin_InvalidInitData(t *testing.T) {
	h, _, _ := setupAuthHandlers(t)
	app := fiber.New()
	app.Post("/telegram", h.TelegramLogin)

	body, _ := json.Marshal(map[string]string{"initData": "hash=deadbeef&user=%7B%22id%22%3A42%7D"})
	req := httptest.NewRequest("POST", "/telegram", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTelegramLogin_Success(t *testing.T) {
	h, db, rdb := setupAuthHandlers(t)
	app := fiber.New()
	app.Post("/telegram", h.TelegramLogin)

	body, _ := json.Marshal(map[string]string{"initData": telegramInitData(t, 42)})
	req := httptest.NewRequest("POST", "/telegram", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, true, data["telegram_environment"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, float64(42), user["user_id"])

	// Session cookie and user session index.
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, strings.HasPrefix(cookie.Value, "s:"))
	assert.True(t, cookie.HttpOnly)

	members, err := rdb.SMembers(req.Context(), "user_sessions:42").Result()
	require.NoError(t, err)
	assert.Len(t, members, 1)

	// The Telegram user was persisted.
	var count int64
	db.Model(&domain.User{}).Where("telegram_id = ?", 42).Count(&count)
	assert.Equal(t, int64(1), count)
}

func createPasswordUser(t *testing.T, db *gorm.DB, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{
		Email:        &email,
		PasswordHash: string(hash),
		FirstName:    "Admin",
		Role:         "admin",
	}).Error)
}

func TestLogin_MissingCredentials(t *testing.T) {
	h, _, _ := setupAuthHandlers(t)
	app := fiber.New()
	app.Post("/login", h.Login)

	body, _ := json.Marshal(map[string]string{"email": "a@b.com"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_UnknownEmail(t *testing.T) {
	h, _, _ := setupAuthHandlers(t)
	app := fiber.New()
	app.Post("/login", h.Login)

	body, _ := json.Marshal(map[string]string{"email": "nobody@example.com", "password": "whatever"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_IncorrectPassword(t *testing.T) {
	h, db, _ := setupAuthHandlers(t)
	createPasswordUser(t, db, "admin@example.com", "Password1!")
	app := fiber.New()
	app.Post("/login", h.Login)

	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "wrong"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_Success(t *testing.T) {
	h, db, _ := setupAuthHandlers(t)
	createPasswordUser(t, db, "admin@example.com", "Password1!")
	app := fiber.New()
	app.Post("/login", h.Login)

	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "Password1!"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, false, data["telegram_environment"])
	require.NotNil(t, sessionCookie(resp))
}

func TestMe_NotAuthenticated(t *testing.T) {
	h, _, _ := setupAuthHandlers(t)
	app := fiber.New()
	app.Get("/me", h.Me)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_Authenticated(t *testing.T) {
	h, _, _ := setupAuthHandlers(t)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id":    float64(42),
			"first_name": "Dana",
			"username":   "dana_d",
			"role":       "user",
			"telegram":   true,
		})
		return c.Next()
	})
	app.Get("/me", h.Me)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	user := result["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, float64(42), user["user_id"])
	assert.Equal(t, "Dana", user["first_name"])
}

func TestLogout_ClearsSession(t *testing.T) {
	h, _, rdb := setupAuthHandlers(t)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("session_id", "sess-1")
		c.Locals("user", map[string]interface{}{"user_id": float64(42)})
		return c.Next()
	})
	app.Delete("/logout", h.Logout)

	req := httptest.NewRequest("DELETE", "/logout", nil)
	require.NoError(t, rdb.Set(req.Context(), middleware.SessionRedisPrefix+"sess-1", "{}", 0).Err())
	require.NoError(t, rdb.SAdd(req.Context(), "user_sessions:42", "sess-1").Err())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	exists, err := rdb.Exists(req.Context(), middleware.SessionRedisPrefix+"sess-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)

	members, err := rdb.SMembers(req.Context(), "user_sessions:42").Result()
	require.NoError(t, err)
	assert.Empty(t, members)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}
