package auth

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"mazal-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return &Service{DB: db, BotToken: testBotToken}
}

func telegramInitData(t *testing.T, id int64, firstName, username string) string {
	t.Helper()
	values := url.Values{
		"user":      {fmt.Sprintf(`{"id":%d,"first_name":"%s","username":"%s"}`, id, firstName, username)},
		"auth_date": {fmt.Sprintf("%d", time.Now().Unix())},
	}
	return signedInitData(t, values, testBotToken)
}

func TestLoginWithTelegram_CreatesUser(t *testing.T) {
	svc := setupAuthService(t)

	su, err := svc.LoginWithTelegram(context.Background(), telegramInitData(t, 42, "Dana", "dana_d"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), su.UserID)
	assert.Equal(t, "Dana", su.FirstName)
	assert.Equal(t, "user", su.Role)
	assert.True(t, su.Telegram)

	var user domain.User
	require.NoError(t, svc.DB.Where("telegram_id = ?", 42).First(&user).Error)
	assert.Equal(t, "dana_d", user.Username)
}

func TestLoginWithTelegram_SecondLoginReusesUser(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.LoginWithTelegram(context.Background(), telegramInitData(t, 42, "Dana", "dana_d"))
	require.NoError(t, err)
	_, err = svc.LoginWithTelegram(context.Background(), telegramInitData(t, 42, "Dana", "dana_d"))
	require.NoError(t, err)

	var count int64
	svc.DB.Model(&domain.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLoginWithTelegram_RefreshesNames(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.LoginWithTelegram(context.Background(), telegramInitData(t, 42, "Dana", "dana_d"))
	require.NoError(t, err)

	su, err := svc.LoginWithTelegram(context.Background(), telegramInitData(t, 42, "Dana K", "dana_k"))
	require.NoError(t, err)
	assert.Equal(t, "Dana K", su.FirstName)

	var user domain.User
	require.NoError(t, svc.DB.Where("telegram_id = ?", 42).First(&user).Error)
	assert.Equal(t, "Dana K", user.FirstName)
	assert.Equal(t, "dana_k", user.Username)
}

func TestLoginWithTelegram_InvalidInitData(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.LoginWithTelegram(context.Background(), "hash=deadbeef&user=%7B%22id%22%3A42%7D")
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func createPasswordUser(t *testing.T, db *gorm.DB, email, password string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{
		Email:        &email,
		PasswordHash: string(hash),
		FirstName:    "Admin",
		Role:         "admin",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestLoginWithPassword_Success(t *testing.T) {
	svc := setupAuthService(t)
	user := createPasswordUser(t, svc.DB, "admin@example.com", "Password1!")

	su, err := svc.LoginWithPassword(context.Background(), LoginInput{Email: "admin@example.com", Password: "Password1!"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, su.UserID)
	assert.Equal(t, "admin", su.Role)
	assert.False(t, su.Telegram)
}

func TestLoginWithPassword_Failures(t *testing.T) {
	svc := setupAuthService(t)
	createPasswordUser(t, svc.DB, "admin@example.com", "Password1!")

	_, err := svc.LoginWithPassword(context.Background(), LoginInput{})
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)

	_, err = svc.LoginWithPassword(context.Background(), LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.LoginWithPassword(context.Background(), LoginInput{Email: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}

func TestVerifyUser(t *testing.T) {
	// Session data round-trips through JSON, so numbers arrive as float64.
	su, err := VerifyUser(map[string]interface{}{
		"user_id":    float64(42),
		"first_name": "Dana",
		"username":   "dana_d",
		"role":       "user",
		"telegram":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), su.UserID)
	assert.True(t, su.Telegram)

	_, err = VerifyUser(nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser(map[string]interface{}{"user_id": float64(0)})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser("not-a-map")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
