package auth

import (
	"context"

	"mazal-backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for the dev/admin login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Telegram  bool   `json:"telegram"`
}

// Service handles both login paths: Telegram Mini App init data (primary) and
// email+password (dev/admin fallback for non-Telegram environments).
type Service struct {
	DB       *gorm.DB
	BotToken string
}

// LoginWithTelegram verifies init data and upserts the Telegram user. The
// returned session user is keyed by the Telegram ID, which also scopes the
// user's inventory records.
func (s *Service) LoginWithTelegram(ctx context.Context, initData string) (*SessionUserShape, error) {
	tu, err := VerifyInitData(initData, s.BotToken)
	if err != nil {
		return nil, err
	}

	var user domain.User
	err = s.DB.WithContext(ctx).Where("telegram_id = ?", tu.ID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = domain.User{
			TelegramID: &tu.ID,
			FirstName:  tu.FirstName,
			Username:   tu.Username,
			Role:       "user",
		}
		if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else if user.FirstName != tu.FirstName || user.Username != tu.Username {
		user.FirstName = tu.FirstName
		user.Username = tu.Username
		if err := s.DB.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, err
		}
	}

	return &SessionUserShape{
		UserID:    user.InventoryUserID(),
		FirstName: user.FirstName,
		Username:  user.Username,
		Role:      user.Role,
		Telegram:  true,
	}, nil
}

// LoginWithPassword finds a user by email and verifies the password.
func (s *Service) LoginWithPassword(ctx context.Context, input LoginInput) (*SessionUserShape, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", input.Email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &SessionUserShape{
		UserID:    u.InventoryUserID(),
		FirstName: u.FirstName,
		Username:  u.Username,
		Role:      u.Role,
		Telegram:  false,
	}, nil
}

// VerifyUser validates the session user from Locals and returns the /me shape.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID := asInt64(m["user_id"])
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	telegram, _ := m["telegram"].(bool)
	return &SessionUserShape{
		UserID:    userID,
		FirstName: str(m["first_name"]),
		Username:  str(m["username"]),
		Role:      str(m["role"]),
		Telegram:  telegram,
	}, nil
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
