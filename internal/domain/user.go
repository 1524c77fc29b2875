package domain

import (
	"time"

	"gorm.io/gorm"
)

// User is a dashboard user. Telegram users are keyed by their numeric Telegram
// ID (which also scopes their inventory); dev/admin users log in with
// email+password instead and have no Telegram ID.
type User struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TelegramID   *int64         `gorm:"column:telegram_id;uniqueIndex" json:"telegram_id"`
	FirstName    string         `gorm:"column:first_name" json:"first_name"`
	Username     string         `gorm:"column:username" json:"username"`
	Email        *string        `gorm:"column:email;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash" json:"-"`
	Role         string         `gorm:"column:role;not null;default:'user'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// InventoryUserID is the numeric identifier carried on inventory records for
// this user: the Telegram ID when present, the row ID otherwise.
func (u *User) InventoryUserID() int64 {
	if u.TelegramID != nil {
		return *u.TelegramID
	}
	return u.ID
}
