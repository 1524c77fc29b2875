package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification backs the dashboard notification center.
type Notification struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    int64          `gorm:"column:user_id;not null;index" json:"user_id"`
	Type      string         `gorm:"column:type;type:varchar(20);default:'info'" json:"type"` // info | alert | success
	Title     string         `gorm:"column:title;not null" json:"title"`
	Message   string         `gorm:"column:message" json:"message"`
	Data      datatypes.JSON `gorm:"column:data" json:"data,omitempty"`
	Read      bool           `gorm:"column:read;default:false" json:"read"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
