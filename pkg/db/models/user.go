package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
)

// User represents a staff identity with one of the four shop roles.
type User struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name                string     `gorm:"not null"`
	Email               string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash        string     `gorm:"column:password_hash;not null"`
	Role                enums.Role `gorm:"type:text;not null"`
	ResetToken          *string    `gorm:"column:reset_token"`
	ResetTokenExpiresAt *time.Time `gorm:"column:reset_token_expires_at"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
