package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryItem is a stocked part or accessory.
type InventoryItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"not null"`
	Category    string          `gorm:"not null"`
	Quantity    int             `gorm:"not null;default:0"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Supplier    *string         `gorm:"column:supplier"`
	Description *string         `gorm:"column:description"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *InventoryItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
