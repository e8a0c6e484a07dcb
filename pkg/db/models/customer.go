package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
)

// Customer is a repair intake record: the person plus the device they dropped off.
type Customer struct {
	ID                    uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Name                  string             `gorm:"not null"`
	Phone                 *string            `gorm:"column:phone"`
	Email                 *string            `gorm:"column:email"`
	Address               *string            `gorm:"column:address"`
	PreferredTechnicianID *uuid.UUID         `gorm:"type:uuid;column:preferred_technician_id"`
	PreferredTechnician   *User              `gorm:"foreignKey:PreferredTechnicianID"`
	DeviceType            enums.DeviceType   `gorm:"type:text;column:device_type;not null;default:'Laptop'"`
	Brand                 *string            `gorm:"column:brand"`
	Model                 *string            `gorm:"column:model"`
	ProblemDescription    string             `gorm:"column:problem_description;not null"`
	Status                enums.TicketStatus `gorm:"type:text;not null;default:'New'"`
	Priority              enums.Priority     `gorm:"type:text;not null;default:'Medium'"`
	EstimatedCompletion   *time.Time         `gorm:"column:estimated_completion"`
	Notes                 *string            `gorm:"column:notes"`
	CreatedByID           uuid.UUID          `gorm:"type:uuid;column:created_by_id;not null"`
	CreatedBy             *User              `gorm:"foreignKey:CreatedByID"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
