package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
)

// Job is a repair work order assigned to a technician.
type Job struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey"`
	CustomerID         uuid.UUID          `gorm:"type:uuid;column:customer_id;not null"`
	Customer           *Customer          `gorm:"foreignKey:CustomerID"`
	TechnicianID       uuid.UUID          `gorm:"type:uuid;column:technician_id;not null"`
	Technician         *User              `gorm:"foreignKey:TechnicianID"`
	DeviceType         enums.DeviceType   `gorm:"type:text;column:device_type;not null;default:'Laptop'"`
	Brand              *string            `gorm:"column:brand"`
	Model              *string            `gorm:"column:model"`
	SerialNumber       *string            `gorm:"column:serial_number"`
	Issue              string             `gorm:"column:issue;not null"`
	ProblemDescription *string            `gorm:"column:problem_description"`
	Priority           enums.Priority     `gorm:"type:text;not null;default:'Medium'"`
	Status             enums.TicketStatus `gorm:"type:text;not null;default:'New'"`
	EstimatedCost      *decimal.Decimal   `gorm:"type:numeric(10,2);column:estimated_cost"`
	ActualCost         *decimal.Decimal   `gorm:"type:numeric(10,2);column:actual_cost"`
	CreatedByID        uuid.UUID          `gorm:"type:uuid;column:created_by_id;not null"`
	CreatedBy          *User              `gorm:"foreignKey:CreatedByID"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (j *Job) BeforeCreate(_ *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
