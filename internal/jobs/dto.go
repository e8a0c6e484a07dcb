package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rednammadhavi/laptopcare-erp/internal/users"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
)

// CustomerRefDTO is the compact customer expansion embedded in job responses.
type CustomerRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// JobDTO is the transport shape for a work order with its customer and
// technician expanded.
type JobDTO struct {
	ID                 uuid.UUID            `json:"id"`
	Customer           *CustomerRefDTO      `json:"customer,omitempty"`
	Technician         *users.TechnicianDTO `json:"technician,omitempty"`
	DeviceType         enums.DeviceType     `json:"deviceType"`
	Brand              *string              `json:"brand,omitempty"`
	Model              *string              `json:"model,omitempty"`
	SerialNumber       *string              `json:"serialNumber,omitempty"`
	Issue              string               `json:"issue"`
	ProblemDescription *string              `json:"problemDescription,omitempty"`
	Priority           enums.Priority       `json:"priority"`
	Status             enums.TicketStatus   `json:"status"`
	EstimatedCost      *decimal.Decimal     `json:"estimatedCost,omitempty"`
	ActualCost         *decimal.Decimal     `json:"actualCost,omitempty"`
	CreatedByID        uuid.UUID            `json:"createdById"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
}

// ListDTO is a cursor page of jobs.
type ListDTO struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// CreateJobRequest is the work order intake payload.
type CreateJobRequest struct {
	Customer           string           `json:"customer" validate:"required,uuid"`
	Technician         string           `json:"technician" validate:"required"`
	DeviceType         *string          `json:"deviceType,omitempty"`
	Brand              *string          `json:"brand,omitempty"`
	Model              *string          `json:"model,omitempty"`
	SerialNumber       *string          `json:"serialNumber,omitempty"`
	Issue              string           `json:"issue" validate:"required"`
	ProblemDescription *string          `json:"problemDescription,omitempty"`
	Priority           *string          `json:"priority,omitempty"`
	Status             *string          `json:"status,omitempty"`
	EstimatedCost      *decimal.Decimal `json:"estimatedCost,omitempty"`
	ActualCost         *decimal.Decimal `json:"actualCost,omitempty"`
}

// UpdateJobRequest carries partial updates; absent fields are untouched.
type UpdateJobRequest struct {
	Technician         *string          `json:"technician,omitempty"`
	DeviceType         *string          `json:"deviceType,omitempty"`
	Brand              *string          `json:"brand,omitempty"`
	Model              *string          `json:"model,omitempty"`
	SerialNumber       *string          `json:"serialNumber,omitempty"`
	Issue              *string          `json:"issue,omitempty"`
	ProblemDescription *string          `json:"problemDescription,omitempty"`
	Priority           *string          `json:"priority,omitempty"`
	Status             *string          `json:"status,omitempty"`
	EstimatedCost      *decimal.Decimal `json:"estimatedCost,omitempty"`
	ActualCost         *decimal.Decimal `json:"actualCost,omitempty"`
}

// FromModel maps the persisted row into its transport shape.
func FromModel(j *models.Job) *JobDTO {
	if j == nil {
		return nil
	}

	dto := &JobDTO{
		ID:                 j.ID,
		Technician:         users.TechnicianFromModel(j.Technician),
		DeviceType:         j.DeviceType,
		Brand:              j.Brand,
		Model:              j.Model,
		SerialNumber:       j.SerialNumber,
		Issue:              j.Issue,
		ProblemDescription: j.ProblemDescription,
		Priority:           j.Priority,
		Status:             j.Status,
		EstimatedCost:      j.EstimatedCost,
		ActualCost:         j.ActualCost,
		CreatedByID:        j.CreatedByID,
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}
	if j.Customer != nil {
		dto.Customer = &CustomerRefDTO{ID: j.Customer.ID, Name: j.Customer.Name}
	}
	return dto
}
