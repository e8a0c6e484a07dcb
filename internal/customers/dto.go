package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/rednammadhavi/laptopcare-erp/internal/users"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
)

// CustomerDTO is the transport shape for an intake ticket, with the assigned
// technician expanded inline.
type CustomerDTO struct {
	ID                  uuid.UUID            `json:"id"`
	Name                string               `json:"name"`
	Phone               *string              `json:"phone,omitempty"`
	Email               *string              `json:"email,omitempty"`
	Address             *string              `json:"address,omitempty"`
	PreferredTechnician *users.TechnicianDTO `json:"preferredTechnician,omitempty"`
	DeviceType          enums.DeviceType     `json:"deviceType"`
	Brand               *string              `json:"brand,omitempty"`
	Model               *string              `json:"model,omitempty"`
	ProblemDescription  string               `json:"problemDescription"`
	Status              enums.TicketStatus   `json:"status"`
	Priority            enums.Priority       `json:"priority"`
	EstimatedCompletion *time.Time           `json:"estimatedCompletion,omitempty"`
	Notes               *string              `json:"notes,omitempty"`
	CreatedByID         uuid.UUID            `json:"createdById"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// ListDTO is a cursor page of customers.
type ListDTO struct {
	Customers  []CustomerDTO `json:"customers"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// CreateCustomerRequest is the intake payload. Field names mirror the JSON
// surface the policy whitelists are written against.
type CreateCustomerRequest struct {
	Name                string     `json:"name" validate:"required"`
	Phone               *string    `json:"phone,omitempty"`
	Email               *string    `json:"email,omitempty" validate:"omitempty,email"`
	Address             *string    `json:"address,omitempty"`
	PreferredTechnician *string    `json:"preferredTechnician,omitempty"`
	DeviceType          *string    `json:"deviceType,omitempty"`
	Brand               *string    `json:"brand,omitempty"`
	Model               *string    `json:"model,omitempty"`
	ProblemDescription  string     `json:"problemDescription" validate:"required"`
	Status              *string    `json:"status,omitempty"`
	Priority            *string    `json:"priority,omitempty"`
	EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
}

// UpdateCustomerRequest carries partial updates; absent fields are untouched.
// Non-whitelisted fields are stripped per the caller's policy decision.
type UpdateCustomerRequest struct {
	Name                *string    `json:"name,omitempty"`
	Phone               *string    `json:"phone,omitempty"`
	Email               *string    `json:"email,omitempty" validate:"omitempty,email"`
	Address             *string    `json:"address,omitempty"`
	PreferredTechnician *string    `json:"preferredTechnician,omitempty"`
	DeviceType          *string    `json:"deviceType,omitempty"`
	Brand               *string    `json:"brand,omitempty"`
	Model               *string    `json:"model,omitempty"`
	ProblemDescription  *string    `json:"problemDescription,omitempty"`
	Status              *string    `json:"status,omitempty"`
	Priority            *string    `json:"priority,omitempty"`
	EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
}

// FromModel maps the persisted row into its transport shape.
func FromModel(c *models.Customer) *CustomerDTO {
	if c == nil {
		return nil
	}
	return &CustomerDTO{
		ID:                  c.ID,
		Name:                c.Name,
		Phone:               c.Phone,
		Email:               c.Email,
		Address:             c.Address,
		PreferredTechnician: users.TechnicianFromModel(c.PreferredTechnician),
		DeviceType:          c.DeviceType,
		Brand:               c.Brand,
		Model:               c.Model,
		ProblemDescription:  c.ProblemDescription,
		Status:              c.Status,
		Priority:            c.Priority,
		EstimatedCompletion: c.EstimatedCompletion,
		Notes:               c.Notes,
		CreatedByID:         c.CreatedByID,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}
