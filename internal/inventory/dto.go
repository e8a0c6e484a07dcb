package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
)

// ItemDTO is the transport shape for a stocked part.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Supplier    *string         `json:"supplier,omitempty"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ListDTO is a cursor page of inventory items.
type ListDTO struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// CreateItemRequest is the stocking payload.
type CreateItemRequest struct {
	Name        string           `json:"name" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	Quantity    *int             `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Supplier    *string          `json:"supplier,omitempty"`
	Description *string          `json:"description,omitempty"`
}

// UpdateItemRequest carries partial updates; absent fields are untouched.
type UpdateItemRequest struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Supplier    *string          `json:"supplier,omitempty"`
	Description *string          `json:"description,omitempty"`
}

// FromModel maps the persisted row into its transport shape.
func FromModel(i *models.InventoryItem) *ItemDTO {
	if i == nil {
		return nil
	}
	return &ItemDTO{
		ID:          i.ID,
		Name:        i.Name,
		Category:    i.Category,
		Quantity:    i.Quantity,
		Price:       i.Price,
		Supplier:    i.Supplier,
		Description: i.Description,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}
