package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/internal/repo"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/pagination"
)

// Repository exposes customer persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a customers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListFilter narrows List results.
type ListFilter struct {
	// TechnicianID restricts results to rows assigned to the technician.
	TechnicianID *uuid.UUID
	Cursor       *pagination.Cursor
	Limit        int
}

// Create inserts the customer and returns the row with its technician expanded.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.DB(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, customer.ID)
}

// FindByID loads a customer with its preferred technician preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.DB(ctx).
		Preload("PreferredTechnician").
		First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns a page of customers, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Customer, error) {
	query := r.DB(ctx).
		Model(&models.Customer{}).
		Preload("PreferredTechnician").
		Order("created_at desc, id desc")

	if filter.TechnicianID != nil {
		query = query.Where("preferred_technician_id = ?", *filter.TechnicianID)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.Customer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update applies the column updates and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Customer, error) {
	if len(updates) > 0 {
		err := r.DB(ctx).
			Model(&models.Customer{}).
			Where("id = ?", id).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes the customer row outright.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Delete(&models.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
