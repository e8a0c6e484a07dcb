package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/internal/repo"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/pagination"
)

// Repository exposes inventory persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs an inventory repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListFilter narrows List results.
type ListFilter struct {
	Cursor *pagination.Cursor
	Limit  int
}

// Create inserts the item.
func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindByID loads an item by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.DB(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns a page of items, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.InventoryItem, error) {
	query := r.DB(ctx).
		Model(&models.InventoryItem{}).
		Order("created_at desc, id desc")

	if filter.Cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.InventoryItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update applies the column updates and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.InventoryItem, error) {
	if len(updates) > 0 {
		err := r.DB(ctx).
			Model(&models.InventoryItem{}).
			Where("id = ?", id).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes the item row outright.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Delete(&models.InventoryItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
