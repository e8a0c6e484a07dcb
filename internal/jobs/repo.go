package jobs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/internal/repo"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/pagination"
)

// Repository exposes job persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a jobs repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListFilter narrows List results.
type ListFilter struct {
	// TechnicianID restricts results to jobs assigned to the technician.
	TechnicianID *uuid.UUID
	Cursor       *pagination.Cursor
	Limit        int
}

// Create inserts the job and returns the row with its relations expanded.
func (r *Repository) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	if err := r.DB(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, job.ID)
}

// FindByID loads a job with its customer and technician preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := r.DB(ctx).
		Preload("Customer").
		Preload("Technician").
		First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns a page of jobs, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Job, error) {
	query := r.DB(ctx).
		Model(&models.Job{}).
		Preload("Customer").
		Preload("Technician").
		Order("created_at desc, id desc")

	if filter.TechnicianID != nil {
		query = query.Where("technician_id = ?", *filter.TechnicianID)
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

	var rows []models.Job
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update applies the column updates and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Job, error) {
	if len(updates) > 0 {
		err := r.DB(ctx).
			Model(&models.Job{}).
			Where("id = ?", id).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes the job row outright.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Delete(&models.Job{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
