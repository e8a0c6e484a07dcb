package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/internal/repo"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListTechnicians returns every user holding the technician role, ordered by name.
func (r *Repository) ListTechnicians(ctx context.Context) ([]models.User, error) {
	var technicians []models.User
	err := r.DB(ctx).
		Where("role = ?", enums.RoleTechnician).
		Order("name asc").
		Find(&technicians).Error
	if err != nil {
		return nil, err
	}
	return technicians, nil
}

// UpdateProfile applies the non-nil profile fields to the stored user.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	if len(updates) > 0 {
		err := r.DB(ctx).
			Model(&models.User{}).
			Where("id = ?", id).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// SetResetToken stores a password reset token with its expiry.
func (r *Repository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reset_token":            token,
			"reset_token_expires_at": expiresAt,
		}).Error
}

// FindByResetToken loads the user holding the provided reset token.
func (r *Repository) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("reset_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPassword replaces the password hash and clears any reset token.
func (r *Repository) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":          passwordHash,
			"reset_token":            nil,
			"reset_token_expires_at": nil,
		}).Error
}
