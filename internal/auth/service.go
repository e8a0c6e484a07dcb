package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/internal/users"
	pkgAuth "github.com/rednammadhavi/laptopcare-erp/pkg/auth"
	"github.com/rednammadhavi/laptopcare-erp/pkg/auth/session"
	"github.com/rednammadhavi/laptopcare-erp/pkg/config"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
	pkgerrors "github.com/rednammadhavi/laptopcare-erp/pkg/errors"
	"github.com/rednammadhavi/laptopcare-erp/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	userNotFoundMessage       = "user not found"

	resetTokenTTL = time.Hour
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, rawToken string) error
	Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*users.UserDTO, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type service struct {
	users       userRepository
	revoker     session.Revoker
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	Revoker        session.Revoker
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Revoker == nil {
		return nil, fmt.Errorf("token revoker is required")
	}
	return &service{
		users:       params.UserRepo,
		revoker:     params.Revoker,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		now:         time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, userNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if req.Role != nil {
		requested := strings.ToLower(strings.TrimSpace(*req.Role))
		if requested != "" && requested != string(user.Role) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized,
				fmt.Sprintf("invalid credentials for %s role", requested))
		}
	}

	valid, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	token, err := s.mintToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token: token,
		User:  users.FromModel(user),
	}, nil
}

func (s *service) Logout(ctx context.Context, rawToken string) error {
	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, rawToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	ttl := s.jwtCfg.TokenTTL()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke token")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, userNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return users.FromModel(user), nil
}

func (s *service) UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*users.UserDTO, error) {
	updates := map[string]any{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing.ID != userID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		updates["email"] = email
	}

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		updates["password_hash"] = hash
	}

	user, err := s.users.UpdateProfile(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, userNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return users.FromModel(user), nil
}

func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*ForgotPasswordResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, userNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}

	expiresAt := s.now().UTC().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	return &ForgotPasswordResponse{
		ResetToken: token,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	user, err := s.users.FindByResetToken(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired reset token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reset token")
	}

	if user.ResetTokenExpiresAt == nil || s.now().After(*user.ResetTokenExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired reset token")
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	if err := s.users.ResetPassword(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset password")
	}
	return nil
}

func (s *service) mintToken(user *models.User) (string, error) {
	if !user.Role.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "stored role is invalid")
	}
	payload := pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   enums.Role(user.Role),
		JTI:    uuid.NewString(),
	}
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), payload)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}
