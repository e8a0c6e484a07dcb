package auth

import (
	"time"

	"github.com/rednammadhavi/laptopcare-erp/internal/users"
)

// LoginRequest carries the credential payload. Role is optional; when present
// it must match the stored role for the account.
type LoginRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Role     *string `json:"role,omitempty"`
}

// LoginResponse returns the signed token plus the public user fields.
type LoginResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}

// RegisterRequest contains the payload for onboarding a staff account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required"`
}

// RegisterResponse mirrors LoginResponse so clients are signed in immediately.
type RegisterResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}

// UpdateProfileRequest updates the caller's own account.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// ForgotPasswordRequest starts the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordResponse returns the reset token directly; there is no mailer.
type ForgotPasswordResponse struct {
	ResetToken string    `json:"resetToken"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ResetPasswordRequest completes the reset flow.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}
