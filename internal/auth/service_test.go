package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/rednammadhavi/laptopcare-erp/pkg/auth"
	"github.com/rednammadhavi/laptopcare-erp/pkg/auth/session"
	"github.com/rednammadhavi/laptopcare-erp/pkg/config"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
	pkgerrors "github.com/rednammadhavi/laptopcare-erp/pkg/errors"
	"github.com/rednammadhavi/laptopcare-erp/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "laptopcare",
	ExpirationMinutes: 60,
}

func newTestService(t *testing.T, repo *stubUserRepo) *service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		Revoker:        session.NewMemoryRevoker(),
		JWTConfig:      testJWTConfig,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service)
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, role enums.Role) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	repo.users[user.ID] = user
	return user
}

func TestLoginUnknownEmailIsNotFound(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if typed.Message() != "user not found" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestLoginRoleMismatch(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "tech@example.com", "secret123", enums.RoleTechnician)
	svc := newTestService(t, repo)

	role := "admin"
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "tech@example.com",
		Password: "secret123",
		Role:     &role,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if typed.Message() != "invalid credentials for admin role" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestLoginMatchingRoleSucceeds(t *testing.T) {
	repo := newStubUserRepo()
	user := seedUser(t, repo, "tech@example.com", "secret123", enums.RoleTechnician)
	svc := newTestService(t, repo)

	role := "technician"
	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Tech@Example.com",
		Password: "secret123",
		Role:     &role,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.Token)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("token user mismatch: %s vs %s", claims.UserID, user.ID)
	}
	if claims.Role != enums.RoleTechnician {
		t.Fatalf("token role mismatch: %s", claims.Role)
	}
	if resp.User == nil || resp.User.Email != "tech@example.com" {
		t.Fatalf("unexpected user payload %+v", resp.User)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "tech@example.com", "secret123", enums.RoleTechnician)
	svc := newTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "tech@example.com", Password: "nope"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestLogoutRevokesOnlyPresentedToken(t *testing.T) {
	repo := newStubUserRepo()
	user := seedUser(t, repo, "tech@example.com", "secret123", enums.RoleTechnician)
	svc := newTestService(t, repo)
	ctx := context.Background()

	mint := func(jti string) string {
		token, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now(), pkgAuth.AccessTokenPayload{
			UserID: user.ID,
			Role:   user.Role,
			JTI:    jti,
		})
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		return token
	}

	revokedToken := mint("jti-revoked")
	survivingToken := mint("jti-surviving")
	_ = survivingToken

	if err := svc.Logout(ctx, revokedToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if revoked, _ := svc.revoker.IsRevoked(ctx, "jti-revoked"); !revoked {
		t.Fatal("presented token should be revoked")
	}
	if revoked, _ := svc.revoker.IsRevoked(ctx, "jti-surviving"); revoked {
		t.Fatal("other sessions must remain valid")
	}
}

func TestLogoutRejectsGarbageToken(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())
	err := svc.Logout(context.Background(), "not-a-jwt")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestForgotPasswordIssuesHexToken(t *testing.T) {
	repo := newStubUserRepo()
	user := seedUser(t, repo, "tech@example.com", "secret123", enums.RoleTechnician)
	svc := newTestService(t, repo)

	resp, err := svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "tech@example.com"})
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if len(resp.ResetToken) != 40 {
		t.Fatalf("expected 40 hex chars, got %d", len(resp.ResetToken))
	}
	if resp.ResetToken != strings.ToLower(resp.ResetToken) {
		t.Fatal("token should be lowercase hex")
	}

	stored := repo.users[user.ID]
	if stored.ResetToken == nil || *stored.ResetToken != resp.ResetToken {
		t.Fatal("token should be persisted on the user")
	}
	if stored.ResetTokenExpiresAt == nil {
		t.Fatal("expiry should be persisted")
	}
	until := time.Until(*stored.ResetTokenExpiresAt)
	if until < 59*time.Minute || until > 61*time.Minute {
		t.Fatalf("expiry should be roughly one hour out, got %s", until)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc := newTestService(t, newStubUserRepo())
	_, err := svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "ghost@example.com"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestResetPasswordRoundTrip(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "tech@example.com", "old-password", enums.RoleTechnician)
	svc := newTestService(t, repo)
	ctx := context.Background()

	resp, err := svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "tech@example.com"})
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	if err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: resp.ResetToken, NewPassword: "new-password"}); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "tech@example.com", Password: "new-password"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "tech@example.com", Password: "old-password"}); err == nil {
		t.Fatal("old password should no longer work")
	}

	// token is single-use
	if err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: resp.ResetToken, NewPassword: "again"}); err == nil {
		t.Fatal("reset token should be cleared after use")
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	repo := newStubUserRepo()
	user := seedUser(t, repo, "tech@example.com", "old-password", enums.RoleTechnician)
	svc := newTestService(t, repo)

	token := "deadbeef"
	expired := time.Now().Add(-time.Minute)
	user.ResetToken = &token
	user.ResetTokenExpiresAt = &expired

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: token, NewPassword: "new-password"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

type stubUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		user.Name = name
	}
	if email, ok := updates["email"].(string); ok {
		user.Email = email
	}
	if hash, ok := updates["password_hash"].(string); ok {
		user.PasswordHash = hash
	}
	return user, nil
}

func (s *stubUserRepo) SetResetToken(_ context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.ResetToken = &token
	user.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (s *stubUserRepo) FindByResetToken(_ context.Context, token string) (*models.User, error) {
	for _, user := range s.users {
		if user.ResetToken != nil && *user.ResetToken == token {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) ResetPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = passwordHash
	user.ResetToken = nil
	user.ResetTokenExpiresAt = nil
	return nil
}
