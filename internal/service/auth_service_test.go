package service

import (
	"context"
	"testing"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/security/auth"
)

func newTestAuthService() (*AuthService, *memUserRepo) {
	repo := newMemUserRepo()
	tokens := auth.NewTokenManager("test-secret", "rentease")
	return NewAuthService(repo, tokens, nil), repo
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService()

	user, err := s.Register(ctx, RegisterInput{
		FirstName: "Alice",
		LastName:  "Smith",
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "Password123",
		Role:      "owner",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected user id")
	}
	if user.Role != domain.RoleOwner {
		t.Fatalf("expected owner role, got %s", user.Role)
	}

	// Duplicate email
	if _, err := s.Register(ctx, RegisterInput{
		Username: "alice2", Email: "alice@example.com", Password: "Password123",
	}); !domain.IsAlreadyExists(err) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	// Duplicate username
	if _, err := s.Register(ctx, RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "Password123",
	}); !domain.IsAlreadyExists(err) {
		t.Fatalf("expected duplicate username error, got %v", err)
	}

	// Login ok
	result, err := s.Login(ctx, "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatalf("expected token on login")
	}
	if result.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %s", result.TokenType)
	}

	// Login by username
	if _, err := s.Login(ctx, "alice", "Password123"); err != nil {
		t.Fatalf("login by username failed: %v", err)
	}

	// Wrong password
	if _, err := s.Login(ctx, "alice@example.com", "Wrong"); err == nil {
		t.Fatalf("expected invalid credentials error")
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService()

	if _, err := s.Register(ctx, RegisterInput{Username: "x", Email: "x@example.com", Password: "short"}); !domain.IsValidation(err) {
		t.Fatalf("expected short password rejection, got %v", err)
	}
	if _, err := s.Register(ctx, RegisterInput{Username: "x", Email: "x@example.com", Password: "Password123", Role: "landlord"}); !domain.IsValidation(err) {
		t.Fatalf("expected invalid role rejection, got %v", err)
	}

	// Default role is tenant
	user, err := s.Register(ctx, RegisterInput{Username: "x", Email: "x@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != domain.RoleTenant {
		t.Fatalf("expected default tenant role, got %s", user.Role)
	}
}

func TestRegisterTenant(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService()

	owner := Actor{UserID: 1, Role: domain.RoleOwner}
	user, err := s.RegisterTenant(ctx, owner, RegisterInput{
		Username: "tina",
		Email:    "tina@example.com",
		Password: "Password123",
		Role:     "admin", // ignored
	})
	if err != nil {
		t.Fatalf("register tenant failed: %v", err)
	}
	if user.Role != domain.RoleTenant {
		t.Fatalf("expected tenant role regardless of request, got %s", user.Role)
	}

	tenant := Actor{UserID: user.ID, Role: domain.RoleTenant}
	if _, err := s.RegisterTenant(ctx, tenant, RegisterInput{
		Username: "other", Email: "other@example.com", Password: "Password123",
	}); !domain.IsForbidden(err) {
		t.Fatalf("expected tenant to be forbidden, got %v", err)
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestAuthService()

	user, err := s.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if _, err := s.Login(ctx, "bob@example.com", "Password123"); err == nil {
		t.Fatalf("expected deactivated account to be rejected")
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService()

	user, err := s.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "OldPass123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	actor := Actor{UserID: user.ID, Role: user.Role}

	// Wrong old password
	if err := s.ChangePassword(ctx, actor, "bad", "NewPass123"); err == nil {
		t.Fatalf("expected wrong old password error")
	}
	// Good change
	if err := s.ChangePassword(ctx, actor, "OldPass123", "NewPass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	// Old password should no longer work
	if _, err := s.Login(ctx, "bob@example.com", "OldPass123"); err == nil {
		t.Fatalf("expected old password to fail after change")
	}
	// New password works
	if _, err := s.Login(ctx, "bob@example.com", "NewPass123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
