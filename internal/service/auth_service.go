package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/security"
	"github.com/yourorg/rentease/internal/security/auth"
)

const tokenLifetime = 30 * time.Minute

// AuthService handles registration, login and credential changes
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo domain.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// RegisterInput carries the fields for a new account
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// LoginResult represents a successful login response
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
	User        *domain.User
}

// Register creates a new user account. The first registered user may take any
// role; subsequent admin registrations require an admin actor.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, domain.Validation("email, username, and password are required")
	}
	if len(in.Password) < 8 {
		return nil, domain.Validation("password must be at least 8 characters")
	}

	role := domain.Role(in.Role)
	if in.Role == "" {
		role = domain.RoleTenant
	}
	if !role.Valid() {
		return nil, domain.Validation("invalid role %q", in.Role)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, domain.AlreadyExists("email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil && existing != nil {
		return nil, domain.AlreadyExists("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, domain.Validation("failed to register user")
	}

	user := &domain.User{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: string(hash),
		Role:           role,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// RegisterTenant creates a tenant account on behalf of an admin or owner. The
// role is fixed regardless of what the request carries.
func (s *AuthService) RegisterTenant(ctx context.Context, actor Actor, in RegisterInput) (*domain.User, error) {
	if err := security.RequirePermission(actor.Role, security.PermManageTenants, s.logger); err != nil {
		return nil, err
	}
	in.Role = string(domain.RoleTenant)
	return s.Register(ctx, in)
}

// Login authenticates a user by email (or username) and password
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, domain.Validation("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, identifier)
	if err != nil {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil || user == nil {
		s.logger.Info("login attempt for unknown account", slog.String("identifier", identifier))
		return nil, domain.Unauthorized("invalid credentials")
	}

	if !user.IsActive {
		return nil, domain.Unauthorized("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.Int64("user_id", user.ID))
		return nil, domain.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role, tokenLifetime)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, domain.Unauthorized("failed to generate token")
	}

	s.logger.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(tokenLifetime.Seconds()),
		User:        user,
	}, nil
}

// ChangePassword changes the actor's own password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, actor Actor, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.Validation("new password must be at least 8 characters")
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(oldPassword)); err != nil {
		return domain.Unauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.String("error", err.Error()))
		return domain.Validation("failed to change password")
	}

	user.HashedPassword = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update password", slog.String("error", err.Error()))
		return err
	}

	s.logger.Info("user changed password", slog.Int64("user_id", actor.UserID))
	return nil
}
