package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/security"
)

// UserService handles user management and profile operations
type UserService struct {
	userRepo domain.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{userRepo: userRepo, logger: logger}
}

// UpdateProfileInput carries updatable profile fields. Nil pointers leave the
// field unchanged.
type UpdateProfileInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

// Get returns a user by ID. Tenants may only read their own record.
func (s *UserService) Get(ctx context.Context, actor Actor, id int64) (*domain.User, error) {
	if actor.IsTenant() && actor.UserID != id {
		return nil, domain.Forbidden("not enough permissions")
	}
	return s.userRepo.GetByID(ctx, id)
}

// GetSelf returns the actor's own record
func (s *UserService) GetSelf(ctx context.Context, actor Actor) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, actor.UserID)
}

// List returns users, optionally filtered by role. Admins see everyone;
// owners see only their tenants.
func (s *UserService) List(ctx context.Context, actor Actor, role domain.Role) ([]*domain.User, error) {
	switch {
	case actor.IsAdmin():
		return s.userRepo.List(ctx, role)
	case actor.IsOwner():
		tenants, err := s.userRepo.ListTenantsForOwner(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if role == "" || role == domain.RoleTenant {
			return tenants, nil
		}
		return nil, nil
	default:
		return nil, domain.Forbidden("not enough permissions")
	}
}

// ListTenants returns the tenant accounts visible to the actor
func (s *UserService) ListTenants(ctx context.Context, actor Actor) ([]*domain.User, error) {
	if actor.IsAdmin() {
		return s.userRepo.List(ctx, domain.RoleTenant)
	}
	if actor.IsOwner() {
		return s.userRepo.ListTenantsForOwner(ctx, actor.UserID)
	}
	return nil, domain.Forbidden("not enough permissions")
}

// UpdateProfile updates the actor's own profile fields
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, in UpdateProfileInput) (*domain.User, error) {
	return s.update(ctx, actor.UserID, in)
}

// UpdateUser updates another user's profile fields. Admin only.
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, id int64, in UpdateProfileInput) (*domain.User, error) {
	if err := security.RequirePermission(actor.Role, security.PermManageUsers, s.logger); err != nil {
		return nil, err
	}
	return s.update(ctx, id, in)
}

func (s *UserService) update(ctx context.Context, id int64, in UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Email != nil && *in.Email != user.Email {
		if existing, err := s.userRepo.GetByEmail(ctx, *in.Email); err == nil && existing != nil {
			return nil, domain.AlreadyExists("email already registered")
		}
		user.Email = *in.Email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.Int64("user_id", user.ID))
	return user, nil
}

// Deactivate soft-deletes a user account. Admin only.
func (s *UserService) Deactivate(ctx context.Context, actor Actor, id int64) error {
	if err := security.RequirePermission(actor.Role, security.PermManageUsers, s.logger); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deactivated",
		slog.Int64("user_id", id),
		slog.Int64("actor_id", actor.UserID),
	)
	return nil
}
