package service

import "github.com/yourorg/rentease/internal/domain"

// Actor identifies the authenticated caller for role-scoped operations.
// Handlers build it from the JWT claims.
type Actor struct {
	UserID int64
	Role   domain.Role
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// IsOwner reports whether the actor has the owner role
func (a Actor) IsOwner() bool {
	return a.Role == domain.RoleOwner
}

// IsTenant reports whether the actor has the tenant role
func (a Actor) IsTenant() bool {
	return a.Role == domain.RoleTenant
}
