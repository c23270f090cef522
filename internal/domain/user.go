package domain

import (
	"context"
	"time"
)

// Role is a user's role in the system
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
	RoleTenant Role = "tenant"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleTenant:
		return true
	}
	return false
}

// User represents a system user (admin, property owner, or tenant)
type User struct {
	ID               int64
	FirstName        string
	LastName         string
	Username         string // Unique username
	Email            string // Unique email address
	HashedPassword   string // Bcrypt hashed password (not returned in API)
	Role             Role
	IsActive         bool
	ProfilePictureID *int64 // File ID of the profile picture, if set
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, role Role) ([]*User, error)
	ListTenantsForOwner(ctx context.Context, ownerID int64) ([]*User, error)
	SetProfilePicture(ctx context.Context, userID int64, fileID *int64) error
}
