package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/rentease/internal/domain"
)

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, first_name, last_name, username, email, hashed_password, role, is_active, profile_picture_id, created_at, COALESCE(updated_at, created_at)`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.Role,
		&user.IsActive,
		&user.ProfilePictureID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (first_name, last_name, username, email, hashed_password, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.Role,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if domainErr := translateConstraint(err, "user"); domainErr != nil {
			return domainErr
		}
		r.logger.Error("failed to create user",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("user %d not found", id)
		}
		r.logger.Error("failed to get user by id",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves an active user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = true`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves an active user by username
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND is_active = true`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// Update updates an existing user
func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, username = $3, email = $4,
		    hashed_password = $5, role = $6, is_active = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.Role,
		user.IsActive,
		user.ID,
	).Scan(&user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("user %d not found", user.ID)
		}
		if domainErr := translateConstraint(err, "user"); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// Delete soft-deletes a user (sets is_active to false)
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	query := `UPDATE users SET is_active = false, updated_at = now() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return domain.NotFound("user %d not found", id)
	}

	return nil
}

// List returns all active users, optionally restricted to a role
func (r *PostgresUserRepository) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = true`
	args := []any{}
	if role != "" {
		query += ` AND role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListTenantsForOwner returns tenants holding leases on units of properties
// owned by the given user
func (r *PostgresUserRepository) ListTenantsForOwner(ctx context.Context, ownerID int64) ([]*domain.User, error) {
	query := `
		SELECT DISTINCT u.id, u.first_name, u.last_name, u.username, u.email, u.hashed_password,
		       u.role, u.is_active, u.profile_picture_id, u.created_at, COALESCE(u.updated_at, u.created_at)
		FROM users u
		JOIN leases l ON l.tenant_id = u.id
		JOIN units un ON un.id = l.unit_id
		JOIN properties p ON p.id = un.property_id
		WHERE p.owner_id = $1 AND u.is_active = true
		ORDER BY u.id
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("failed to list tenants for owner",
			slog.Int64("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// SetProfilePicture points a user at a stored file (nil clears it)
func (r *PostgresUserRepository) SetProfilePicture(ctx context.Context, userID int64, fileID *int64) error {
	query := `UPDATE users SET profile_picture_id = $1, updated_at = now() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, fileID, userID)
	if err != nil {
		if domainErr := translateConstraint(err, "profile picture"); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to set profile picture: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("user %d not found", userID)
	}

	return nil
}

func collectUsers(rows *sql.Rows) ([]*domain.User, error) {
	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
