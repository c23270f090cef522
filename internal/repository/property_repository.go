package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/rentease/internal/domain"
)

// PostgresPropertyRepository implements domain.PropertyRepository using PostgreSQL
type PostgresPropertyRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPropertyRepository creates a new property repository
func NewPostgresPropertyRepository(db *sql.DB, logger *slog.Logger) *PostgresPropertyRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPropertyRepository{
		db:     db,
		logger: logger,
	}
}

const propertyColumns = `id, title, description, address, price, owner_id, created_at, COALESCE(updated_at, created_at)`

func scanProperty(row interface{ Scan(...any) error }) (*domain.Property, error) {
	p := &domain.Property{}
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Address,
		&p.Price,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create creates a new property
func (r *PostgresPropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	query := `
		INSERT INTO properties (title, description, address, price, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		property.Title,
		property.Description,
		property.Address,
		property.Price,
		property.OwnerID,
	).Scan(&property.ID, &property.CreatedAt, &property.UpdatedAt)

	if err != nil {
		if domainErr := translateConstraint(err, "property"); domainErr != nil {
			return domainErr
		}
		r.logger.Error("failed to create property",
			slog.String("title", property.Title),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create property: %w", err)
	}

	return nil
}

// GetByID retrieves a property by ID
func (r *PostgresPropertyRepository) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	property, err := scanProperty(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("property %d not found", id)
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return property, nil
}

// Update updates an existing property
func (r *PostgresPropertyRepository) Update(ctx context.Context, property *domain.Property) error {
	query := `
		UPDATE properties
		SET title = $1, description = $2, address = $3, price = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		property.Title,
		property.Description,
		property.Address,
		property.Price,
		property.ID,
	).Scan(&property.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("property %d not found", property.ID)
		}
		return fmt.Errorf("failed to update property: %w", err)
	}

	return nil
}

// Delete removes a property and, via cascade, its units
func (r *PostgresPropertyRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("property %d not found", id)
	}

	return nil
}

// List returns all properties
func (r *PostgresPropertyRepository) List(ctx context.Context) ([]*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list properties", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

// ListByOwner returns all properties owned by a user
func (r *PostgresPropertyRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("failed to list properties by owner",
			slog.Int64("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

func collectProperties(rows *sql.Rows) ([]*domain.Property, error) {
	var properties []*domain.Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, property)
	}
	return properties, rows.Err()
}
