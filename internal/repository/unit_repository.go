package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/rentease/internal/domain"
)

// PostgresUnitRepository implements domain.UnitRepository using PostgreSQL
type PostgresUnitRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUnitRepository creates a new unit repository
func NewPostgresUnitRepository(db *sql.DB, logger *slog.Logger) *PostgresUnitRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUnitRepository{
		db:     db,
		logger: logger,
	}
}

const unitColumns = `id, property_id, name, COALESCE(description, ''), monthly_rent`

func scanUnit(row interface{ Scan(...any) error }) (*domain.Unit, error) {
	u := &domain.Unit{}
	err := row.Scan(&u.ID, &u.PropertyID, &u.Name, &u.Description, &u.MonthlyRent)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create creates a new unit. Unit names are unique per property.
func (r *PostgresUnitRepository) Create(ctx context.Context, unit *domain.Unit) error {
	query := `
		INSERT INTO units (property_id, name, description, monthly_rent)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		unit.PropertyID,
		unit.Name,
		unit.Description,
		unit.MonthlyRent,
	).Scan(&unit.ID)

	if err != nil {
		if domainErr := translateConstraint(err, "unit"); domainErr != nil {
			return domainErr
		}
		r.logger.Error("failed to create unit",
			slog.Int64("property_id", unit.PropertyID),
			slog.String("name", unit.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create unit: %w", err)
	}

	return nil
}

// GetByID retrieves a unit by ID
func (r *PostgresUnitRepository) GetByID(ctx context.Context, id int64) (*domain.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1`

	unit, err := scanUnit(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("unit %d not found", id)
		}
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}

	return unit, nil
}

// Update updates an existing unit
func (r *PostgresUnitRepository) Update(ctx context.Context, unit *domain.Unit) error {
	query := `
		UPDATE units
		SET name = $1, description = $2, monthly_rent = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, unit.Name, unit.Description, unit.MonthlyRent, unit.ID)
	if err != nil {
		if domainErr := translateConstraint(err, "unit"); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to update unit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("unit %d not found", unit.ID)
	}

	return nil
}

// Delete removes a unit
func (r *PostgresUnitRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("unit %d not found", id)
	}

	return nil
}

// ListByProperty returns all units of a property
func (r *PostgresUnitRepository) ListByProperty(ctx context.Context, propertyID int64) ([]*domain.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE property_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		r.logger.Error("failed to list units",
			slog.Int64("property_id", propertyID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var units []*domain.Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}
