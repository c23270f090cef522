package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/rentease/internal/domain"
)

// PostgresLeaseRepository implements domain.LeaseRepository using PostgreSQL
type PostgresLeaseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresLeaseRepository creates a new lease repository
func NewPostgresLeaseRepository(db *sql.DB, logger *slog.Logger) *PostgresLeaseRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLeaseRepository{
		db:     db,
		logger: logger,
	}
}

// leaseSelect joins the tenant user and the unit so responses carry the
// related data the API exposes alongside each lease
const leaseSelect = `
	SELECT l.id, l.unit_id, l.tenant_id, l.start_date, l.end_date, l.is_active,
	       l.created_at, COALESCE(l.updated_at, l.created_at),
	       u.id, u.first_name, u.last_name, u.email, u.username, u.profile_picture_id,
	       un.id, un.property_id, un.name, COALESCE(un.description, ''), un.monthly_rent
	FROM leases l
	JOIN users u ON u.id = l.tenant_id
	JOIN units un ON un.id = l.unit_id
`

func scanLease(row interface{ Scan(...any) error }) (*domain.Lease, error) {
	lease := &domain.Lease{Tenant: &domain.User{}, Unit: &domain.Unit{}}
	err := row.Scan(
		&lease.ID,
		&lease.UnitID,
		&lease.TenantID,
		&lease.StartDate,
		&lease.EndDate,
		&lease.IsActive,
		&lease.CreatedAt,
		&lease.UpdatedAt,
		&lease.Tenant.ID,
		&lease.Tenant.FirstName,
		&lease.Tenant.LastName,
		&lease.Tenant.Email,
		&lease.Tenant.Username,
		&lease.Tenant.ProfilePictureID,
		&lease.Unit.ID,
		&lease.Unit.PropertyID,
		&lease.Unit.Name,
		&lease.Unit.Description,
		&lease.Unit.MonthlyRent,
	)
	if err != nil {
		return nil, err
	}
	return lease, nil
}

// Create inserts a new active lease. The overlap check runs in the service
// layer before this call; the schema's exclusion constraint backs it up, so a
// concurrent conflicting insert still fails here instead of committing.
func (r *PostgresLeaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	query := `
		INSERT INTO leases (unit_id, tenant_id, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, created_at, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		lease.UnitID,
		lease.TenantID,
		lease.StartDate,
		lease.EndDate,
	).Scan(&lease.ID, &lease.CreatedAt, &lease.UpdatedAt)

	if err != nil {
		if domainErr := translateConstraint(err, "lease"); domainErr != nil {
			return domainErr
		}
		r.logger.Error("failed to create lease",
			slog.Int64("unit_id", lease.UnitID),
			slog.Int64("tenant_id", lease.TenantID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create lease: %w", err)
	}

	lease.IsActive = true
	return nil
}

// GetByID retrieves a lease with its tenant and unit
func (r *PostgresLeaseRepository) GetByID(ctx context.Context, id int64) (*domain.Lease, error) {
	lease, err := scanLease(r.db.QueryRowContext(ctx, leaseSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("lease %d not found", id)
		}
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	return lease, nil
}

// SetEnded sets the end date and marks the lease inactive
func (r *PostgresLeaseRepository) SetEnded(ctx context.Context, id int64, endDate time.Time) error {
	query := `UPDATE leases SET end_date = $1, is_active = false, updated_at = now() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, endDate, id)
	if err != nil {
		return fmt.Errorf("failed to end lease: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("lease %d not found", id)
	}

	return nil
}

// SetActive marks a lease active again
func (r *PostgresLeaseRepository) SetActive(ctx context.Context, id int64) error {
	query := `UPDATE leases SET is_active = true, updated_at = now() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if domainErr := translateConstraint(err, "lease"); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to activate lease: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("lease %d not found", id)
	}

	return nil
}

// List returns all leases
func (r *PostgresLeaseRepository) List(ctx context.Context) ([]*domain.Lease, error) {
	rows, err := r.db.QueryContext(ctx, leaseSelect+` ORDER BY l.start_date DESC`)
	if err != nil {
		r.logger.Error("failed to list leases", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}
	defer rows.Close()

	return collectLeases(rows)
}

// ListByTenant returns all leases held by a tenant
func (r *PostgresLeaseRepository) ListByTenant(ctx context.Context, tenantID int64) ([]*domain.Lease, error) {
	rows, err := r.db.QueryContext(ctx, leaseSelect+` WHERE l.tenant_id = $1 ORDER BY l.start_date DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leases for tenant: %w", err)
	}
	defer rows.Close()

	return collectLeases(rows)
}

// ListByOwner returns leases on units of properties owned by the given user
func (r *PostgresLeaseRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Lease, error) {
	query := leaseSelect + `
	JOIN properties p ON p.id = un.property_id
	WHERE p.owner_id = $1
	ORDER BY l.start_date DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leases for owner: %w", err)
	}
	defer rows.Close()

	return collectLeases(rows)
}

// FindActiveByUnit returns all active leases for a unit
func (r *PostgresLeaseRepository) FindActiveByUnit(ctx context.Context, unitID int64) ([]*domain.Lease, error) {
	rows, err := r.db.QueryContext(ctx, leaseSelect+` WHERE l.unit_id = $1 AND l.is_active = true`, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to find active leases: %w", err)
	}
	defer rows.Close()

	return collectLeases(rows)
}

func collectLeases(rows *sql.Rows) ([]*domain.Lease, error) {
	var leases []*domain.Lease
	for rows.Next() {
		lease, err := scanLease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lease: %w", err)
		}
		leases = append(leases, lease)
	}
	return leases, rows.Err()
}
