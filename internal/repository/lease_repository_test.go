package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/yourorg/rentease/internal/domain"
)

var leaseRowColumns = []string{
	"id", "unit_id", "tenant_id", "start_date", "end_date", "is_active",
	"created_at", "updated_at",
	"u_id", "first_name", "last_name", "email", "username", "profile_picture_id",
	"un_id", "property_id", "name", "description", "monthly_rent",
}

func newLeaseRepo(t *testing.T) (*PostgresLeaseRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresLeaseRepository(db, nil), mock
}

func TestCreateLeasePopulatesID(t *testing.T) {
	repo, mock := newLeaseRepo(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO leases`).
		WithArgs(int64(1), int64(2), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "created_at"}).
			AddRow(int64(10), now, now))

	lease := &domain.Lease{
		UnitID:    1,
		TenantID:  2,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(context.Background(), lease); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if lease.ID != 10 || !lease.IsActive {
		t.Fatalf("lease not populated: id=%d active=%v", lease.ID, lease.IsActive)
	}
}

// The schema carries an exclusion constraint on active lease periods per unit,
// so a concurrent conflicting insert fails in the database even after the
// service-level check passed.
func TestCreateLeaseExclusionViolation(t *testing.T) {
	repo, mock := newLeaseRepo(t)

	mock.ExpectQuery(`INSERT INTO leases`).
		WillReturnError(&pq.Error{Code: pqExclusionViolation})

	lease := &domain.Lease{
		UnitID:    1,
		TenantID:  2,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(context.Background(), lease); !domain.IsBusinessRule(err) {
		t.Fatalf("expected business rule violation, got %v", err)
	}
}

func TestActivateLeaseExclusionViolation(t *testing.T) {
	repo, mock := newLeaseRepo(t)

	mock.ExpectExec(`UPDATE leases SET is_active = true`).
		WithArgs(int64(3)).
		WillReturnError(&pq.Error{Code: pqExclusionViolation})

	if err := repo.SetActive(context.Background(), 3); !domain.IsBusinessRule(err) {
		t.Fatalf("expected business rule violation, got %v", err)
	}
}

func TestSetEndedNotFound(t *testing.T) {
	repo, mock := newLeaseRepo(t)

	mock.ExpectExec(`UPDATE leases SET end_date = \$1`).
		WithArgs(sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetEnded(context.Background(), 42, time.Now()); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindActiveByUnitScansJoinedRows(t *testing.T) {
	repo, mock := newLeaseRepo(t)

	now := time.Now()
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM leases l`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(leaseRowColumns).
			AddRow(
				int64(10), int64(1), int64(2),
				time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end, true,
				now, now,
				int64(2), "Tina", "Tenant", "tina@example.com", "tina", nil,
				int64(1), int64(4), "Apt 1", "", "1200.00",
			))

	leases, err := repo.FindActiveByUnit(context.Background(), 1)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(leases) != 1 {
		t.Fatalf("expected one lease, got %d", len(leases))
	}
	lease := leases[0]
	if lease.Tenant == nil || lease.Tenant.FullName() != "Tina Tenant" {
		t.Fatalf("tenant not joined: %+v", lease.Tenant)
	}
	if lease.Unit == nil || lease.Unit.Name != "Apt 1" {
		t.Fatalf("unit not joined: %+v", lease.Unit)
	}
	if lease.EndDate == nil || !lease.EndDate.Equal(end) {
		t.Fatalf("unexpected end date: %v", lease.EndDate)
	}
}

func TestGetLeaseNotFound(t *testing.T) {
	repo, mock := newLeaseRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM leases l`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(leaseRowColumns))

	if _, err := repo.GetByID(context.Background(), 42); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
