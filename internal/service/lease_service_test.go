package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/rentease/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

type leaseFixture struct {
	svc      *LeaseService
	leases   *memLeaseRepo
	units    *memUnitRepo
	unitID   int64
	tenantID int64
	admin    Actor
}

func newLeaseFixture(t *testing.T) *leaseFixture {
	t.Helper()

	users := newMemUserRepo()
	units := newMemUnitRepo()
	leases := newMemLeaseRepo(users)

	tenant := &domain.User{FirstName: "Tina", LastName: "Tenant", Username: "tina", Email: "tina@example.com", Role: domain.RoleTenant, IsActive: true}
	if err := users.Create(context.Background(), tenant); err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	unit := &domain.Unit{PropertyID: 1, Name: "Apt 1"}
	if err := units.Create(context.Background(), unit); err != nil {
		t.Fatalf("seed unit: %v", err)
	}

	return &leaseFixture{
		svc:      NewLeaseService(leases, units, users, nil, nil),
		leases:   leases,
		units:    units,
		unitID:   unit.ID,
		tenantID: tenant.ID,
		admin:    Actor{UserID: 99, Role: domain.RoleAdmin},
	}
}

func TestCreateLeaseRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t)

	_, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 1, 1),
		EndDate:   datePtr(2026, 6, 30),
	})
	if err != nil {
		t.Fatalf("first lease failed: %v", err)
	}

	cases := []struct {
		name  string
		start time.Time
		end   *time.Time
	}{
		{"contained", date(2026, 2, 1), datePtr(2026, 3, 1)},
		{"overlapping tail", date(2026, 6, 1), datePtr(2026, 12, 31)},
		{"covering", date(2025, 12, 1), datePtr(2027, 1, 1)},
		{"boundary touch", date(2026, 6, 30), datePtr(2026, 12, 31)},
		{"open-ended overlapping", date(2026, 3, 1), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
				UnitID:    f.unitID,
				TenantID:  f.tenantID,
				StartDate: tc.start,
				EndDate:   tc.end,
			})
			if !domain.IsBusinessRule(err) {
				t.Fatalf("expected overlap conflict, got %v", err)
			}
			if !strings.Contains(err.Error(), "already has an active lease") {
				t.Fatalf("unexpected conflict message: %v", err)
			}
		})
	}

	// A later non-overlapping period is fine
	if _, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 7, 1),
		EndDate:   datePtr(2026, 12, 31),
	}); err != nil {
		t.Fatalf("non-overlapping lease failed: %v", err)
	}
}

func TestCreateLeaseAgainstOpenEnded(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t)

	if _, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 3, 1),
	}); err != nil {
		t.Fatalf("open-ended lease failed: %v", err)
	}

	// Anything starting on or after the open-ended start conflicts
	if _, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2027, 1, 1),
		EndDate:   datePtr(2027, 12, 31),
	}); !domain.IsBusinessRule(err) {
		t.Fatalf("expected conflict with open-ended lease, got %v", err)
	} else if !strings.Contains(err.Error(), "(ongoing)") {
		t.Fatalf("conflict message should name the ongoing period: %v", err)
	}

	// Strictly before the open-ended start is allowed
	if _, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 1, 1),
		EndDate:   datePtr(2026, 2, 15),
	}); err != nil {
		t.Fatalf("lease before open-ended start failed: %v", err)
	}
}

func TestCreateLeaseValidation(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t)

	// End before start
	if _, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 6, 1),
		EndDate:   datePtr(2026, 1, 1),
	}); !domain.IsValidation(err) {
		t.Fatalf("expected end-before-start rejection, got %v", err)
	}

	// Unknown unit
	if _, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    999,
		TenantID:  f.tenantID,
		StartDate: date(2026, 1, 1),
	}); !domain.IsNotFound(err) {
		t.Fatalf("expected unit not found, got %v", err)
	}

	// Unknown tenant
	if _, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  999,
		StartDate: date(2026, 1, 1),
	}); !domain.IsNotFound(err) {
		t.Fatalf("expected tenant not found, got %v", err)
	}

	// Tenants cannot create leases
	tenantActor := Actor{UserID: f.tenantID, Role: domain.RoleTenant}
	if _, err := f.svc.Create(ctx, tenantActor, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 1, 1),
	}); err == nil {
		t.Fatalf("expected tenant to be forbidden")
	}
}

func TestEndLease(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t)

	lease, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 1, 1),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// End date before start is rejected
	if _, err := f.svc.End(ctx, f.admin, lease.ID, date(2025, 12, 31)); !domain.IsValidation(err) {
		t.Fatalf("expected end-before-start rejection, got %v", err)
	}

	ended, err := f.svc.End(ctx, f.admin, lease.ID, date(2026, 6, 30))
	if err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if ended.IsActive {
		t.Fatalf("expected lease to be inactive after end")
	}
	if ended.EndDate == nil || !ended.EndDate.Equal(date(2026, 6, 30)) {
		t.Fatalf("unexpected end date: %v", ended.EndDate)
	}
}

func TestActivateRechecksOverlap(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t)

	first, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 1, 1),
		EndDate:   datePtr(2026, 12, 31),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.svc.End(ctx, f.admin, first.ID, date(2026, 3, 31)); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	// Another lease takes over part of the original period
	if _, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 4, 1),
		EndDate:   datePtr(2026, 12, 31),
	}); err != nil {
		t.Fatalf("replacement lease failed: %v", err)
	}

	// Reactivation must fail: the ended lease now spans 2026-01-01..2026-03-31,
	// which does not collide, so it succeeds
	reactivated, err := f.svc.Activate(ctx, f.admin, first.ID)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if !reactivated.IsActive {
		t.Fatalf("expected lease active after activation")
	}

	// Ending the replacement and widening the window: reactivating a lease
	// whose period collides with an active one is rejected
	if _, err := f.svc.End(ctx, f.admin, first.ID, date(2026, 12, 31)); err != nil {
		t.Fatalf("re-end failed: %v", err)
	}
	if _, err := f.svc.Activate(ctx, f.admin, first.ID); !domain.IsBusinessRule(err) {
		t.Fatalf("expected overlap conflict on reactivation, got %v", err)
	}
}

func TestActivateIsIdempotentForActiveLease(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t)

	lease, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 1, 1),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	again, err := f.svc.Activate(ctx, f.admin, lease.ID)
	if err != nil {
		t.Fatalf("activate on active lease failed: %v", err)
	}
	if !again.IsActive {
		t.Fatalf("expected lease to remain active")
	}
}

func TestTenantSeesOnlyOwnLeases(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t)

	lease, err := f.svc.Create(ctx, f.admin, CreateLeaseInput{
		UnitID:    f.unitID,
		TenantID:  f.tenantID,
		StartDate: date(2026, 1, 1),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	owner := Actor{UserID: f.tenantID, Role: domain.RoleTenant}
	if _, err := f.svc.Get(ctx, owner, lease.ID); err != nil {
		t.Fatalf("tenant should read own lease: %v", err)
	}

	stranger := Actor{UserID: 12345, Role: domain.RoleTenant}
	if _, err := f.svc.Get(ctx, stranger, lease.ID); err == nil {
		t.Fatalf("expected foreign tenant to be forbidden")
	}
}
