package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/notify"
	"github.com/yourorg/rentease/internal/observability/metrics"
	"github.com/yourorg/rentease/internal/schedule"
	"github.com/yourorg/rentease/internal/security"
)

// LeaseService handles lease lifecycle: create, end, reactivate. A unit can
// never hold two active leases with overlapping periods.
type LeaseService struct {
	leaseRepo domain.LeaseRepository
	unitRepo  domain.UnitRepository
	userRepo  domain.UserRepository
	hub       *notify.Hub
	logger    *slog.Logger
	now       func() time.Time
}

// NewLeaseService creates a new lease service
func NewLeaseService(
	leaseRepo domain.LeaseRepository,
	unitRepo domain.UnitRepository,
	userRepo domain.UserRepository,
	hub *notify.Hub,
	logger *slog.Logger,
) *LeaseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaseService{
		leaseRepo: leaseRepo,
		unitRepo:  unitRepo,
		userRepo:  userRepo,
		hub:       hub,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateLeaseInput carries the fields for a new lease
type CreateLeaseInput struct {
	UnitID    int64      `json:"unit_id"`
	TenantID  int64      `json:"tenant_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// Create establishes a new active lease after verifying the unit and tenant
// exist, the period is well-formed, and no active lease on the unit overlaps.
func (s *LeaseService) Create(ctx context.Context, actor Actor, in CreateLeaseInput) (*domain.Lease, error) {
	if err := security.RequirePermission(actor.Role, security.PermCreateLease, s.logger); err != nil {
		return nil, err
	}
	if in.UnitID == 0 || in.TenantID == 0 {
		return nil, domain.Validation("unit_id and tenant_id are required")
	}
	if in.StartDate.IsZero() {
		return nil, domain.Validation("start_date is required")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, domain.Validation("end_date cannot be before start_date")
	}

	if _, err := s.unitRepo.GetByID(ctx, in.UnitID); err != nil {
		return nil, err
	}

	tenant, err := s.userRepo.GetByID(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Role != domain.RoleTenant {
		return nil, domain.Validation("user %d is not a tenant", in.TenantID)
	}

	if err := s.checkOverlap(ctx, in.UnitID, in.StartDate, in.EndDate, 0); err != nil {
		metrics.ObserveLeaseOperation("create", "conflict")
		return nil, err
	}

	lease := &domain.Lease{
		UnitID:    in.UnitID,
		TenantID:  in.TenantID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		IsActive:  true,
	}

	if err := s.leaseRepo.Create(ctx, lease); err != nil {
		metrics.ObserveLeaseOperation("create", "error")
		return nil, err
	}

	metrics.ObserveLeaseOperation("create", "success")
	s.hub.Publish("lease.created", lease.ID,
		fmt.Sprintf("Lease created for unit %d, period %s", lease.UnitID, lease.Period()))
	s.logger.Info("lease created",
		slog.Int64("lease_id", lease.ID),
		slog.Int64("unit_id", lease.UnitID),
		slog.Int64("tenant_id", lease.TenantID),
		slog.String("period", lease.Period()),
	)

	return s.leaseRepo.GetByID(ctx, lease.ID)
}

// Get returns a lease by ID with tenant and unit joined. Tenants may only
// read their own leases.
func (s *LeaseService) Get(ctx context.Context, actor Actor, id int64) (*domain.Lease, error) {
	lease, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsTenant() && lease.TenantID != actor.UserID {
		return nil, domain.Forbidden("not enough permissions")
	}
	return lease, nil
}

// List returns leases visible to the actor: admins see all, owners see leases
// on their properties, tenants see their own.
func (s *LeaseService) List(ctx context.Context, actor Actor) ([]*domain.Lease, error) {
	switch {
	case actor.IsAdmin():
		return s.leaseRepo.List(ctx)
	case actor.IsOwner():
		return s.leaseRepo.ListByOwner(ctx, actor.UserID)
	default:
		return s.leaseRepo.ListByTenant(ctx, actor.UserID)
	}
}

// ListForTenant returns the leases held by a specific tenant. Tenants may
// only list their own.
func (s *LeaseService) ListForTenant(ctx context.Context, actor Actor, tenantID int64) ([]*domain.Lease, error) {
	if actor.IsTenant() && actor.UserID != tenantID {
		return nil, domain.Forbidden("not enough permissions")
	}
	return s.leaseRepo.ListByTenant(ctx, tenantID)
}

// End terminates a lease on the given date. The end date must not precede the
// lease start.
func (s *LeaseService) End(ctx context.Context, actor Actor, id int64, endDate time.Time) (*domain.Lease, error) {
	if err := security.RequirePermission(actor.Role, security.PermEndLease, s.logger); err != nil {
		return nil, err
	}

	lease, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if endDate.IsZero() {
		endDate = s.now().Truncate(24 * time.Hour)
	}
	if endDate.Before(lease.StartDate) {
		return nil, domain.Validation("end_date cannot be before start_date")
	}

	if err := s.leaseRepo.SetEnded(ctx, id, endDate); err != nil {
		metrics.ObserveLeaseOperation("end", "error")
		return nil, err
	}

	metrics.ObserveLeaseOperation("end", "success")
	s.hub.Publish("lease.ended", id,
		fmt.Sprintf("Lease %d ended on %s", id, endDate.Format("2006-01-02")))
	s.logger.Info("lease ended",
		slog.Int64("lease_id", id),
		slog.String("end_date", endDate.Format("2006-01-02")),
	)

	return s.leaseRepo.GetByID(ctx, id)
}

// Activate reinstates an ended lease. The overlap check runs again: another
// lease may have taken the period while this one was inactive.
func (s *LeaseService) Activate(ctx context.Context, actor Actor, id int64) (*domain.Lease, error) {
	if err := security.RequirePermission(actor.Role, security.PermEndLease, s.logger); err != nil {
		return nil, err
	}

	lease, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lease.IsActive {
		return lease, nil
	}

	if err := s.checkOverlap(ctx, lease.UnitID, lease.StartDate, lease.EndDate, lease.ID); err != nil {
		metrics.ObserveLeaseOperation("activate", "conflict")
		return nil, err
	}

	if err := s.leaseRepo.SetActive(ctx, id); err != nil {
		metrics.ObserveLeaseOperation("activate", "error")
		return nil, err
	}

	metrics.ObserveLeaseOperation("activate", "success")
	s.hub.Publish("lease.activated", id, fmt.Sprintf("Lease %d reactivated", id))
	s.logger.Info("lease activated", slog.Int64("lease_id", id))

	return s.leaseRepo.GetByID(ctx, id)
}

// checkOverlap rejects the period if any active lease on the unit overlaps it.
// excludeID skips the lease being reactivated.
func (s *LeaseService) checkOverlap(ctx context.Context, unitID int64, start time.Time, end *time.Time, excludeID int64) error {
	active, err := s.leaseRepo.FindActiveByUnit(ctx, unitID)
	if err != nil {
		return err
	}
	for _, existing := range active {
		if existing.ID == excludeID {
			continue
		}
		if schedule.Overlaps(existing.StartDate, existing.EndDate, start, end) {
			return domain.BusinessRuleViolation(
				"Cannot create lease for period %s. This unit already has an active lease for period %s.",
				domain.FormatPeriod(start, end), existing.Period(),
			)
		}
	}
	return nil
}
