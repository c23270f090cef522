package domain

import (
	"context"
	"time"
)

// Lease represents a time-bounded occupancy agreement between a tenant and a
// unit. A nil EndDate means the lease is open-ended. For a given unit, no two
// active leases may overlap in time.
type Lease struct {
	ID        int64
	UnitID    int64
	TenantID  int64
	StartDate time.Time
	EndDate   *time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined data, populated on reads
	Tenant *User
	Unit   *Unit
}

// Period formats the lease interval as "YYYY-MM-DD to YYYY-MM-DD" or
// "YYYY-MM-DD (ongoing)" for open-ended leases.
func (l *Lease) Period() string {
	return FormatPeriod(l.StartDate, l.EndDate)
}

// FormatPeriod renders a date interval for conflict messages
func FormatPeriod(start time.Time, end *time.Time) string {
	s := start.Format("2006-01-02")
	if end == nil {
		return s + " (ongoing)"
	}
	return s + " to " + end.Format("2006-01-02")
}

// LeaseRepository defines data access for leases
type LeaseRepository interface {
	Create(ctx context.Context, lease *Lease) error
	GetByID(ctx context.Context, id int64) (*Lease, error)
	// SetEnded sets the end date and marks the lease inactive
	SetEnded(ctx context.Context, id int64, endDate time.Time) error
	// SetActive marks the lease active again
	SetActive(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Lease, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]*Lease, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Lease, error)
	// FindActiveByUnit returns all active leases for a unit, used by the
	// overlap check before create and activate
	FindActiveByUnit(ctx context.Context, unitID int64) ([]*Lease, error)
}
