package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the cadence of a recurring payment series
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Valid reports whether the frequency is one of the known cadences
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Months returns the period length in months (12 for yearly)
func (f Frequency) Months() int {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	default:
		return 1
	}
}

// Payment status values derived from is_paid and due_date
const (
	PaymentStatusPaid    = "Paid"
	PaymentStatusOverdue = "Overdue"
	PaymentStatusPending = "Pending"
)

// Payment represents a single payment record. LeaseID is nil for payments not
// tied to a lease; InvoiceFileID is nil until an invoice file is attached.
type Payment struct {
	ID            int64
	DocumentType  string // 'Rent Invoice', 'Security Deposit', 'Maintenance Fee', 'Other'
	GrossValue    decimal.Decimal
	DueDate       time.Time
	Receiver      string // Name or email of payment receiver
	Description   string
	IsPaid        bool
	InvoiceFileID *int64
	LeaseID       *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Status derives the payment status as of the given day
func (p *Payment) Status(today time.Time) string {
	if p.IsPaid {
		return PaymentStatusPaid
	}
	if p.DueDate.Before(today.Truncate(24 * time.Hour)) {
		return PaymentStatusOverdue
	}
	return PaymentStatusPending
}

// PaymentStatistics summarizes payment counts by status
type PaymentStatistics struct {
	TotalPayments int `json:"total_payments"`
	PaidCount     int `json:"paid_count"`
	PendingCount  int `json:"pending_count"`
	OverdueCount  int `json:"overdue_count"`
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	IsPaid   *bool
	LeaseID  *int64
	TenantID *int64
	// OwnerID restricts results to payments on leases of units whose
	// property belongs to this owner
	OwnerID *int64
	Limit   int
	Offset  int
}

// PaymentRepository defines data access for payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	// CreateBatch inserts all payments in a single transaction; either every
	// row is written or none are
	CreateBatch(ctx context.Context, payments []*Payment) error
	GetByID(ctx context.Context, id int64) (*Payment, error)
	Update(ctx context.Context, payment *Payment) error
	SetPaid(ctx context.Context, id int64, isPaid bool) (*Payment, error)
	AttachInvoice(ctx context.Context, id int64, fileID int64) (*Payment, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter PaymentFilter) ([]*Payment, error)
	ListOverdue(ctx context.Context, asOf time.Time, ownerID *int64) ([]*Payment, error)
	CountByStatus(ctx context.Context, ownerID *int64) (total, paid int, err error)
}
