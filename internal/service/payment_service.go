package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/notify"
	"github.com/yourorg/rentease/internal/observability/metrics"
	"github.com/yourorg/rentease/internal/schedule"
	"github.com/yourorg/rentease/internal/security"
)

// Accepted payment document types
var documentTypes = map[string]bool{
	"Rent Invoice":     true,
	"Security Deposit": true,
	"Maintenance Fee":  true,
	"Other":            true,
}

// PaymentService handles payment CRUD, recurring generation and statistics
type PaymentService struct {
	paymentRepo domain.PaymentRepository
	leaseRepo   domain.LeaseRepository
	fileRepo    domain.FileRepository
	stats       *StatsCache
	hub         *notify.Hub
	logger      *slog.Logger
	now         func() time.Time
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo domain.PaymentRepository,
	leaseRepo domain.LeaseRepository,
	fileRepo domain.FileRepository,
	stats *StatsCache,
	hub *notify.Hub,
	logger *slog.Logger,
) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		leaseRepo:   leaseRepo,
		fileRepo:    fileRepo,
		stats:       stats,
		hub:         hub,
		logger:      logger,
		now:         time.Now,
	}
}

// PaymentInput carries the fields for a single payment
type PaymentInput struct {
	DocumentType string          `json:"document_type"`
	GrossValue   decimal.Decimal `json:"gross_value"`
	DueDate      time.Time       `json:"due_date"`
	Receiver     string          `json:"receiver"`
	Description  string          `json:"description"`
	LeaseID      *int64          `json:"lease_id"`
}

// RecurringInput carries the parameters for generating a payment series
type RecurringInput struct {
	LeaseID      int64           `json:"lease_id"`
	Frequency    string          `json:"frequency"`
	DueDay       int             `json:"due_day"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	DocumentType string          `json:"document_type"`
	Description  string          `json:"description"`
}

// RecurringResult summarizes a generated payment series
type RecurringResult struct {
	Count    int               `json:"count"`
	Payments []*domain.Payment `json:"payments"`
}

// Create records a single payment. Lease-linked payments validate the lease
// exists.
func (s *PaymentService) Create(ctx context.Context, actor Actor, in PaymentInput) (*domain.Payment, error) {
	if err := security.RequirePermission(actor.Role, security.PermCreatePayment, s.logger); err != nil {
		return nil, err
	}
	if err := validatePaymentInput(in); err != nil {
		return nil, err
	}

	if in.LeaseID != nil {
		if _, err := s.leaseRepo.GetByID(ctx, *in.LeaseID); err != nil {
			return nil, err
		}
	}

	payment := &domain.Payment{
		DocumentType: in.DocumentType,
		GrossValue:   in.GrossValue,
		DueDate:      in.DueDate,
		Receiver:     in.Receiver,
		Description:  in.Description,
		LeaseID:      in.LeaseID,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx, "stats:all")
	s.hub.Publish("payment.created", payment.ID,
		fmt.Sprintf("Payment of %s due %s", payment.GrossValue.StringFixed(2), payment.DueDate.Format("2006-01-02")))
	s.logger.Info("payment created",
		slog.Int64("payment_id", payment.ID),
		slog.String("gross_value", payment.GrossValue.String()),
	)

	return payment, nil
}

// CreateRecurring generates a payment series for an active lease. The lease's
// gross amount is split evenly across the schedule, with the last installment
// absorbing any rounding remainder. All rows are written in one transaction.
func (s *PaymentService) CreateRecurring(ctx context.Context, actor Actor, in RecurringInput) (*RecurringResult, error) {
	if err := security.RequirePermission(actor.Role, security.PermCreatePayment, s.logger); err != nil {
		return nil, err
	}

	freq := domain.Frequency(in.Frequency)
	if !freq.Valid() {
		return nil, domain.Validation("invalid frequency %q", in.Frequency)
	}
	if in.DueDay < 1 || in.DueDay > 31 {
		return nil, domain.Validation("due_day must be between 1 and 31")
	}
	if !in.TotalAmount.IsPositive() {
		return nil, domain.Validation("total_amount must be positive")
	}
	if in.DocumentType == "" {
		in.DocumentType = "Rent Invoice"
	}
	if !documentTypes[in.DocumentType] {
		return nil, domain.Validation("invalid document_type %q", in.DocumentType)
	}

	lease, err := s.leaseRepo.GetByID(ctx, in.LeaseID)
	if err != nil {
		return nil, err
	}
	if !lease.IsActive {
		return nil, domain.Validation("cannot generate payments for an inactive lease")
	}

	// Open-ended leases get a one-year horizon from today
	end := s.now().Truncate(24 * time.Hour).AddDate(1, 0, 0)
	if lease.EndDate != nil {
		end = *lease.EndDate
	}

	dates := schedule.Dates(lease.StartDate, end, freq, in.DueDay)
	if len(dates) == 0 {
		return nil, domain.Validation("no payment dates could be generated for the lease period")
	}

	amounts := schedule.Allocate(in.TotalAmount, len(dates))

	receiver := ""
	if lease.Tenant != nil {
		receiver = lease.Tenant.FullName()
	}
	description := in.Description
	if description == "" {
		description = titleCase(in.Frequency) + " payment"
	}

	leaseID := lease.ID
	payments := make([]*domain.Payment, len(dates))
	for i, due := range dates {
		payments[i] = &domain.Payment{
			DocumentType: in.DocumentType,
			GrossValue:   amounts[i],
			DueDate:      due,
			Receiver:     receiver,
			Description:  description,
			LeaseID:      &leaseID,
		}
	}

	if err := s.paymentRepo.CreateBatch(ctx, payments); err != nil {
		return nil, err
	}

	metrics.ObservePaymentsGenerated(string(freq), len(payments))
	s.stats.Invalidate(ctx, "stats:all")
	s.hub.Publish("payments.generated", lease.ID,
		fmt.Sprintf("Generated %d %s payments for lease %d", len(payments), in.Frequency, lease.ID))
	s.logger.Info("recurring payments generated",
		slog.Int64("lease_id", lease.ID),
		slog.String("frequency", in.Frequency),
		slog.Int("count", len(payments)),
	)

	return &RecurringResult{Count: len(payments), Payments: payments}, nil
}

// Get returns a payment by ID. Tenants may only read payments on their own
// leases.
func (s *PaymentService) Get(ctx context.Context, actor Actor, id int64) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsTenant() {
		if err := s.requireTenantPayment(ctx, actor, payment); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

// List returns payments matching the filter, scoped to the actor's role
func (s *PaymentService) List(ctx context.Context, actor Actor, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	switch {
	case actor.IsTenant():
		filter.TenantID = &actor.UserID
		filter.OwnerID = nil
	case actor.IsOwner():
		filter.OwnerID = &actor.UserID
	}
	return s.paymentRepo.List(ctx, filter)
}

// Update modifies a payment's editable fields
func (s *PaymentService) Update(ctx context.Context, actor Actor, id int64, in PaymentInput) (*domain.Payment, error) {
	if actor.IsTenant() {
		return nil, domain.Forbidden("not enough permissions")
	}

	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.DocumentType != "" {
		if !documentTypes[in.DocumentType] {
			return nil, domain.Validation("invalid document_type %q", in.DocumentType)
		}
		payment.DocumentType = in.DocumentType
	}
	if !in.GrossValue.IsZero() {
		if in.GrossValue.IsNegative() {
			return nil, domain.Validation("gross_value cannot be negative")
		}
		payment.GrossValue = in.GrossValue
	}
	if !in.DueDate.IsZero() {
		payment.DueDate = in.DueDate
	}
	if in.Receiver != "" {
		payment.Receiver = in.Receiver
	}
	if in.Description != "" {
		payment.Description = in.Description
	}

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx, "stats:all")
	return payment, nil
}

// SetPaid marks a payment paid or unpaid
func (s *PaymentService) SetPaid(ctx context.Context, actor Actor, id int64, isPaid bool) (*domain.Payment, error) {
	if actor.IsTenant() {
		return nil, domain.Forbidden("not enough permissions")
	}

	payment, err := s.paymentRepo.SetPaid(ctx, id, isPaid)
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx, "stats:all")
	if isPaid {
		s.hub.Publish("payment.paid", payment.ID,
			fmt.Sprintf("Payment %d marked as paid", payment.ID))
	}
	return payment, nil
}

// AttachInvoice links an uploaded file to a payment as its invoice
func (s *PaymentService) AttachInvoice(ctx context.Context, actor Actor, id, fileID int64) (*domain.Payment, error) {
	if actor.IsTenant() {
		return nil, domain.Forbidden("not enough permissions")
	}

	if _, err := s.fileRepo.GetByID(ctx, fileID); err != nil {
		return nil, err
	}

	return s.paymentRepo.AttachInvoice(ctx, id, fileID)
}

// Delete removes a payment
func (s *PaymentService) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := security.RequirePermission(actor.Role, security.PermDeletePayment, s.logger); err != nil {
		return err
	}
	if _, err := s.paymentRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.paymentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.stats.Invalidate(ctx, "stats:all")
	s.logger.Info("payment deleted",
		slog.Int64("payment_id", id),
		slog.Int64("actor_id", actor.UserID),
	)
	return nil
}

// Statistics returns payment counts by status, cached briefly. Owners see
// statistics for their own properties only.
func (s *PaymentService) Statistics(ctx context.Context, actor Actor) (*domain.PaymentStatistics, error) {
	if err := security.RequirePermission(actor.Role, security.PermViewStatistics, s.logger); err != nil {
		return nil, err
	}

	var ownerID *int64
	key := "stats:all"
	if actor.IsOwner() {
		ownerID = &actor.UserID
		key = fmt.Sprintf("stats:owner:%d", actor.UserID)
	}

	if cached, ok := s.stats.Get(ctx, key); ok {
		return cached, nil
	}

	total, paid, err := s.paymentRepo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.paymentRepo.ListOverdue(ctx, s.now(), ownerID)
	if err != nil {
		return nil, err
	}

	stats := &domain.PaymentStatistics{
		TotalPayments: total,
		PaidCount:     paid,
		OverdueCount:  len(overdue),
		PendingCount:  total - paid - len(overdue),
	}
	if stats.PendingCount < 0 {
		stats.PendingCount = 0
	}

	s.stats.Set(ctx, key, stats)
	return stats, nil
}

// requireTenantPayment checks the payment belongs to one of the actor's leases
func (s *PaymentService) requireTenantPayment(ctx context.Context, actor Actor, payment *domain.Payment) error {
	if payment.LeaseID == nil {
		return domain.Forbidden("not enough permissions")
	}
	lease, err := s.leaseRepo.GetByID(ctx, *payment.LeaseID)
	if err != nil {
		return domain.Forbidden("not enough permissions")
	}
	if lease.TenantID != actor.UserID {
		return domain.Forbidden("not enough permissions")
	}
	return nil
}

func validatePaymentInput(in PaymentInput) error {
	if !documentTypes[in.DocumentType] {
		return domain.Validation("invalid document_type %q", in.DocumentType)
	}
	if !in.GrossValue.IsPositive() {
		return domain.Validation("gross_value must be positive")
	}
	if in.DueDate.IsZero() {
		return domain.Validation("due_date is required")
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
