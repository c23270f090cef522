package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/yourorg/rentease/internal/domain"
)

// PostgresPaymentRepository implements domain.PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPaymentRepository creates a new payment repository
func NewPostgresPaymentRepository(db *sql.DB, logger *slog.Logger) *PostgresPaymentRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPaymentRepository{
		db:     db,
		logger: logger,
	}
}

const paymentColumns = `p.id, p.document_type, p.gross_value, p.due_date, p.receiver,
	COALESCE(p.description, ''), p.is_paid, p.invoice_file_id, p.lease_id,
	p.created_at, COALESCE(p.updated_at, p.created_at)`

const paymentInsert = `
	INSERT INTO payments (document_type, gross_value, due_date, receiver, description, is_paid, invoice_file_id, lease_id)
	VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
	RETURNING id, created_at, created_at
`

func scanPayment(row interface{ Scan(...any) error }) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(
		&p.ID,
		&p.DocumentType,
		&p.GrossValue,
		&p.DueDate,
		&p.Receiver,
		&p.Description,
		&p.IsPaid,
		&p.InvoiceFileID,
		&p.LeaseID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a single payment
func (r *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	err := r.db.QueryRowContext(
		ctx,
		paymentInsert,
		payment.DocumentType,
		payment.GrossValue,
		payment.DueDate,
		payment.Receiver,
		payment.Description,
		payment.IsPaid,
		payment.InvoiceFileID,
		payment.LeaseID,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		if domainErr := translateConstraint(err, "payment"); domainErr != nil {
			return domainErr
		}
		r.logger.Error("failed to create payment",
			slog.String("document_type", payment.DocumentType),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// CreateBatch inserts all payments in one transaction. The recurring payment
// workflow depends on this being all-or-nothing: a failure partway leaves no
// rows behind.
func (r *PostgresPaymentRepository) CreateBatch(ctx context.Context, payments []*domain.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, paymentInsert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, payment := range payments {
		err := stmt.QueryRowContext(
			ctx,
			payment.DocumentType,
			payment.GrossValue,
			payment.DueDate,
			payment.Receiver,
			payment.Description,
			payment.IsPaid,
			payment.InvoiceFileID,
			payment.LeaseID,
		).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
		if err != nil {
			if domainErr := translateConstraint(err, "payment"); domainErr != nil {
				return domainErr
			}
			return fmt.Errorf("failed to insert payment batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment batch: %w", err)
	}

	r.logger.Info("payment batch created", slog.Int("count", len(payments)))
	return nil
}

// GetByID retrieves a payment by ID
func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.id = $1`

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("payment %d not found", id)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// Update updates payment fields
func (r *PostgresPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET document_type = $1, gross_value = $2, due_date = $3, receiver = $4,
		    description = NULLIF($5, ''), is_paid = $6, lease_id = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		payment.DocumentType,
		payment.GrossValue,
		payment.DueDate,
		payment.Receiver,
		payment.Description,
		payment.IsPaid,
		payment.LeaseID,
		payment.ID,
	).Scan(&payment.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("payment %d not found", payment.ID)
		}
		if domainErr := translateConstraint(err, "payment"); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return nil
}

// SetPaid flips the paid flag and returns the updated payment
func (r *PostgresPaymentRepository) SetPaid(ctx context.Context, id int64, isPaid bool) (*domain.Payment, error) {
	query := `
		UPDATE payments p SET is_paid = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + paymentColumns

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, isPaid, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("payment %d not found", id)
		}
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	return payment, nil
}

// AttachInvoice links a stored file to the payment as its invoice
func (r *PostgresPaymentRepository) AttachInvoice(ctx context.Context, id int64, fileID int64) (*domain.Payment, error) {
	query := `
		UPDATE payments p SET invoice_file_id = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + paymentColumns

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, fileID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("payment %d not found", id)
		}
		if domainErr := translateConstraint(err, "invoice file"); domainErr != nil {
			return nil, domainErr
		}
		return nil, fmt.Errorf("failed to attach invoice: %w", err)
	}

	return payment, nil
}

// Delete removes a payment
func (r *PostgresPaymentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("payment %d not found", id)
	}

	return nil
}

// List returns payments matching the filter, newest due first
func (r *PostgresPaymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p`
	var where []string
	var args []any

	if filter.OwnerID != nil || filter.TenantID != nil {
		query += `
	LEFT JOIN leases l ON l.id = p.lease_id
	LEFT JOIN units un ON un.id = l.unit_id
	LEFT JOIN properties pr ON pr.id = un.property_id`
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where = append(where, `pr.owner_id = $`+strconv.Itoa(len(args)))
	}
	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		where = append(where, `l.tenant_id = $`+strconv.Itoa(len(args)))
	}
	if filter.LeaseID != nil {
		args = append(args, *filter.LeaseID)
		where = append(where, `p.lease_id = $`+strconv.Itoa(len(args)))
	}
	if filter.IsPaid != nil {
		args = append(args, *filter.IsPaid)
		where = append(where, `p.is_paid = $`+strconv.Itoa(len(args)))
	}

	for i, cond := range where {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}

	query += ` ORDER BY p.due_date DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list payments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

// ListOverdue returns unpaid payments due before asOf, optionally scoped to
// an owner's properties
func (r *PostgresPaymentRepository) ListOverdue(ctx context.Context, asOf time.Time, ownerID *int64) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p`
	args := []any{asOf}
	if ownerID != nil {
		query += `
	JOIN leases l ON l.id = p.lease_id
	JOIN units un ON un.id = l.unit_id
	JOIN properties pr ON pr.id = un.property_id`
	}
	query += ` WHERE p.is_paid = false AND p.due_date < $1`
	if ownerID != nil {
		args = append(args, *ownerID)
		query += ` AND pr.owner_id = $2`
	}
	query += ` ORDER BY p.due_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue payments: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

// CountByStatus returns total and paid payment counts, optionally scoped to
// an owner's properties
func (r *PostgresPaymentRepository) CountByStatus(ctx context.Context, ownerID *int64) (int, int, error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE p.is_paid) FROM payments p`
	var args []any
	if ownerID != nil {
		query += `
	JOIN leases l ON l.id = p.lease_id
	JOIN units un ON un.id = l.unit_id
	JOIN properties pr ON pr.id = un.property_id
	WHERE pr.owner_id = $1`
		args = append(args, *ownerID)
	}

	var total, paid int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total, &paid); err != nil {
		return 0, 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return total, paid, nil
}

func collectPayments(rows *sql.Rows) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
