package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/yourorg/rentease/internal/domain"
)

var paymentRowColumns = []string{
	"id", "document_type", "gross_value", "due_date", "receiver",
	"description", "is_paid", "invoice_file_id", "lease_id",
	"created_at", "updated_at",
}

func newPaymentRepo(t *testing.T) (*PostgresPaymentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresPaymentRepository(db, nil), mock
}

func testPayment(due time.Time) *domain.Payment {
	leaseID := int64(7)
	return &domain.Payment{
		DocumentType: "Rent Invoice",
		GrossValue:   decimal.RequireFromString("500.00"),
		DueDate:      due,
		Receiver:     "Tina Tenant",
		Description:  "Monthly payment",
		LeaseID:      &leaseID,
	}
}

func TestCreateBatchCommitsAllRows(t *testing.T) {
	repo, mock := newPaymentRepo(t)

	now := time.Now()
	payments := []*domain.Payment{
		testPayment(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		testPayment(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(paymentInsert))
	for i := range payments {
		prep.ExpectQuery().
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "created_at"}).
				AddRow(int64(i+1), now, now))
	}
	mock.ExpectCommit()

	if err := repo.CreateBatch(context.Background(), payments); err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	for i, p := range payments {
		if p.ID != int64(i+1) {
			t.Fatalf("payment %d: id not populated", i)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBatchRollsBackOnFailure(t *testing.T) {
	repo, mock := newPaymentRepo(t)

	now := time.Now()
	payments := []*domain.Payment{
		testPayment(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		testPayment(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(paymentInsert))
	prep.ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "created_at"}).
			AddRow(int64(1), now, now))
	prep.ExpectQuery().
		WillReturnError(&pq.Error{Code: pqForeignKeyMissing})
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), payments)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error from foreign key failure, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBatchEmptySliceSkipsTransaction(t *testing.T) {
	repo, mock := newPaymentRepo(t)

	if err := repo.CreateBatch(context.Background(), nil); err != nil {
		t.Fatalf("empty batch failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database access: %v", err)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	repo, mock := newPaymentRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM payments p WHERE p\.id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(paymentRowColumns))

	if _, err := repo.GetByID(context.Background(), 42); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetPaidReturnsUpdatedRow(t *testing.T) {
	repo, mock := newPaymentRepo(t)

	now := time.Now()
	mock.ExpectQuery(`UPDATE payments p SET is_paid = \$1`).
		WithArgs(true, int64(3)).
		WillReturnRows(sqlmock.NewRows(paymentRowColumns).
			AddRow(int64(3), "Rent Invoice", "500.00", now, "Tina Tenant", "Monthly payment", true, nil, int64(7), now, now))

	payment, err := repo.SetPaid(context.Background(), 3, true)
	if err != nil {
		t.Fatalf("set paid failed: %v", err)
	}
	if !payment.IsPaid {
		t.Fatalf("expected paid flag set")
	}
	if !payment.GrossValue.Equal(decimal.RequireFromString("500.00")) {
		t.Fatalf("unexpected gross value %s", payment.GrossValue)
	}
}

func TestDeletePaymentNotFound(t *testing.T) {
	repo, mock := newPaymentRepo(t)

	mock.ExpectExec(`DELETE FROM payments WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 42); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCountByStatusScopedToOwner(t *testing.T) {
	repo, mock := newPaymentRepo(t)

	ownerID := int64(5)
	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(\*\) FILTER \(WHERE p\.is_paid\) FROM payments p`).
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"count", "count"}).AddRow(10, 4))

	total, paid, err := repo.CountByStatus(context.Background(), &ownerID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != 10 || paid != 4 {
		t.Fatalf("unexpected counts: total=%d paid=%d", total, paid)
	}
}
