package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/observability/metrics"
	"github.com/yourorg/rentease/internal/notify"
)

// SweepWorker periodically recomputes the overdue payment and active lease
// gauges and announces newly overdue payments. It only reads; payments are
// never mutated by the background loop.
type SweepWorker struct {
	paymentRepo domain.PaymentRepository
	leaseRepo   domain.LeaseRepository
	hub         *notify.Hub
	logger      *slog.Logger
	interval    time.Duration

	seenOverdue map[int64]bool
}

// NewSweepWorker creates a new sweep worker
func NewSweepWorker(
	paymentRepo domain.PaymentRepository,
	leaseRepo domain.LeaseRepository,
	hub *notify.Hub,
	logger *slog.Logger,
	interval time.Duration,
) *SweepWorker {
	return &SweepWorker{
		paymentRepo: paymentRepo,
		leaseRepo:   leaseRepo,
		hub:         hub,
		logger:      logger,
		interval:    interval,
		seenOverdue: make(map[int64]bool),
	}
}

// Start begins the sweep loop. It runs until the context is cancelled.
func (w *SweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("sweep worker started", slog.Duration("interval", w.interval))

	// Prime the gauges at startup rather than waiting a full interval
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sweep worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep recomputes gauges and publishes events for newly overdue payments
func (w *SweepWorker) sweep(ctx context.Context) {
	now := time.Now()

	overdue, err := w.paymentRepo.ListOverdue(ctx, now, nil)
	if err != nil {
		w.logger.Error("failed to list overdue payments", slog.String("error", err.Error()))
		return
	}
	metrics.SetOverduePayments(len(overdue))

	for _, p := range overdue {
		if w.seenOverdue[p.ID] {
			continue
		}
		w.seenOverdue[p.ID] = true
		w.hub.Publish("payment.overdue", p.ID,
			"Payment of "+p.GrossValue.StringFixed(2)+" was due "+p.DueDate.Format("2006-01-02"))
	}

	// Drop entries that are no longer overdue so a re-overdue payment
	// announces again
	current := make(map[int64]bool, len(overdue))
	for _, p := range overdue {
		current[p.ID] = true
	}
	for id := range w.seenOverdue {
		if !current[id] {
			delete(w.seenOverdue, id)
		}
	}

	leases, err := w.leaseRepo.List(ctx)
	if err != nil {
		w.logger.Error("failed to list leases", slog.String("error", err.Error()))
		return
	}
	active := 0
	for _, l := range leases {
		if l.IsActive {
			active++
		}
	}
	metrics.SetActiveLeases(active)

	w.logger.Debug("sweep complete",
		slog.Int("overdue_payments", len(overdue)),
		slog.Int("active_leases", active),
	)
}
