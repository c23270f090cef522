package audit

import (
	"context"
	"log/slog"
	"time"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, userID, action, resource, resourceID, status, details string) {
	requestID := ""
	if reqID := ctx.Value("request_id"); reqID != nil {
		requestID = reqID.(string)
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogLeaseCreated(ctx context.Context, userID, leaseID, status, details string) {
	al.LogAction(ctx, userID, "create", "lease", leaseID, status, details)
}

func (al *Logger) LogLeaseEnded(ctx context.Context, userID, leaseID, status, details string) {
	al.LogAction(ctx, userID, "end", "lease", leaseID, status, details)
}

func (al *Logger) LogPaymentCreated(ctx context.Context, userID, paymentID, status, details string) {
	al.LogAction(ctx, userID, "create", "payment", paymentID, status, details)
}

func (al *Logger) LogDenied(ctx context.Context, userID, reason string) {
	al.LogAction(ctx, userID, "access_denied", "api", "", "denied", reason)
}
