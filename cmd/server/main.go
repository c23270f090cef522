package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/rentease/internal/handler"
	"github.com/yourorg/rentease/internal/infrastructure/logger"
	"github.com/yourorg/rentease/internal/infrastructure/redis"
	"github.com/yourorg/rentease/internal/notify"
	"github.com/yourorg/rentease/internal/observability/metrics"
	"github.com/yourorg/rentease/internal/observability/tracing"
	"github.com/yourorg/rentease/internal/reliability/retry"
	"github.com/yourorg/rentease/internal/repository"
	"github.com/yourorg/rentease/internal/security/audit"
	"github.com/yourorg/rentease/internal/security/auth"
	"github.com/yourorg/rentease/internal/security/middleware"
	"github.com/yourorg/rentease/internal/security/ratelimit"
	"github.com/yourorg/rentease/internal/service"
	"github.com/yourorg/rentease/internal/worker"
	"github.com/yourorg/rentease/pkg/config"
	"github.com/yourorg/rentease/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting RentEase server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "rentease", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	// Connect to PostgreSQL with retries to ride out slow container startups
	dbCfg := &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
	pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "connect database",
		func(ctx context.Context) (*database.ConnectionPool, error) {
			return database.NewConnectionPool(ctx, dbCfg, log)
		})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	if err := database.Migrate(ctx, db, log); err != nil {
		log.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis is optional: the stats cache falls back to its in-memory tier
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = retry.Do(ctx, retry.DefaultConfig(), log, "connect redis",
			func(ctx context.Context) (*redis.Client, error) {
				return redis.NewClient(cfg.RedisURL)
			})
		if err != nil {
			log.Warn("redis unavailable, continuing without it", slog.String("error", err.Error()))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Repositories
	userRepo := repository.NewPostgresUserRepository(db, log)
	propertyRepo := repository.NewPostgresPropertyRepository(db, log)
	unitRepo := repository.NewPostgresUnitRepository(db, log)
	leaseRepo := repository.NewPostgresLeaseRepository(db, log)
	paymentRepo := repository.NewPostgresPaymentRepository(db, log)
	fileRepo := repository.NewPostgresFileRepository(db, log)

	// Services
	hub := notify.NewHub(log)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "rentease")
	statsCache := service.NewStatsCache(redisClient, log)

	authService := service.NewAuthService(userRepo, tokenManager, log)
	userService := service.NewUserService(userRepo, log)
	propertyService := service.NewPropertyService(propertyRepo, log)
	unitService := service.NewUnitService(unitRepo, propertyRepo, log)
	leaseService := service.NewLeaseService(leaseRepo, unitRepo, userRepo, hub, log)
	paymentService := service.NewPaymentService(paymentRepo, leaseRepo, fileRepo, statsCache, hub, log)
	fileService := service.NewFileService(fileRepo, userRepo, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	userHandler := handler.NewUserHandler(userService, log)
	propertyHandler := handler.NewPropertyHandler(propertyService, unitService, log)
	unitHandler := handler.NewUnitHandler(unitService, log)
	leaseHandler := handler.NewLeaseHandler(leaseService, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, log)
	fileHandler := handler.NewFileHandler(fileService, log)
	eventsHandler := handler.NewEventsHandler(hub, tokenManager, log, cfg.CORSAllowedOrigins)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	// Security components
	rateLimiter := ratelimit.NewLimiter(100, time.Minute) // 100 requests per minute per user
	auditLogger := audit.NewLogger(log)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)

	mux.HandleFunc("GET /api/users/me", userHandler.Me)
	mux.HandleFunc("PUT /api/users/me", userHandler.UpdateMe)
	mux.HandleFunc("PUT /api/users/me/profile-picture", fileHandler.SetProfilePicture)
	mux.HandleFunc("GET /api/users/me/profile-picture", fileHandler.GetMyProfilePicture)
	mux.HandleFunc("DELETE /api/users/me/profile-picture", fileHandler.RemoveProfilePicture)
	mux.HandleFunc("GET /api/users", userHandler.List)
	mux.HandleFunc("GET /api/users/tenants", userHandler.ListTenants)
	mux.HandleFunc("POST /api/users/tenants", authHandler.CreateTenant)
	mux.HandleFunc("GET /api/users/{id}", userHandler.Get)
	mux.HandleFunc("GET /api/users/{id}/profile-picture", fileHandler.GetProfilePicture)
	mux.HandleFunc("PUT /api/users/{id}", userHandler.Update)
	mux.HandleFunc("DELETE /api/users/{id}", userHandler.Delete)

	mux.HandleFunc("POST /api/properties", propertyHandler.Create)
	mux.HandleFunc("GET /api/properties", propertyHandler.List)
	mux.HandleFunc("GET /api/properties/{id}", propertyHandler.Get)
	mux.HandleFunc("PUT /api/properties/{id}", propertyHandler.Update)
	mux.HandleFunc("DELETE /api/properties/{id}", propertyHandler.Delete)
	mux.HandleFunc("POST /api/properties/{id}/units", propertyHandler.CreateUnit)
	mux.HandleFunc("GET /api/properties/{id}/units", propertyHandler.ListUnits)

	mux.HandleFunc("GET /api/units/{id}", unitHandler.Get)
	mux.HandleFunc("PUT /api/units/{id}", unitHandler.Update)
	mux.HandleFunc("DELETE /api/units/{id}", unitHandler.Delete)

	mux.HandleFunc("POST /api/leases", leaseHandler.Create)
	mux.HandleFunc("GET /api/leases", leaseHandler.List)
	mux.HandleFunc("GET /api/leases/{id}", leaseHandler.Get)
	mux.HandleFunc("GET /api/leases/tenant/{id}", leaseHandler.ListByTenant)
	mux.HandleFunc("POST /api/leases/{id}/end", leaseHandler.End)
	mux.HandleFunc("POST /api/leases/{id}/activate", leaseHandler.Activate)

	mux.HandleFunc("POST /api/payments", paymentHandler.Create)
	mux.HandleFunc("GET /api/payments", paymentHandler.List)
	mux.HandleFunc("GET /api/payments/statistics", paymentHandler.Statistics)
	mux.HandleFunc("POST /api/payments/recurring", paymentHandler.CreateRecurring)
	mux.HandleFunc("GET /api/payments/{id}", paymentHandler.Get)
	mux.HandleFunc("PUT /api/payments/{id}", paymentHandler.Update)
	mux.HandleFunc("POST /api/payments/{id}/paid", paymentHandler.SetPaid)
	mux.HandleFunc("POST /api/payments/{id}/invoice", paymentHandler.AttachInvoice)
	mux.HandleFunc("DELETE /api/payments/{id}", paymentHandler.Delete)

	mux.HandleFunc("POST /api/files", fileHandler.Upload)
	mux.HandleFunc("GET /api/files", fileHandler.List)
	mux.HandleFunc("GET /api/files/{id}", fileHandler.Get)
	mux.HandleFunc("GET /api/files/{id}/download", fileHandler.Download)
	mux.HandleFunc("DELETE /api/files/{id}", fileHandler.Delete)

	mux.Handle("GET /ws/events", eventsHandler)

	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain: request ID -> metrics -> audit -> rate limit -> validation -> JWT -> CORS -> mux
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.AuditMiddleware(auditLogger)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.ValidateContentType(log)(
						middleware.JWTMiddleware(tokenManager, log)(handlerWithCORS),
					),
				),
			),
		),
		log,
	)
	rootHandler = otelhttp.NewHandler(rootHandler, "rentease.http")

	// Background sweep: overdue payment and active lease gauges plus
	// overdue notifications
	sweepWorker := worker.NewSweepWorker(paymentRepo, leaseRepo, hub, log, cfg.SweepInterval)
	go sweepWorker.Start(ctx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Bool("redis", redisClient != nil),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stop sweep worker
	rateLimiter.Stop()
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
