package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/yourorg/rentease/internal/security/audit"
	"github.com/yourorg/rentease/internal/security/auth"
	"github.com/yourorg/rentease/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics" ||
		path == "/api/auth/register" || path == "/api/auth/login" ||
		strings.HasPrefix(path, "/ws/events")
}

func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// Rate limit per authenticated user, fall back to remote address
			// for requests that never got past auth.
			key := r.RemoteAddr
			if c := GetClaimsFromContext(r.Context()); c != nil {
				key = strconv.FormatInt(c.UserID, 10)
			}

			if !limiter.Allow(key) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			if c := GetClaimsFromContext(r.Context()); c != nil {
				userID = strconv.FormatInt(c.UserID, 10)
			}

			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/api/leases":
				auditLog.LogAction(r.Context(), userID, "create", "lease", "", "initiated", "")
			case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/end"):
				auditLog.LogAction(r.Context(), userID, "end", "lease", r.PathValue("id"), "initiated", "")
			case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/activate"):
				auditLog.LogAction(r.Context(), userID, "activate", "lease", r.PathValue("id"), "initiated", "")
			case r.Method == http.MethodPost && r.URL.Path == "/api/payments":
				auditLog.LogAction(r.Context(), userID, "create", "payment", "", "initiated", "")
			case r.Method == http.MethodPost && r.URL.Path == "/api/payments/recurring":
				auditLog.LogAction(r.Context(), userID, "create_recurring", "payment", "", "initiated", "")
			case r.Method == http.MethodDelete:
				auditLog.LogAction(r.Context(), userID, "delete", resourceFromPath(r.URL.Path), r.PathValue("id"), "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func resourceFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/")
	if i := strings.Index(trimmed, "/"); i > 0 {
		trimmed = trimmed[:i]
	}
	return strings.TrimSuffix(trimmed, "s")
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
