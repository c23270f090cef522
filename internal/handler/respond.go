package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/security/middleware"
	"github.com/yourorg/rentease/internal/service"
)

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps typed domain errors to HTTP status codes
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var (
		notFound     *domain.NotFoundError
		exists       *domain.AlreadyExistsError
		rule         *domain.BusinessRuleError
		validation   *domain.ValidationError
		unauthorized *domain.UnauthorizedError
		forbidden    *domain.ForbiddenError
	)

	switch {
	case errors.As(err, &validation):
		status, message = http.StatusBadRequest, validation.Message
	case errors.As(err, &unauthorized):
		status, message = http.StatusUnauthorized, unauthorized.Message
	case errors.As(err, &forbidden):
		status, message = http.StatusForbidden, forbidden.Message
	case errors.As(err, &notFound):
		status, message = http.StatusNotFound, notFound.Message
	case errors.As(err, &exists):
		status, message = http.StatusConflict, exists.Message
	case errors.As(err, &rule):
		status, message = http.StatusUnprocessableEntity, rule.Message
	default:
		if logger != nil {
			logger.Error("unhandled error", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, status, map[string]string{"error": message})
}

// actorFrom builds the service actor from the request's JWT claims
func actorFrom(r *http.Request) (service.Actor, error) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return service.Actor{}, domain.Unauthorized("not authenticated")
	}
	return service.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

// pathID parses the {id} path value as an int64
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation("invalid id %q", raw)
	}
	return id, nil
}
