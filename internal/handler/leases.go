package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/service"
)

const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD date string
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, domain.Validation("%s must be a YYYY-MM-DD date, got %q", field, value)
	}
	return t, nil
}

// LeaseResponse is the public shape of a lease
type LeaseResponse struct {
	ID        int64         `json:"id"`
	UnitID    int64         `json:"unit_id"`
	TenantID  int64         `json:"tenant_id"`
	StartDate string        `json:"start_date"`
	EndDate   *string       `json:"end_date"`
	IsActive  bool          `json:"is_active"`
	Tenant    *UserResponse `json:"tenant,omitempty"`
	Unit      *UnitResponse `json:"unit,omitempty"`
}

func toLeaseResponse(l *domain.Lease) LeaseResponse {
	resp := LeaseResponse{
		ID:        l.ID,
		UnitID:    l.UnitID,
		TenantID:  l.TenantID,
		StartDate: l.StartDate.Format(dateLayout),
		IsActive:  l.IsActive,
	}
	if l.EndDate != nil {
		end := l.EndDate.Format(dateLayout)
		resp.EndDate = &end
	}
	if l.Tenant != nil {
		tenant := toUserResponse(l.Tenant)
		resp.Tenant = &tenant
	}
	if l.Unit != nil {
		unit := toUnitResponse(l.Unit)
		resp.Unit = &unit
	}
	return resp
}

// LeaseHandler handles lease lifecycle endpoints
type LeaseHandler struct {
	leaseService *service.LeaseService
	logger       *slog.Logger
}

// NewLeaseHandler creates a new lease handler
func NewLeaseHandler(leaseService *service.LeaseService, logger *slog.Logger) *LeaseHandler {
	return &LeaseHandler{leaseService: leaseService, logger: logger}
}

// CreateLeaseRequest represents a lease creation request
type CreateLeaseRequest struct {
	UnitID    int64   `json:"unit_id"`
	TenantID  int64   `json:"tenant_id"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// Create handles POST /api/leases
func (h *LeaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req CreateLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	if req.StartDate == "" {
		writeError(w, h.logger, domain.Validation("start_date is required"))
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var end *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := parseDate("end_date", *req.EndDate)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		end = &parsed
	}

	lease, err := h.leaseService.Create(r.Context(), actor, service.CreateLeaseInput{
		UnitID:    req.UnitID,
		TenantID:  req.TenantID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaseResponse(lease))
}

// List handles GET /api/leases
func (h *LeaseHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	leases, err := h.leaseService.List(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]LeaseResponse, 0, len(leases))
	for _, l := range leases {
		out = append(out, toLeaseResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

// ListByTenant handles GET /api/leases/tenant/{id}
func (h *LeaseHandler) ListByTenant(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	tenantID, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	leases, err := h.leaseService.ListForTenant(r.Context(), actor, tenantID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]LeaseResponse, 0, len(leases))
	for _, l := range leases {
		out = append(out, toLeaseResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/leases/{id}
func (h *LeaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	lease, err := h.leaseService.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaseResponse(lease))
}

// EndLeaseRequest carries the optional end date; today is used when omitted
type EndLeaseRequest struct {
	EndDate string `json:"end_date"`
}

// End handles POST /api/leases/{id}/end
func (h *LeaseHandler) End(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req EndLeaseRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, domain.Validation("invalid request body"))
			return
		}
	}

	var endDate time.Time
	if req.EndDate != "" {
		endDate, err = parseDate("end_date", req.EndDate)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	lease, err := h.leaseService.End(r.Context(), actor, id, endDate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaseResponse(lease))
}

// Activate handles POST /api/leases/{id}/activate
func (h *LeaseHandler) Activate(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	lease, err := h.leaseService.Activate(r.Context(), actor, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaseResponse(lease))
}
