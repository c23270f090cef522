package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/service"
)

// UnitResponse is the public shape of a unit
type UnitResponse struct {
	ID          int64           `json:"id"`
	PropertyID  int64           `json:"property_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
}

func toUnitResponse(u *domain.Unit) UnitResponse {
	return UnitResponse{
		ID:          u.ID,
		PropertyID:  u.PropertyID,
		Name:        u.Name,
		Description: u.Description,
		MonthlyRent: u.MonthlyRent,
	}
}

// UnitHandler handles standalone unit endpoints
type UnitHandler struct {
	unitService *service.UnitService
	logger      *slog.Logger
}

// NewUnitHandler creates a new unit handler
func NewUnitHandler(unitService *service.UnitService, logger *slog.Logger) *UnitHandler {
	return &UnitHandler{unitService: unitService, logger: logger}
}

// Get handles GET /api/units/{id}
func (h *UnitHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	unit, err := h.unitService.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUnitResponse(unit))
}

// Update handles PUT /api/units/{id}
func (h *UnitHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req service.UnitInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	unit, err := h.unitService.Update(r.Context(), actor, id, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUnitResponse(unit))
}

// Delete handles DELETE /api/units/{id}
func (h *UnitHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.unitService.Delete(r.Context(), actor, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "unit deleted"})
}
