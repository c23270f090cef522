package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/service"
)

// PropertyResponse is the public shape of a property
type PropertyResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Address     string          `json:"address"`
	Price       decimal.Decimal `json:"price"`
	OwnerID     int64           `json:"owner_id"`
}

func toPropertyResponse(p *domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Price:       p.Price,
		OwnerID:     p.OwnerID,
	}
}

// PropertyHandler handles property CRUD endpoints
type PropertyHandler struct {
	propertyService *service.PropertyService
	unitService     *service.UnitService
	logger          *slog.Logger
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyService *service.PropertyService, unitService *service.UnitService, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		unitService:     unitService,
		logger:          logger,
	}
}

// Create handles POST /api/properties
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req service.PropertyInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	property, err := h.propertyService.Create(r.Context(), actor, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyResponse(property))
}

// List handles GET /api/properties
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	properties, err := h.propertyService.List(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		out = append(out, toPropertyResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/properties/{id}
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	property, err := h.propertyService.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyResponse(property))
}

// Update handles PUT /api/properties/{id}
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req service.PropertyInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	property, err := h.propertyService.Update(r.Context(), actor, id, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyResponse(property))
}

// Delete handles DELETE /api/properties/{id}
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.propertyService.Delete(r.Context(), actor, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "property deleted"})
}

// CreateUnit handles POST /api/properties/{id}/units
func (h *PropertyHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	propertyID, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req service.UnitInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	unit, err := h.unitService.Create(r.Context(), actor, propertyID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUnitResponse(unit))
}

// ListUnits handles GET /api/properties/{id}/units
func (h *PropertyHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	propertyID, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	units, err := h.unitService.ListByProperty(r.Context(), actor, propertyID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}
