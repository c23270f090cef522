package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/service"
)

// PaymentResponse is the public shape of a payment. Status is derived from
// is_paid and due_date at response time.
type PaymentResponse struct {
	ID            int64           `json:"id"`
	DocumentType  string          `json:"document_type"`
	GrossValue    decimal.Decimal `json:"gross_value"`
	DueDate       string          `json:"due_date"`
	Receiver      string          `json:"receiver"`
	Description   string          `json:"description"`
	IsPaid        bool            `json:"is_paid"`
	Status        string          `json:"status"`
	InvoiceFileID *int64          `json:"invoice_file_id,omitempty"`
	LeaseID       *int64          `json:"lease_id,omitempty"`
}

func toPaymentResponse(p *domain.Payment, now time.Time) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		DocumentType:  p.DocumentType,
		GrossValue:    p.GrossValue,
		DueDate:       p.DueDate.Format(dateLayout),
		Receiver:      p.Receiver,
		Description:   p.Description,
		IsPaid:        p.IsPaid,
		Status:        p.Status(now),
		InvoiceFileID: p.InvoiceFileID,
		LeaseID:       p.LeaseID,
	}
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, logger: logger}
}

// CreatePaymentRequest represents a single payment creation request
type CreatePaymentRequest struct {
	DocumentType string          `json:"document_type"`
	GrossValue   decimal.Decimal `json:"gross_value"`
	DueDate      string          `json:"due_date"`
	Receiver     string          `json:"receiver"`
	Description  string          `json:"description"`
	LeaseID      *int64          `json:"lease_id"`
}

// Create handles POST /api/payments
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	if req.DueDate == "" {
		writeError(w, h.logger, domain.Validation("due_date is required"))
		return
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	payment, err := h.paymentService.Create(r.Context(), actor, service.PaymentInput{
		DocumentType: req.DocumentType,
		GrossValue:   req.GrossValue,
		DueDate:      dueDate,
		Receiver:     req.Receiver,
		Description:  req.Description,
		LeaseID:      req.LeaseID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResponse(payment, time.Now()))
}

// CreateRecurring handles POST /api/payments/recurring
func (h *PaymentHandler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req service.RecurringInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	result, err := h.paymentService.CreateRecurring(r.Context(), actor, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now()
	payments := make([]PaymentResponse, 0, len(result.Payments))
	for _, p := range result.Payments {
		payments = append(payments, toPaymentResponse(p, now))
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"count":    result.Count,
		"payments": payments,
	})
}

// List handles GET /api/payments with optional status, is_paid, lease_id,
// tenant_id, limit and offset query parameters
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filter, status, err := paymentFilterFromQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	payments, err := h.paymentService.List(r.Context(), actor, filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now()
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		// "overdue" narrows the unpaid set by due date
		if status == "overdue" && p.Status(now) != domain.PaymentStatusOverdue {
			continue
		}
		out = append(out, toPaymentResponse(p, now))
	}
	writeJSON(w, http.StatusOK, out)
}

// Statistics handles GET /api/payments/statistics
func (h *PaymentHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	stats, err := h.paymentService.Statistics(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Get handles GET /api/payments/{id}
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	payment, err := h.paymentService.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment, time.Now()))
}

// Update handles PUT /api/payments/{id}
func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}

	var dueDate time.Time
	if req.DueDate != "" {
		dueDate, err = parseDate("due_date", req.DueDate)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	payment, err := h.paymentService.Update(r.Context(), actor, id, service.PaymentInput{
		DocumentType: req.DocumentType,
		GrossValue:   req.GrossValue,
		DueDate:      dueDate,
		Receiver:     req.Receiver,
		Description:  req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment, time.Now()))
}

// SetPaidRequest toggles the paid flag
type SetPaidRequest struct {
	IsPaid bool `json:"is_paid"`
}

// SetPaid handles POST /api/payments/{id}/paid
func (h *PaymentHandler) SetPaid(w http.ResponseWriter, r *http.Request) {
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

	req := SetPaidRequest{IsPaid: true}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, domain.Validation("invalid request body"))
			return
		}
	}

	payment, err := h.paymentService.SetPaid(r.Context(), actor, id, req.IsPaid)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment, time.Now()))
}

// AttachInvoiceRequest links a stored file to a payment
type AttachInvoiceRequest struct {
	FileID int64 `json:"file_id"`
}

// AttachInvoice handles POST /api/payments/{id}/invoice
func (h *PaymentHandler) AttachInvoice(w http.ResponseWriter, r *http.Request) {
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

	var req AttachInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, domain.Validation("invalid request body"))
		return
	}
	if req.FileID <= 0 {
		writeError(w, h.logger, domain.Validation("file_id is required"))
		return
	}

	payment, err := h.paymentService.AttachInvoice(r.Context(), actor, id, req.FileID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment, time.Now()))
}

// Delete handles DELETE /api/payments/{id}
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.paymentService.Delete(r.Context(), actor, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "payment deleted"})
}

func paymentFilterFromQuery(r *http.Request) (domain.PaymentFilter, string, error) {
	var filter domain.PaymentFilter
	q := r.URL.Query()

	status := strings.ToLower(q.Get("status"))
	switch status {
	case "":
	case "paid":
		isPaid := true
		filter.IsPaid = &isPaid
	case "unpaid", "pending", "overdue":
		isPaid := false
		filter.IsPaid = &isPaid
	default:
		return filter, "", domain.Validation("status must be paid, unpaid or overdue, got %q", status)
	}

	if v := q.Get("is_paid"); v != "" {
		isPaid, err := strconv.ParseBool(v)
		if err != nil {
			return filter, "", domain.Validation("is_paid must be a boolean, got %q", v)
		}
		filter.IsPaid = &isPaid
	}
	if v := q.Get("lease_id"); v != "" {
		leaseID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, "", domain.Validation("lease_id must be an integer, got %q", v)
		}
		filter.LeaseID = &leaseID
	}
	if v := q.Get("tenant_id"); v != "" {
		tenantID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, "", domain.Validation("tenant_id must be an integer, got %q", v)
		}
		filter.TenantID = &tenantID
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, "", domain.Validation("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, "", domain.Validation("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, status, nil
}
