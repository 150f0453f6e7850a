package handler

import (
	"context"
	"net/http"

	"jalai-market/internal/model"
	"jalai-market/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Create handles POST /api/payments requests.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	payment, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, payment)
}

// MobileMoney handles POST /api/payments/mobile-money requests. A declined
// or unresolved charge still returns the payment body so the caller can
// see its state.
func (h *PaymentHandler) MobileMoney(w http.ResponseWriter, r *http.Request) {
	var req model.MobileMoneyRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	payment, err := h.service.ProcessMobileMoney(r.Context(), req)
	if err != nil {
		if payment != nil && model.IsKind(err, model.ErrKindExternalService) {
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":   err.Error(),
				"kind":    model.ErrKindExternalService,
				"payment": payment,
			})
			return
		}
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, payment)
}

// GetByID handles GET /api/payments/{id} requests.
func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	payment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// Process handles POST /api/payments/{id}/process requests.
func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Process)
}

// Confirm handles POST /api/payments/{id}/confirm requests.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Confirm)
}

func (h *PaymentHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, uuid.UUID) (*model.Payment, error)) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	payment, err := apply(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// Cancel handles POST /api/payments/{id}/cancel requests.
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.Cancel(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Refund handles POST /api/payments/{id}/refund requests.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.Refund(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByClient handles GET /api/clients/{id}/payments requests.
func (h *PaymentHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	payments, err := h.service.ListByClient(r.Context(), clientID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, payments)
}
