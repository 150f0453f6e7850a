package handler

import (
	"context"
	"net/http"

	"jalai-market/internal/model"
	"jalai-market/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DonationHandler handles donation-related HTTP requests.
type DonationHandler struct {
	service service.DonationService
	logger  zerolog.Logger
}

// NewDonationHandler creates a new donation handler.
func NewDonationHandler(service service.DonationService, logger zerolog.Logger) *DonationHandler {
	return &DonationHandler{
		service: service,
		logger:  logger.With().Str("handler", "donation").Logger(),
	}
}

// Create handles POST /api/donations requests.
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDonationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	donation, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, donation)
}

// GetByID handles GET /api/donations/{id} requests.
func (h *DonationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	donation, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, donation)
}

// Confirm handles POST /api/donations/{id}/confirm requests.
func (h *DonationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Confirm)
}

// Start handles POST /api/donations/{id}/start requests.
func (h *DonationHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Start)
}

// Complete handles POST /api/donations/{id}/complete requests.
func (h *DonationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Complete)
}

func (h *DonationHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, uuid.UUID) (*model.Donation, error)) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	donation, err := apply(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, donation)
}

// Cancel handles POST /api/donations/{id}/cancel requests.
func (h *DonationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
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

// ListByClient handles GET /api/clients/{id}/donations requests.
func (h *DonationHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	donations, err := h.service.ListByClient(r.Context(), clientID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, donations)
}

// ListByOrphanage handles GET /api/orphanages/{id}/donations requests.
func (h *DonationHandler) ListByOrphanage(w http.ResponseWriter, r *http.Request) {
	orphanageID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	donations, err := h.service.ListByOrphanage(r.Context(), orphanageID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, donations)
}

// ListScheduledToday handles GET /api/donations/scheduled requests.
func (h *DonationHandler) ListScheduledToday(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.ListScheduledToday(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, donations)
}

// ListOverdue handles GET /api/donations/overdue requests.
func (h *DonationHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.ListOverdue(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, donations)
}

// ApproveOrphanage handles POST /api/orphanages/{id}/approve requests.
func (h *DonationHandler) ApproveOrphanage(w http.ResponseWriter, r *http.Request) {
	orphanageID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var req struct {
		AdminID uuid.UUID `json:"adminId" validate:"required"`
	}
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	orphanage, err := h.service.ApproveOrphanage(r.Context(), orphanageID, req.AdminID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orphanage)
}

// RejectOrphanage handles POST /api/orphanages/{id}/reject requests.
func (h *DonationHandler) RejectOrphanage(w http.ResponseWriter, r *http.Request) {
	orphanageID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var req struct {
		AdminID uuid.UUID `json:"adminId" validate:"required"`
		Reason  string    `json:"reason"`
	}
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	orphanage, err := h.service.RejectOrphanage(r.Context(), orphanageID, req.AdminID, req.Reason)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orphanage)
}

// OrphanageCashTotal handles GET /api/orphanages/{id}/donations/total requests.
func (h *DonationHandler) OrphanageCashTotal(w http.ResponseWriter, r *http.Request) {
	orphanageID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	total, err := h.service.TotalCashForOrphanage(r.Context(), orphanageID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"total": total.StringFixed(2)})
}

// ClientCashTotal handles GET /api/clients/{id}/donations/total requests.
func (h *DonationHandler) ClientCashTotal(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	total, err := h.service.TotalCashByClient(r.Context(), clientID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"total": total.StringFixed(2)})
}
