package handler

import (
	"net/http"

	"jalai-market/internal/service"

	"github.com/rs/zerolog"
)

// NotificationHandler handles notification-related HTTP requests.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("handler", "notification").Logger(),
	}
}

// ListForClient handles GET /api/clients/{id}/notifications requests. The
// unread query parameter limits the result to unread rows.
func (h *NotificationHandler) ListForClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := h.service.ListForClient(r.Context(), clientID, unreadOnly)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// ListForOrphanage handles GET /api/orphanages/{id}/notifications requests.
func (h *NotificationHandler) ListForOrphanage(w http.ResponseWriter, r *http.Request) {
	orphanageID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := h.service.ListForOrphanage(r.Context(), orphanageID, unreadOnly)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead handles POST /api/notifications/{id}/read requests.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.MarkRead(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/clients/{id}/notifications/read requests.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.MarkAllReadForClient(r.Context(), clientID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
