package handler

import (
	"net/http"

	"jalai-market/internal/model"
	"jalai-market/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.CartItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	line, err := h.service.AddItem(r.Context(), req.ClientID, req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, line)
}

// UpdateItem handles PUT /api/cart/items requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req model.CartItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.SetQuantity(r.Context(), req.ClientID, req.ProductID, req.Quantity); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveItem handles DELETE /api/cart/{clientId}/items/{productId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "clientId")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	productID, err := pathUUID(r, "productId")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.RemoveItem(r.Context(), clientID, productID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/cart/{clientId} requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "clientId")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.Clear(r.Context(), clientID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// View handles GET /api/cart/{clientId} requests.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "clientId")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	view, err := h.service.View(r.Context(), clientID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Count handles GET /api/cart/{clientId}/count requests.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "clientId")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	count, err := h.service.Count(r.Context(), clientID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// Validate handles POST /api/cart/{clientId}/validate requests.
func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "clientId")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.ValidateForCheckout(r.Context(), clientID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
