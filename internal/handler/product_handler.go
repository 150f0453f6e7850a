package handler

import (
	"net/http"
	"strconv"

	"jalai-market/internal/model"
	"jalai-market/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// priceRange parses the minPrice/maxPrice query parameters. A missing
// minPrice defaults to zero and a missing maxPrice to an open upper bound.
func priceRange(minStr, maxStr string) (decimal.Decimal, decimal.Decimal, error) {
	min := decimal.Zero
	if minStr != "" {
		parsed, err := decimal.NewFromString(minStr)
		if err != nil {
			return decimal.Zero, decimal.Zero, model.ValidationError("minPrice %q is not a valid amount", minStr)
		}
		min = parsed
	}

	max := decimal.NewFromInt(1_000_000_000)
	if maxStr != "" {
		parsed, err := decimal.NewFromString(maxStr)
		if err != nil {
			return decimal.Zero, decimal.Zero, model.ValidationError("maxPrice %q is not a valid amount", maxStr)
		}
		max = parsed
	}
	return min, max, nil
}

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.CatalogService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// Submit handles POST /api/products requests.
func (h *ProductHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitProductRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.Submit(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// List handles GET /api/products requests. An optional name query switches
// to search, minPrice/maxPrice restrict by price; only approved products
// are ever returned.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	var (
		products []model.Product
		err      error
	)
	switch {
	case query.Get("name") != "":
		products, err = h.service.Search(r.Context(), query.Get("name"), limit, offset)
	case query.Get("minPrice") != "" || query.Get("maxPrice") != "":
		var min, max decimal.Decimal
		min, max, err = priceRange(query.Get("minPrice"), query.Get("maxPrice"))
		if err == nil {
			products, err = h.service.ListByPriceRange(r.Context(), min, max, limit, offset)
		}
	default:
		products, err = h.service.ListApproved(r.Context(), limit, offset)
	}
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// ListBySeller handles GET /api/sellers/{id}/products requests.
func (h *ProductHandler) ListBySeller(w http.ResponseWriter, r *http.Request) {
	sellerID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	products, err := h.service.ListBySeller(r.Context(), sellerID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var req model.UpdateProductRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Approve handles POST /api/products/{id}/approve requests.
func (h *ProductHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var req model.ReviewProductRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.Approve(r.Context(), id, req.AdminID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Reject handles POST /api/products/{id}/reject requests.
func (h *ProductHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var req model.ReviewProductRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	product, err := h.service.Reject(r.Context(), id, req.AdminID, req.Reason)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// SetAvailability handles POST /api/products/{id}/availability requests.
func (h *ProductHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var req struct {
		Available bool `json:"available"`
	}
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if req.Available {
		err = h.service.MarkAvailable(r.Context(), id)
	} else {
		err = h.service.MarkUnavailable(r.Context(), id)
	}
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkDonated handles POST /api/products/{id}/donate requests.
func (h *ProductHandler) MarkDonated(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.MarkDonated(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
