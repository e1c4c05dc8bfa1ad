package handler

import (
	"net/http"

	"storekart/internal/model"
	"storekart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler serves the storefront browse surface. Catalogue management
// itself lives with the catalogue collaborator; this is read-only.
type ProductHandler struct {
	products repository.ProductRepository
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(products repository.ProductRepository, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products with pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 200 || offset < 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid pagination", h.logger)
		return
	}

	products, err := h.products.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid product ID format", h.logger)
		return
	}

	product, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if product == nil {
		writeServiceError(w, model.ErrNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}
