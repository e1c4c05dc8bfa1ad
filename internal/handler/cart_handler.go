package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"storekart/internal/cart"
	"storekart/internal/middleware"
	"storekart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	carts  cart.Store
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts cart.Store, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

// addItemRequest is the payload for POST /api/cart/items.
type addItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.CustomerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeInternalError, "customer identity missing", h.logger)
		return
	}

	view, err := h.carts.Get(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.CustomerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeInternalError, "customer identity missing", h.logger)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.ProductID == uuid.Nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "productId is required", h.logger)
		return
	}

	view, err := h.carts.AddItem(r.Context(), customerID, req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// IncrementItem handles POST /api/cart/items/{productID}/increment.
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, h.carts.IncrementItem)
}

// DecrementItem handles POST /api/cart/items/{productID}/decrement.
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, h.carts.DecrementItem)
}

// RemoveItem handles DELETE /api/cart/items/{productID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, h.carts.RemoveItem)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.CustomerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeInternalError, "customer identity missing", h.logger)
		return
	}

	if err := h.carts.Clear(r.Context(), customerID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// mutateItem runs a single-item cart mutation identified by the productID
// path value.
func (h *CartHandler) mutateItem(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, customerID, productID uuid.UUID) (*cart.View, error),
) {
	customerID, ok := middleware.CustomerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeInternalError, "customer identity missing", h.logger)
		return
	}

	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid product ID format", h.logger)
		return
	}

	view, err := op(r.Context(), customerID, productID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
