package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"storekart/internal/model"
	"storekart/internal/order"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdminOrderHandler handles the admin fulfilment surface.
type AdminOrderHandler struct {
	orders order.Manager
	logger zerolog.Logger
}

// NewAdminOrderHandler creates a new admin order handler.
func NewAdminOrderHandler(orders order.Manager, logger zerolog.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{
		orders: orders,
		logger: logger.With().Str("handler", "admin-order").Logger(),
	}
}

// advanceRequest is the payload for POST /api/admin/orders/{id}/advance.
type advanceRequest struct {
	Status string `json:"status"`
}

// Advance handles POST /api/admin/orders/{id}/advance.
func (h *AdminOrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid order ID format", h.logger)
		return
	}

	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	next, ok := model.ParseOrderStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "unknown order status", h.logger)
		return
	}

	advanced, err := h.orders.Advance(r.Context(), orderID, next)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, advanced)
}

// List handles GET /api/admin/orders?status=&limit=&offset=.
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status, ok := model.ParseOrderStatus(r.URL.Query().Get("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "unknown order status", h.logger)
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 200 || offset < 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid pagination", h.logger)
		return
	}

	orders, err := h.orders.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return value
}
