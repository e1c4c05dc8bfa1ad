package handler

import (
	"encoding/json"
	"net/http"

	"storekart/internal/checkout"
	"storekart/internal/middleware"
	"storekart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout requests.
type CheckoutHandler struct {
	coordinator checkout.Coordinator
	logger      zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(coordinator checkout.Coordinator, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		coordinator: coordinator,
		logger:      logger.With().Str("handler", "checkout").Logger(),
	}
}

// checkoutRequest is the payload for POST /api/checkout.
type checkoutRequest struct {
	AddressID     uuid.UUID `json:"addressId"`
	PaymentMethod string    `json:"paymentMethod"`
	CouponCode    string    `json:"couponCode,omitempty"`
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.CustomerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeInternalError, "customer identity missing", h.logger)
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.AddressID == uuid.Nil {
		writeServiceError(w, model.ErrInvalidAddress, h.logger)
		return
	}

	paymentMethod, ok := model.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		writeServiceError(w, model.ErrInvalidPaymentMethod, h.logger)
		return
	}

	result, err := h.coordinator.Checkout(r.Context(), customerID, checkout.Input{
		AddressID:     req.AddressID,
		PaymentMethod: paymentMethod,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
