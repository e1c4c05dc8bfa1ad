package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storekart/internal/model"

	"github.com/rs/zerolog"
)

// statusByCode maps domain error codes to HTTP statuses. Validation errors
// are 400, conflicts with current state are 409, upstream price
// unavailability is 503.
var statusByCode = map[string]int{
	model.ErrCodeEmptyCart:            http.StatusBadRequest,
	model.ErrCodeInvalidAddress:       http.StatusBadRequest,
	model.ErrCodeInvalidCoupon:        http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:      http.StatusBadRequest,
	model.ErrCodeInvalidPaymentMethod: http.StatusBadRequest,
	model.ErrCodeProductUnavailable:   http.StatusBadRequest,
	model.ErrCodeForbidden:            http.StatusForbidden,
	model.ErrCodeNotFound:             http.StatusNotFound,
	model.ErrCodeInsufficientStock:    http.StatusConflict,
	model.ErrCodeInvalidTransition:    http.StatusConflict,
	model.ErrCodeOrderNotCancellable:  http.StatusConflict,
	model.ErrCodePricingUnavailable:   http.StatusServiceUnavailable,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to do.
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error onto the HTTP response. Domain
// errors carry their own status; anything else is an internal error.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		writeError(w, status, domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("unhandled service error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}
