package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_foodcourt/internal/cart"
	"github.com/fjod/go_foodcourt/internal/catalog"
	"github.com/fjod/go_foodcourt/internal/checkout"
	"github.com/fjod/go_foodcourt/internal/order"
	"github.com/fjod/go_foodcourt/internal/payment"
	"github.com/fjod/go_foodcourt/pkg/logger"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20 // 1MB

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleError converts service errors to HTTP status codes.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var policyErr *cart.PolicyError
	var declined *payment.DeclinedError

	switch {
	case errors.As(err, &policyErr):
		respondError(w, http.StatusConflict, "policy_rejected", policyErr.Reason)
	case errors.As(err, &declined):
		respondError(w, http.StatusPaymentRequired, "payment_declined", declined.Reason.String())

	case errors.Is(err, catalog.ErrRestaurantNotFound),
		errors.Is(err, catalog.ErrMenuItemNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, catalog.ErrInvalidCustomization),
		errors.Is(err, catalog.ErrInvalidMenuItem),
		errors.Is(err, cart.ErrInvalidMenuItem),
		errors.Is(err, checkout.ErrInvalidRequest),
		errors.Is(err, payment.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())

	case errors.Is(err, catalog.ErrItemUnavailable),
		errors.Is(err, catalog.ErrRestaurantClosed),
		errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "failed_precondition", err.Error())

	case errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, order.ErrCancelNotAllowed),
		errors.Is(err, order.ErrConcurrentUpdate),
		errors.Is(err, order.ErrDuplicateOrder):
		respondError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, payment.ErrGatewayUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "payment gateway unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")

	default:
		logger.FromContext(r.Context()).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
