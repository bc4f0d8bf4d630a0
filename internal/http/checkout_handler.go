package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_foodcourt/internal/checkout"
	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/fjod/go_foodcourt/internal/session"
)

type Checkouter interface {
	Checkout(ctx context.Context, req checkout.Request) (*checkout.Result, error)
}

type CheckoutHandler struct {
	checkout Checkouter
	sessions *session.Store
	timeout  time.Duration
}

func NewCheckoutHandler(c Checkouter, sessions *session.Store, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{checkout: c, sessions: sessions, timeout: timeout}
}

type CheckoutRequestDTO struct {
	IdempotencyKey string             `json:"idempotency_key"`
	PaymentToken   string             `json:"payment_token"`
	ServiceType    domain.ServiceType `json:"service_type"`
}

// Checkout pays for the caller's cart. The Idempotency-Key header is used when
// the body does not carry a key.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	engine, unlock, err := h.sessions.LockCheckout(ctx, sessionID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer unlock()

	result, err := h.checkout.Checkout(ctx, checkout.Request{
		UserID:         getUserIDFromContext(r.Context()),
		IdempotencyKey: req.IdempotencyKey,
		PaymentToken:   req.PaymentToken,
		ServiceType:    req.ServiceType,
		Cart:           engine,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	respondJSON(w, status, result)
}
