package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetForUser(ctx context.Context, id uuid.UUID, userID string) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Order, error)
	ListForRestaurant(ctx context.Context, restaurantID string) ([]*domain.Order, error)
	Advance(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (*domain.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*domain.Order, error)
	CancelForUser(ctx context.Context, id uuid.UUID, userID, reason string) (*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
}

func NewOrdersHandler(orders OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout}
}

type CancelRequestDTO struct {
	Reason string `json:"reason"`
}

type StatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListForUser(ctx, getUserIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOrders(w, orders)
}

func (h *OrdersHandler) ListRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListForRestaurant(ctx, chi.URLParam(r, "restaurant_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOrders(w, orders)
}

// GetOrder returns any order to staff and only their own orders to customers.
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var o *domain.Order
	var err error
	if isStaff(r.Context()) {
		o, err = h.orders.Get(ctx, id)
	} else {
		o, err = h.orders.GetForUser(ctx, id, getUserIDFromContext(r.Context()))
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// CancelOrder lets staff cancel any live order; customers only before the
// restaurant confirms it.
func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}
	var req CancelRequestDTO
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	var o *domain.Order
	var err error
	if isStaff(r.Context()) {
		o, err = h.orders.Cancel(ctx, id, req.Reason)
	} else {
		o, err = h.orders.CancelForUser(ctx, id, getUserIDFromContext(r.Context()), req.Reason)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}
	var req StatusRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Status.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	o, err := h.orders.Advance(ctx, id, req.Status)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func isStaff(ctx context.Context) bool {
	role := getRoleFromContext(ctx)
	return role == RoleVendor || role == RoleAdmin
}

// respondOrders always writes a JSON array, never null.
func respondOrders(w http.ResponseWriter, orders []*domain.Order) {
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}
