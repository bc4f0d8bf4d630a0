package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Cart     *CartHandler
	Menu     *MenuHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
}

// NewRouter wires the REST API. Everything under /api/v1 requires a user.
func NewRouter(h Handlers, log *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	staff := RequireRole(RoleVendor, RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(MockAuthMiddleware)
		r.Use(LoggerMiddleware(log))

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", h.Menu.ListRestaurants)
			r.With(RequireRole(RoleAdmin)).Put("/{restaurant_id}", h.Menu.UpsertRestaurant)
			r.Get("/{restaurant_id}/menu", h.Menu.GetMenu)
			r.With(staff).Put("/{restaurant_id}/menu/{item_id}", h.Menu.UpsertMenuItem)
			r.With(staff).Put("/{restaurant_id}/menu/{item_id}/availability", h.Menu.SetAvailability)
			r.With(staff).Get("/{restaurant_id}/orders", h.Orders.ListRestaurantOrders)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{item_key}", h.Cart.UpdateQuantity)
			r.Delete("/items/{item_key}", h.Cart.RemoveItem)
			r.Get("/restaurants/{restaurant_id}", h.Cart.GetRestaurantItems)
			r.Get("/can-add", h.Cart.CanAdd)
		})

		r.Post("/checkout", h.Checkout.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Get("/{order_id}", h.Orders.GetOrder)
			r.Post("/{order_id}/cancel", h.Orders.CancelOrder)
			r.With(staff).Put("/{order_id}/status", h.Orders.UpdateStatus)
		})
	})

	return r
}
