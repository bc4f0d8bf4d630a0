package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_foodcourt/internal/catalog"
	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Catalog is the catalog service surface used by the REST layer.
type Catalog interface {
	MenuLookup
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID string) (*catalog.Menu, error)
	UpsertRestaurant(ctx context.Context, restaurant domain.Restaurant) error
	UpsertMenuItem(ctx context.Context, item domain.MenuItem) error
	SetAvailability(ctx context.Context, restaurantID, itemID string, available bool) error
}

type MenuHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewMenuHandler(c Catalog, timeout time.Duration) *MenuHandler {
	return &MenuHandler{catalog: c, timeout: timeout}
}

type AvailabilityRequestDTO struct {
	Available *bool `json:"available"`
}

func (h *MenuHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	restaurants, err := h.catalog.ListRestaurants(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if restaurants == nil {
		restaurants = []domain.Restaurant{}
	}
	respondJSON(w, http.StatusOK, restaurants)
}

func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	menu, err := h.catalog.GetMenu(ctx, chi.URLParam(r, "restaurant_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, menu)
}

func (h *MenuHandler) UpsertRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var restaurant domain.Restaurant
	if !decodeJSON(w, r, &restaurant) {
		return
	}
	restaurant.ID = chi.URLParam(r, "restaurant_id")

	if err := h.catalog.UpsertRestaurant(ctx, restaurant); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, restaurant)
}

// UpsertMenuItem takes the ids from the path, ignoring any in the body.
func (h *MenuHandler) UpsertMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var item domain.MenuItem
	if !decodeJSON(w, r, &item) {
		return
	}
	item.RestaurantID = chi.URLParam(r, "restaurant_id")
	item.ID = chi.URLParam(r, "item_id")

	if err := h.catalog.UpsertMenuItem(ctx, item); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AvailabilityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Available == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "available is required")
		return
	}

	restaurantID, itemID := chi.URLParam(r, "restaurant_id"), chi.URLParam(r, "item_id")
	if err := h.catalog.SetAvailability(ctx, restaurantID, itemID, *req.Available); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
