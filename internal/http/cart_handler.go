package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_foodcourt/internal/catalog"
	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/fjod/go_foodcourt/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// MenuLookup resolves a menu item together with its restaurant.
type MenuLookup interface {
	GetMenuItem(ctx context.Context, restaurantID, itemID string) (*domain.MenuItem, *domain.Restaurant, error)
}

type CartHandler struct {
	sessions *session.Store
	menu     MenuLookup
	timeout  time.Duration
}

func NewCartHandler(sessions *session.Store, menu MenuLookup, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		menu:     menu,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	RestaurantID        string                     `json:"restaurant_id"`
	ItemID              string                     `json:"item_id"`
	Customizations      []catalog.SelectionRequest `json:"customizations"`
	SpecialInstructions string                     `json:"special_instructions"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type RestaurantCartDTO struct {
	RestaurantID string                `json:"restaurant_id"`
	Items        []domain.CartLineItem `json:"items"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
}

// sessionID picks the cart for the request. A shopper may juggle several carts
// with X-Session-ID; otherwise the cart is keyed by user.
func sessionID(r *http.Request) string {
	return cartKey(getUserIDFromContext(r.Context()), r.Header.Get("X-Session-ID"))
}

// cartKey quotes both parts so no user and session pair can spell another.
func cartKey(userID, session string) string {
	if session == "" {
		return strconv.Quote(userID)
	}
	return strconv.Quote(userID) + "/" + strconv.Quote(session)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sessions.Get(sessionID(r)).Snapshot())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RestaurantID == "" || req.ItemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "restaurant_id and item_id are required")
		return
	}

	item, restaurant, err := h.menu.GetMenuItem(ctx, req.RestaurantID, req.ItemID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if !restaurant.IsOpen {
		handleError(w, r, fmt.Errorf("%w: %s", catalog.ErrRestaurantClosed, restaurant.ID))
		return
	}
	selected, err := catalog.ResolveSelection(*item, req.Customizations)
	if err != nil {
		handleError(w, r, err)
		return
	}

	engine := h.sessions.Get(sessionID(r))
	if err := engine.AddItem(*item, restaurant.ID, restaurant.Name, selected, req.SpecialInstructions); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, engine.Snapshot())
}

// UpdateQuantity sets the quantity of a line. Zero removes it; negative values
// and unknown keys leave the cart unchanged.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	engine := h.sessions.Get(sessionID(r))
	engine.UpdateQuantity(chi.URLParam(r, "item_key"), *req.Quantity)
	respondJSON(w, http.StatusOK, engine.Snapshot())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	engine := h.sessions.Get(sessionID(r))
	engine.RemoveItem(chi.URLParam(r, "item_key"))
	respondJSON(w, http.StatusOK, engine.Snapshot())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	engine := h.sessions.Get(sessionID(r))
	engine.Clear()
	respondJSON(w, http.StatusOK, engine.Snapshot())
}

func (h *CartHandler) GetRestaurantItems(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurant_id")
	engine := h.sessions.Get(sessionID(r))

	items := engine.ItemsForRestaurant(restaurantID)
	if items == nil {
		items = []domain.CartLineItem{}
	}
	respondJSON(w, http.StatusOK, RestaurantCartDTO{
		RestaurantID: restaurantID,
		Items:        items,
		Subtotal:     engine.RestaurantSubtotal(restaurantID),
	})
}

func (h *CartHandler) CanAdd(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "restaurant_id is required")
		return
	}
	respondJSON(w, http.StatusOK, h.sessions.Get(sessionID(r)).CanAddToCart(restaurantID))
}
