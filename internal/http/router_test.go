package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_foodcourt/internal/cart"
	"github.com/fjod/go_foodcourt/internal/catalog"
	"github.com/fjod/go_foodcourt/internal/checkout"
	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/fjod/go_foodcourt/internal/order"
	"github.com/fjod/go_foodcourt/internal/payment"
	"github.com/fjod/go_foodcourt/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	handler  http.Handler
	sessions *session.Store
	menus    *catalog.MemoryRepository
}

type apiOptions struct {
	policy   cart.Policy
	approved bool
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedCatalog(t *testing.T, repo *catalog.MemoryRepository) {
	ctx := context.Background()
	require.NoError(t, repo.UpsertRestaurant(ctx, domain.Restaurant{ID: "r-pizza", Name: "Slice Club", IsOpen: true}))
	require.NoError(t, repo.UpsertRestaurant(ctx, domain.Restaurant{ID: "r-wok", Name: "Wok This Way", IsOpen: true}))
	require.NoError(t, repo.UpsertRestaurant(ctx, domain.Restaurant{ID: "r-closed", Name: "Night Owl", IsOpen: false}))

	require.NoError(t, repo.UpsertMenuItem(ctx, domain.MenuItem{
		ID:           "margherita",
		RestaurantID: "r-pizza",
		Name:         "Margherita",
		Price:        dec("249.00"),
		IsVeg:        true,
		Available:    true,
		Customizations: []domain.CustomizationGroup{{
			ID:            "size",
			Name:          "Size",
			Required:      true,
			MaxSelections: 1,
			Options: []domain.CustomizationOption{
				{ID: "regular", Name: "Regular", Price: decimal.Zero},
				{ID: "large", Name: "Large", Price: dec("120.50")},
			},
		}},
	}))
	require.NoError(t, repo.UpsertMenuItem(ctx, domain.MenuItem{
		ID: "noodles", RestaurantID: "r-wok", Name: "Hakka Noodles", Price: dec("180"), Available: true,
	}))
	require.NoError(t, repo.UpsertMenuItem(ctx, domain.MenuItem{
		ID: "owl-burger", RestaurantID: "r-closed", Name: "Owl Burger", Price: dec("150"), Available: true,
	}))
}

func newTestAPI(t *testing.T, opts apiOptions) *testAPI {
	t.Helper()

	menus := catalog.NewMemoryRepository()
	seedCatalog(t, menus)
	catalogService := catalog.NewService(menus, catalog.NopCache{}, zap.NewNop())

	sessions := session.NewStore(session.WithPolicy(opts.policy))
	t.Cleanup(sessions.Close)

	orders := order.NewService(order.NewMemoryRepository())
	gateway := payment.NewMockGateway(payment.FixedStatus{Approved: opts.approved, Reason: payment.RefusalInsufficientFunds})
	checkoutService := checkout.NewService(orders, gateway, checkout.PricingConfig{
		TaxRate:     decimal.Zero,
		DeliveryFee: dec("10"),
		Currency:    "INR",
	})

	handler := NewRouter(Handlers{
		Cart:     NewCartHandler(sessions, catalogService, 5*time.Second),
		Menu:     NewMenuHandler(catalogService, 5*time.Second),
		Checkout: NewCheckoutHandler(checkoutService, sessions, 5*time.Second),
		Orders:   NewOrdersHandler(orders, 5*time.Second),
	}, zap.NewNop(), 5*time.Second)

	return &testAPI{handler: handler, sessions: sessions, menus: menus}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, userID string, role Role) *httptest.ResponseRecorder {
	t.Helper()
	return a.doWithHeaders(t, method, path, body, userID, role, nil)
}

func (a *testAPI) doWithHeaders(t *testing.T, method, path string, body any, userID string, role Role, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", string(role))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// cartOf returns the cart a user reaches without X-Session-ID.
func (a *testAPI) cartOf(userID string) *cart.Engine {
	return a.sessions.Get(cartKey(userID, ""))
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func largeMargherita() AddItemRequestDTO {
	return AddItemRequestDTO{
		RestaurantID:   "r-pizza",
		ItemID:         "margherita",
		Customizations: []catalog.SelectionRequest{{GroupID: "size", OptionIDs: []string{"large"}}},
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})

	rec := api.do(t, http.MethodGet, "/health", nil, "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})

	rec := api.do(t, http.MethodGet, "/api/v1/cart", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeBody[ErrorResponse](t, rec).Code)

	rec = api.do(t, http.MethodGet, "/api/v1/cart", nil, "u1", "superuser")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCart_AddMergesAndTotals(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})

	rec := api.do(t, http.MethodPost, "/api/v1/cart/items", largeMargherita(), "u1", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/v1/cart/items", largeMargherita(), "u1", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	snap := decodeBody[cart.Snapshot](t, rec)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	assert.Equal(t, 2, snap.TotalItemCount)
	assert.True(t, dec("739").Equal(snap.TotalPrice), snap.TotalPrice.String())
	require.Len(t, snap.Groups, 1)
	assert.Equal(t, "Slice Club", snap.Groups[0].RestaurantName)

	// carts are per user
	rec = api.do(t, http.MethodGet, "/api/v1/cart", nil, "u2", "")
	assert.Empty(t, decodeBody[cart.Snapshot](t, rec).Items)
}

func TestCart_AddErrors(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"unknown item", AddItemRequestDTO{RestaurantID: "r-pizza", ItemID: "calzone"}, http.StatusNotFound, "not_found"},
		{"unknown restaurant", AddItemRequestDTO{RestaurantID: "r-none", ItemID: "x"}, http.StatusNotFound, "not_found"},
		{"closed restaurant", AddItemRequestDTO{RestaurantID: "r-closed", ItemID: "owl-burger"}, http.StatusUnprocessableEntity, "failed_precondition"},
		{"missing required group", AddItemRequestDTO{RestaurantID: "r-pizza", ItemID: "margherita"}, http.StatusBadRequest, "invalid_argument"},
		{"missing ids", AddItemRequestDTO{}, http.StatusBadRequest, "invalid_request"},
		{"unknown field", map[string]string{"product_id": "1"}, http.StatusBadRequest, "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/cart/items", tt.body, "u1", "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeBody[ErrorResponse](t, rec).Code)
		})
	}
	assert.Zero(t, api.cartOf("u1").Len())
}

func TestCart_UpdateRemoveClear(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})

	rec := api.do(t, http.MethodPost, "/api/v1/cart/items", largeMargherita(), "u1", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	key := decodeBody[cart.Snapshot](t, rec).Items[0].IdentityKey

	rec = api.do(t, http.MethodPut, "/api/v1/cart/items/"+key, map[string]int{"quantity": 3}, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeBody[cart.Snapshot](t, rec)
	assert.Equal(t, 3, snap.TotalItemCount)
	assert.True(t, dec("1108.5").Equal(snap.TotalPrice), snap.TotalPrice.String())

	rec = api.do(t, http.MethodPut, "/api/v1/cart/items/"+key, map[string]int{"quantity": -1}, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decodeBody[cart.Snapshot](t, rec).TotalItemCount)

	rec = api.do(t, http.MethodPut, "/api/v1/cart/items/"+key, map[string]string{}, "u1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/v1/cart/items/unknown", nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[cart.Snapshot](t, rec).Items, 1)

	rec = api.do(t, http.MethodDelete, "/api/v1/cart/items/"+key, nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[cart.Snapshot](t, rec).Items)

	api.do(t, http.MethodPost, "/api/v1/cart/items", largeMargherita(), "u1", "")
	rec = api.do(t, http.MethodDelete, "/api/v1/cart", nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[cart.Snapshot](t, rec).TotalPrice.IsZero())
}

func TestCart_SessionHeaderSelectsSeparateCart(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})
	noodles := AddItemRequestDTO{RestaurantID: "r-wok", ItemID: "noodles"}

	rec := api.do(t, http.MethodPost, "/api/v1/cart/items", noodles, "a/b", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.doWithHeaders(t, http.MethodGet, "/api/v1/cart", nil, "a", "", map[string]string{"X-Session-ID": "b"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[cart.Snapshot](t, rec).Items)

	rec = api.doWithHeaders(t, http.MethodPost, "/api/v1/cart/items", noodles, "a", "", map[string]string{"X-Session-ID": "b"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/v1/cart", nil, "a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[cart.Snapshot](t, rec).Items)

	assert.Equal(t, 1, api.cartOf("a/b").TotalItemCount())
	assert.Equal(t, 1, api.sessions.Get(cartKey("a", "b")).TotalItemCount())
}

func TestCart_RestaurantView(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})

	api.do(t, http.MethodPost, "/api/v1/cart/items", largeMargherita(), "u1", "")
	api.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{RestaurantID: "r-wok", ItemID: "noodles"}, "u1", "")

	rec := api.do(t, http.MethodGet, "/api/v1/cart/restaurants/r-wok", nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[RestaurantCartDTO](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "noodles", view.Items[0].SourceItemID)
	assert.True(t, dec("180").Equal(view.Subtotal))

	rec = api.do(t, http.MethodGet, "/api/v1/cart/restaurants/r-none", nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeBody[RestaurantCartDTO](t, rec)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.True(t, view.Subtotal.IsZero())
}

func TestCart_SingleRestaurantPolicy(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true, policy: cart.SingleRestaurant{}})

	rec := api.do(t, http.MethodPost, "/api/v1/cart/items", largeMargherita(), "u1", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/cart/can-add?restaurant_id=r-wok", nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[cart.Decision](t, rec).Allowed)

	rec = api.do(t, http.MethodGet, "/api/v1/cart/can-add", nil, "u1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{RestaurantID: "r-wok", ItemID: "noodles"}, "u1", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	errResp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "policy_rejected", errResp.Code)
	assert.NotEmpty(t, errResp.Error)
}

func TestMenu_VendorOperations(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})

	rec := api.do(t, http.MethodGet, "/api/v1/restaurants", nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Restaurant](t, rec), 3)

	rec = api.do(t, http.MethodGet, "/api/v1/restaurants/r-pizza/menu", nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[catalog.Menu](t, rec).Items, 1)

	garlicBread := domain.MenuItem{Name: "Garlic Bread", Price: dec("99"), Available: true}
	rec = api.do(t, http.MethodPut, "/api/v1/restaurants/r-pizza/menu/garlic-bread", garlicBread, "u1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/v1/restaurants/r-pizza/menu/garlic-bread", garlicBread, "v1", RoleVendor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "garlic-bread", decodeBody[domain.MenuItem](t, rec).ID)

	rec = api.do(t, http.MethodPut, "/api/v1/restaurants/r-pizza/menu/garlic-bread/availability", map[string]bool{"available": false}, "v1", RoleVendor)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{RestaurantID: "r-pizza", ItemID: "garlic-bread"}, "u1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/v1/restaurants/r-pizza/menu/ghost/availability", map[string]bool{"available": true}, "v1", RoleVendor)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/v1/restaurants/r-new", domain.Restaurant{Name: "New Place", IsOpen: true}, "v1", RoleVendor)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(t, http.MethodPut, "/api/v1/restaurants/r-new", domain.Restaurant{Name: "New Place", IsOpen: true}, "a1", RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func checkoutBody(key string) CheckoutRequestDTO {
	return CheckoutRequestDTO{IdempotencyKey: key, PaymentToken: "tok", ServiceType: domain.ServiceTypeTakeaway}
}

func TestCheckout_PlacesOrdersAndReplays(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})

	api.do(t, http.MethodPost, "/api/v1/cart/items", largeMargherita(), "u1", "")
	api.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{RestaurantID: "r-wok", ItemID: "noodles"}, "u1", "")

	rec := api.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody("k-1"), "u1", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decodeBody[checkout.Result](t, rec)
	assert.Equal(t, domain.CheckoutStatusCompleted, result.Status)
	require.Len(t, result.Orders, 2)
	assert.True(t, dec("569.5").Equal(result.TotalAmount), result.TotalAmount.String())
	assert.Zero(t, api.cartOf("u1").Len())

	rec = api.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody("k-1"), "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	replayed := decodeBody[checkout.Result](t, rec)
	assert.True(t, replayed.Replayed)
	assert.Equal(t, result.CheckoutID, replayed.CheckoutID)

	rec = api.do(t, http.MethodGet, "/api/v1/orders", nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Order](t, rec), 2)

	rec = api.do(t, http.MethodGet, "/api/v1/orders", nil, "u2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCheckout_Errors(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: false})

	rec := api.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody("k-1"), "u1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	api.do(t, http.MethodPost, "/api/v1/cart/items", largeMargherita(), "u1", "")

	rec = api.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(""), "u1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody("k-2"), "u1", "")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "payment_declined", decodeBody[ErrorResponse](t, rec).Code)
	assert.Equal(t, 1, api.cartOf("u1").Len())
}

func TestCheckout_IdempotencyKeyHeader(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})
	api.do(t, http.MethodPost, "/api/v1/cart/items", largeMargherita(), "u1", "")

	raw, err := json.Marshal(checkoutBody(""))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(raw))
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("Idempotency-Key", "hdr-1")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "hdr-1", decodeBody[checkout.Result](t, rec).Orders[0].IdempotencyKey)
}

func TestCheckout_ConcurrentCheckoutsOfOneCartChargeOnce(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})
	api.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{RestaurantID: "r-wok", ItemID: "noodles"}, "u1", "")

	const attempts = 8
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, _ := json.Marshal(checkoutBody(fmt.Sprintf("k-%d", i)))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(raw))
			req.Header.Set("X-User-ID", "u1")
			rec := httptest.NewRecorder()
			api.handler.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		default:
			assert.Equal(t, http.StatusUnprocessableEntity, code)
		}
	}
	assert.Equal(t, 1, created)

	rec := api.do(t, http.MethodGet, "/api/v1/orders", nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Order](t, rec), 1)
	assert.Zero(t, api.cartOf("u1").Len())
}

func placeOrder(t *testing.T, api *testAPI, userID string) domain.Order {
	t.Helper()
	api.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{RestaurantID: "r-wok", ItemID: "noodles"}, userID, "")
	rec := api.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody("k-"+userID), userID, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return *decodeBody[checkout.Result](t, rec).Orders[0]
}

func TestOrders_Lifecycle(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})
	o := placeOrder(t, api, "u1")
	path := "/api/v1/orders/" + o.ID.String()

	rec := api.do(t, http.MethodGet, path, nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.OrderStatusPlaced, decodeBody[domain.Order](t, rec).Status)

	rec = api.do(t, http.MethodGet, path, nil, "u2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, path, nil, "v1", RoleVendor)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPut, path+"/status", StatusRequestDTO{Status: domain.OrderStatusConfirmed}, "u1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPut, path+"/status", StatusRequestDTO{Status: domain.OrderStatusServed}, "v1", RoleVendor)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPut, path+"/status", StatusRequestDTO{Status: "BAKING"}, "v1", RoleVendor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPut, path+"/status", StatusRequestDTO{Status: domain.OrderStatusConfirmed}, "v1", RoleVendor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.OrderStatusConfirmed, decodeBody[domain.Order](t, rec).Status)

	// confirmed orders are out of the customer's hands
	rec = api.do(t, http.MethodPost, path+"/cancel", CancelRequestDTO{Reason: "changed my mind"}, "u1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, path+"/cancel", CancelRequestDTO{Reason: "out of noodles"}, "v1", RoleVendor)
	require.Equal(t, http.StatusOK, rec.Code)
	cancelled := decodeBody[domain.Order](t, rec)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, "out of noodles", cancelled.CancelReason)

	rec = api.do(t, http.MethodGet, "/api/v1/restaurants/r-wok/orders", nil, "v1", RoleVendor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Order](t, rec), 1)

	rec = api.do(t, http.MethodGet, "/api/v1/restaurants/r-wok/orders", nil, "u1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrders_CustomerCancel(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})
	o := placeOrder(t, api, "u1")
	path := "/api/v1/orders/" + o.ID.String() + "/cancel"

	rec := api.do(t, http.MethodPost, path, nil, "u2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, path, nil, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.OrderStatusCancelled, decodeBody[domain.Order](t, rec).Status)
}

func TestOrders_InvalidID(t *testing.T) {
	api := newTestAPI(t, apiOptions{approved: true})

	rec := api.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", nil, "u1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_order_id", decodeBody[ErrorResponse](t, rec).Code)
}
