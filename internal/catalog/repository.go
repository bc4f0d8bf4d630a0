package catalog

import (
	"context"
	"errors"

	"github.com/fjod/go_foodcourt/internal/domain"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrInvalidMenuItem    = errors.New("invalid menu item")
)

// Repository is the catalog storage used by Service.
type Repository interface {
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error)
	UpsertRestaurant(ctx context.Context, restaurant domain.Restaurant) error
	GetMenu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
	UpsertMenuItem(ctx context.Context, item domain.MenuItem) error
	SetAvailability(ctx context.Context, restaurantID, itemID string, available bool) error
}
