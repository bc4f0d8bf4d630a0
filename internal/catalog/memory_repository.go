package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/fjod/go_foodcourt/internal/domain"
)

// MemoryRepository keeps the catalog in process. Used for local runs without
// MongoDB and in tests.
type MemoryRepository struct {
	mu          sync.RWMutex
	restaurants map[string]domain.Restaurant
	menus       map[string][]domain.MenuItem
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		restaurants: make(map[string]domain.Restaurant),
		menus:       make(map[string][]domain.MenuItem),
	}
}

func (m *MemoryRepository) ListRestaurants(context.Context) ([]domain.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Restaurant, 0, len(m.restaurants))
	for _, r := range m.restaurants {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) GetRestaurant(_ context.Context, restaurantID string) (*domain.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.restaurants[restaurantID]
	if !ok {
		return nil, ErrRestaurantNotFound
	}
	return &r, nil
}

func (m *MemoryRepository) UpsertRestaurant(_ context.Context, restaurant domain.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[restaurant.ID] = restaurant
	return nil
}

func (m *MemoryRepository) GetMenu(_ context.Context, restaurantID string) ([]domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := m.menus[restaurantID]
	out := make([]domain.MenuItem, 0, len(items))
	for _, item := range items {
		out = append(out, cloneMenuItem(item))
	}
	return out, nil
}

func (m *MemoryRepository) UpsertMenuItem(_ context.Context, item domain.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.menus[item.RestaurantID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = cloneMenuItem(item)
			return nil
		}
	}
	m.menus[item.RestaurantID] = append(items, cloneMenuItem(item))
	return nil
}

func (m *MemoryRepository) SetAvailability(_ context.Context, restaurantID, itemID string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.menus[restaurantID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Available = available
			return nil
		}
	}
	return ErrMenuItemNotFound
}

func cloneMenuItem(item domain.MenuItem) domain.MenuItem {
	if item.Customizations == nil {
		return item
	}
	groups := make([]domain.CustomizationGroup, len(item.Customizations))
	for i, g := range item.Customizations {
		g.Options = append([]domain.CustomizationOption(nil), g.Options...)
		groups[i] = g
	}
	item.Customizations = groups
	return item
}
