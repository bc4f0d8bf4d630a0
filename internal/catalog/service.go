package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/fjod/go_foodcourt/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Menu is a restaurant with its items, the unit the cache stores.
type Menu struct {
	Restaurant domain.Restaurant `json:"restaurant"`
	Items      []domain.MenuItem `json:"items"`
}

// Item returns the menu item with the given id.
func (m *Menu) Item(itemID string) (domain.MenuItem, bool) {
	for _, item := range m.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return domain.MenuItem{}, false
}

type Service struct {
	repo  Repository
	cache MenuCache
	sfg   singleflight.Group // prevents cache stampede
	log   *zap.Logger
}

func NewService(repo Repository, cache MenuCache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func (s *Service) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	return s.repo.ListRestaurants(ctx)
}

func (s *Service) GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	return s.repo.GetRestaurant(ctx, restaurantID)
}

func (s *Service) UpsertRestaurant(ctx context.Context, restaurant domain.Restaurant) error {
	if restaurant.ID == "" || restaurant.Name == "" {
		return fmt.Errorf("%w: restaurant needs an id and a name", ErrInvalidMenuItem)
	}
	if err := s.repo.UpsertRestaurant(ctx, restaurant); err != nil {
		return err
	}
	s.invalidateCache(ctx, restaurant.ID)
	return nil
}

// GetMenu returns the restaurant and its items, serving from cache when possible.
func (s *Service) GetMenu(ctx context.Context, restaurantID string) (*Menu, error) {
	v, err, _ := s.sfg.Do(restaurantID, func() (interface{}, error) {
		menu, err := s.cache.Get(ctx, restaurantID)
		if err == nil {
			return menu, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			logger.FromContext(ctx).Warn("menu cache get failed", zap.String("restaurant_id", restaurantID), zap.Error(err))
		}

		restaurant, err := s.repo.GetRestaurant(ctx, restaurantID)
		if err != nil {
			return nil, err
		}
		items, err := s.repo.GetMenu(ctx, restaurantID)
		if err != nil {
			return nil, err
		}
		menu = &Menu{Restaurant: *restaurant, Items: items}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(setCtx, restaurantID, menu); err != nil {
				s.log.Warn("menu cache set failed", zap.String("restaurant_id", restaurantID), zap.Error(err))
			}
		}()

		return menu, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Menu), nil
}

func (s *Service) GetMenuItem(ctx context.Context, restaurantID, itemID string) (*domain.MenuItem, *domain.Restaurant, error) {
	menu, err := s.GetMenu(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}
	item, ok := menu.Item(itemID)
	if !ok {
		return nil, nil, ErrMenuItemNotFound
	}
	item = cloneMenuItem(item)
	restaurant := menu.Restaurant
	return &item, &restaurant, nil
}

// UpsertMenuItem creates or replaces a menu item of an existing restaurant.
func (s *Service) UpsertMenuItem(ctx context.Context, item domain.MenuItem) error {
	if err := validateMenuItem(item); err != nil {
		return err
	}
	if _, err := s.repo.GetRestaurant(ctx, item.RestaurantID); err != nil {
		return err
	}
	if err := s.repo.UpsertMenuItem(ctx, item); err != nil {
		logger.FromContext(ctx).Error("upsert menu item failed", zap.String("item_id", item.ID), zap.Error(err))
		return err
	}
	s.invalidateCache(ctx, item.RestaurantID)
	return nil
}

func (s *Service) SetAvailability(ctx context.Context, restaurantID, itemID string, available bool) error {
	if err := s.repo.SetAvailability(ctx, restaurantID, itemID, available); err != nil {
		return err
	}
	s.invalidateCache(ctx, restaurantID)
	return nil
}

func (s *Service) invalidateCache(ctx context.Context, restaurantID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, restaurantID); err != nil {
		logger.FromContext(ctx).Warn("menu cache invalidate failed", zap.String("restaurant_id", restaurantID), zap.Error(err))
	}
}

func validateMenuItem(item domain.MenuItem) error {
	switch {
	case item.ID == "" || item.RestaurantID == "" || item.Name == "":
		return fmt.Errorf("%w: id, restaurant_id and name are required", ErrInvalidMenuItem)
	case item.Price.LessThan(decimal.Zero):
		return fmt.Errorf("%w: negative price", ErrInvalidMenuItem)
	}
	for _, g := range item.Customizations {
		if g.ID == "" {
			return fmt.Errorf("%w: customization group without id", ErrInvalidMenuItem)
		}
		if g.MaxSelections < 0 {
			return fmt.Errorf("%w: group %s has negative max_selections", ErrInvalidMenuItem, g.ID)
		}
		for _, o := range g.Options {
			if o.ID == "" || o.Price.LessThan(decimal.Zero) {
				return fmt.Errorf("%w: group %s has an invalid option", ErrInvalidMenuItem, g.ID)
			}
		}
	}
	return nil
}
