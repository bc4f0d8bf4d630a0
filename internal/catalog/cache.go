package catalog

import (
	"context"
	"errors"
)

// MenuCache holds whole menus keyed by restaurant id.
type MenuCache interface {
	Get(ctx context.Context, restaurantID string) (*Menu, error)
	Set(ctx context.Context, restaurantID string, menu *Menu) error
	Delete(ctx context.Context, restaurantID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache never stores anything. Used when REDIS_ADDR is empty.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*Menu, error) { return nil, ErrCacheMiss }
func (NopCache) Set(context.Context, string, *Menu) error   { return nil }
func (NopCache) Delete(context.Context, string) error       { return nil }
