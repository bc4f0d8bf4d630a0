package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/fjod/go_foodcourt/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCancelNotAllowed is returned when a customer cancels an order the
// restaurant has already accepted.
var ErrCancelNotAllowed = errors.New("order can no longer be cancelled by the customer")

// Service owns the order status lifecycle.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateOrders persists freshly placed orders.
func (s *Service) CreateOrders(ctx context.Context, orders []*domain.Order) error {
	for _, o := range orders {
		if o.Status != domain.OrderStatusPlaced {
			return fmt.Errorf("%w: new order %s has status %s", ErrIllegalTransition, o.ID, o.Status)
		}
	}
	if err := s.repo.CreateOrders(ctx, orders); err != nil {
		return err
	}
	for _, o := range orders {
		logger.FromContext(ctx).Info("order placed",
			zap.Stringer("order_id", o.ID),
			zap.String("restaurant_id", o.RestaurantID),
			zap.String("total", o.Pricing.TotalAmount.String()))
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

// GetForUser returns the order only if it belongs to userID.
func (s *Service) GetForUser(ctx context.Context, id uuid.UUID, userID string) (*domain.Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.ListOrdersByUserID(ctx, userID)
}

func (s *Service) ListForRestaurant(ctx context.Context, restaurantID string) ([]*domain.Order, error) {
	return s.repo.ListOrdersByRestaurant(ctx, restaurantID)
}

func (s *Service) ListByIdempotencyKey(ctx context.Context, userID, key string) ([]*domain.Order, error) {
	return s.repo.ListOrdersByIdempotencyKey(ctx, userID, key)
}

// Advance moves an order to the given status. Only the next status in the
// flow or CANCELLED is accepted.
func (s *Service) Advance(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (*domain.Order, error) {
	return s.transition(ctx, id, to, "", nil)
}

// Cancel cancels any non-terminal order.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusCancelled, reason, nil)
}

// CancelForUser lets a customer cancel their own order while it is still PLACED.
func (s *Service) CancelForUser(ctx context.Context, id uuid.UUID, userID, reason string) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusCancelled, reason, func(o *domain.Order) error {
		if o.UserID != userID {
			return ErrOrderNotFound
		}
		if o.Status != domain.OrderStatusPlaced {
			return ErrCancelNotAllowed
		}
		return nil
	})
}

func (s *Service) transition(
	ctx context.Context,
	id uuid.UUID,
	to domain.OrderStatus,
	reason string,
	check func(*domain.Order) error) (*domain.Order, error) {

	current, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(current); err != nil {
			return nil, err
		}
	}
	if !domain.CanTransitionOrder(current.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current.Status, to)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, to, reason)
	if err != nil {
		logger.FromContext(ctx).Warn("order status update failed",
			zap.Stringer("order_id", id),
			zap.Stringer("from", current.Status),
			zap.Stringer("to", to),
			zap.Error(err))
		return nil, err
	}

	logger.FromContext(ctx).Info("order status changed",
		zap.Stringer("order_id", id),
		zap.Stringer("from", current.Status),
		zap.Stringer("to", to))
	return updated, nil
}
