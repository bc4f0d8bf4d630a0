package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("order for this checkout already exists")
	ErrConcurrentUpdate  = errors.New("order status changed concurrently")
	ErrIllegalTransition = errors.New("illegal order status transition")
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is an order event waiting to be published.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// StatusChange is the payload of an OrderStatusChanged event.
type StatusChange struct {
	OrderID      uuid.UUID          `json:"order_id"`
	UserID       string             `json:"user_id"`
	RestaurantID string             `json:"restaurant_id"`
	From         domain.OrderStatus `json:"from"`
	To           domain.OrderStatus `json:"to"`
	Reason       string             `json:"reason,omitempty"`
	ChangedAt    time.Time          `json:"changed_at"`
}

type Repository interface {
	// CreateOrders stores all orders and one OrderPlaced event per order, or nothing.
	CreateOrders(ctx context.Context, orders []*domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	ListOrdersByRestaurant(ctx context.Context, restaurantID string) ([]*domain.Order, error)
	ListOrdersByIdempotencyKey(ctx context.Context, userID, key string) ([]*domain.Order, error)
	// UpdateStatus moves an order from one status to another only if it is
	// still in from, and records an OrderStatusChanged event.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, reason string) (*domain.Order, error)
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	Close() error
}

func statusChangedPayload(o *domain.Order, from domain.OrderStatus, at time.Time) ([]byte, error) {
	return json.Marshal(StatusChange{
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		From:         from,
		To:           o.Status,
		Reason:       o.CancelReason,
		ChangedAt:    at,
	})
}
