package order

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository with the same semantics as the
// postgres one, used when ORDER_STORE=memory and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	orders  map[uuid.UUID]*domain.Order
	seq     map[uuid.UUID]int64 // insertion order
	keys    map[string]struct{} // user|idempotency key|restaurant
	outbox  []*outboxRecord
	nextID  int64
	nextSeq int64
	now     func() time.Time
}

type outboxRecord struct {
	event     OutboxEvent
	processed bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[uuid.UUID]*domain.Order),
		seq:    make(map[uuid.UUID]int64),
		keys:   make(map[string]struct{}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func uniqueKey(o *domain.Order) string {
	return fmt.Sprintf("%q|%q|%q", o.UserID, o.IdempotencyKey, o.RestaurantID)
}

func (m *MemoryRepository) CreateOrders(_ context.Context, orders []*domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		k := uniqueKey(o)
		if _, ok := m.keys[k]; ok {
			return ErrDuplicateOrder
		}
		if _, ok := batch[k]; ok {
			return ErrDuplicateOrder
		}
		if _, ok := m.orders[o.ID]; ok {
			return ErrDuplicateOrder
		}
		batch[k] = struct{}{}
	}

	payloads := make([][]byte, len(orders))
	for i, o := range orders {
		payload, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("failed to marshal order event: %w", err)
		}
		payloads[i] = payload
	}

	for i, o := range orders {
		m.orders[o.ID] = o.Clone()
		m.nextSeq++
		m.seq[o.ID] = m.nextSeq
		m.keys[uniqueKey(o)] = struct{}{}
		m.appendEventLocked(o.ID, EventOrderPlaced, payloads[i])
	}
	return nil
}

func (m *MemoryRepository) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (m *MemoryRepository) ListOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	return m.list(func(o *domain.Order) bool { return o.UserID == userID }, true), nil
}

func (m *MemoryRepository) ListOrdersByRestaurant(_ context.Context, restaurantID string) ([]*domain.Order, error) {
	return m.list(func(o *domain.Order) bool { return o.RestaurantID == restaurantID }, true), nil
}

func (m *MemoryRepository) ListOrdersByIdempotencyKey(_ context.Context, userID, key string) ([]*domain.Order, error) {
	return m.list(func(o *domain.Order) bool {
		return o.UserID == userID && o.IdempotencyKey == key
	}, false), nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.OrderStatus, reason string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if o.Status != from {
		return nil, ErrConcurrentUpdate
	}

	now := m.now()
	o.Status = to
	o.CancelReason = reason
	o.UpdatedAt = now

	payload, err := statusChangedPayload(o, from, now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status event: %w", err)
	}
	m.appendEventLocked(o.ID, EventOrderStatusChanged, payload)
	return o.Clone(), nil
}

func (m *MemoryRepository) GetUnprocessedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []*OutboxEvent
	for _, rec := range m.outbox {
		if len(events) >= limit {
			break
		}
		if rec.processed {
			continue
		}
		e := rec.event
		events = append(events, &e)
	}
	return events, nil
}

func (m *MemoryRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.outbox {
		if rec.event.ID == id {
			rec.processed = true
			return nil
		}
	}
	return nil
}

func (m *MemoryRepository) Close() error {
	return nil
}

func (m *MemoryRepository) appendEventLocked(orderID uuid.UUID, eventType string, payload []byte) {
	m.nextID++
	m.outbox = append(m.outbox, &outboxRecord{event: OutboxEvent{
		ID:          m.nextID,
		AggregateID: orderID.String(),
		EventType:   eventType,
		Payload:     payload,
		CreatedAt:   m.now(),
	}})
}

// list returns matching orders newest first, or oldest first when newestFirst
// is false. Orders sharing a timestamp keep their insertion order.
func (m *MemoryRepository) list(match func(*domain.Order) bool, newestFirst bool) []*domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Order
	for _, o := range m.orders {
		if match(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if newestFirst {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return m.seq[a.ID] < m.seq[b.ID]
	})
	return out
}

var _ Repository = (*MemoryRepository)(nil)
