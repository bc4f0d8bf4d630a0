package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_foodcourt/internal/cart"
	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/fjod/go_foodcourt/internal/order"
	"github.com/fjod/go_foodcourt/internal/payment"
	"github.com/fjod/go_foodcourt/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cart is the part of the cart engine checkout needs.
type Cart interface {
	Snapshot() cart.Snapshot
	ClearSnapshot(cart.Snapshot)
}

// OrderStore persists placed orders.
type OrderStore interface {
	ListByIdempotencyKey(ctx context.Context, userID, key string) ([]*domain.Order, error)
	CreateOrders(ctx context.Context, orders []*domain.Order) error
}

type Request struct {
	UserID         string
	IdempotencyKey string
	PaymentToken   string
	ServiceType    domain.ServiceType
	Cart           Cart
}

type Result struct {
	CheckoutID       uuid.UUID             `json:"checkout_id"`
	Status           domain.CheckoutStatus `json:"status"`
	PaymentReference string                `json:"payment_reference"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	Currency         string                `json:"currency"`
	Orders           []*domain.Order       `json:"orders"`
	// Replayed is set when the idempotency key matched an earlier checkout.
	Replayed bool `json:"replayed"`
}

type Service struct {
	orders   OrderStore
	payments payment.Gateway
	pricing  PricingConfig
	now      func() time.Time
}

func NewService(orders OrderStore, payments payment.Gateway, pricing PricingConfig) *Service {
	return &Service{
		orders:   orders,
		payments: payments,
		pricing:  pricing,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// session tracks one checkout attempt through its status machine.
type session struct {
	id     uuid.UUID
	status domain.CheckoutStatus
	log    *zap.Logger
}

func (s *session) advance(to domain.CheckoutStatus) error {
	if !domain.CanTransitionTo(s.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.status, to)
	}
	s.log.Debug("checkout status changed", zap.Stringer("from", s.status), zap.Stringer("to", to))
	s.status = to
	return nil
}

// Checkout charges the cart once, splits it into one order per restaurant and
// clears the cart. The cart is left untouched when anything fails.
func (s *Service) Checkout(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).With(zap.String("user_id", req.UserID), zap.String("idempotency_key", req.IdempotencyKey))

	existing, err := s.orders.ListByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if len(existing) > 0 {
		log.Info("duplicate checkout request", zap.Stringer("checkout_id", existing[0].CheckoutID))
		return replay(existing), nil
	}

	sess := &session{id: uuid.New(), status: domain.CheckoutStatusInitiated}
	sess.log = log.With(zap.Stringer("checkout_id", sess.id))

	snapshot := req.Cart.Snapshot()
	if len(snapshot.Items) == 0 {
		return nil, ErrEmptyCart
	}

	orders, total := s.buildOrders(sess.id, req, snapshot)

	if err := sess.advance(domain.CheckoutStatusPaymentPending); err != nil {
		return nil, err
	}
	charge, err := s.payments.Charge(ctx, payment.ChargeRequest{
		CheckoutID:   sess.id,
		UserID:       req.UserID,
		Amount:       total,
		Currency:     s.pricing.Currency,
		PaymentToken: req.PaymentToken,
	})
	if err != nil {
		_ = sess.advance(domain.CheckoutStatusFailed)
		sess.log.Warn("checkout payment failed", zap.Error(err))
		return nil, fmt.Errorf("charge checkout %s: %w", sess.id, err)
	}
	if err := sess.advance(domain.CheckoutStatusPaymentCompleted); err != nil {
		return nil, err
	}

	for _, o := range orders {
		o.PaymentReference = charge.PaymentID
	}

	if err := s.orders.CreateOrders(ctx, orders); err != nil {
		_ = sess.advance(domain.CheckoutStatusFailed)
		s.refund(ctx, sess, charge.PaymentID)

		// a concurrent request with the same key won the race
		if errors.Is(err, order.ErrDuplicateOrder) {
			if winner, e2 := s.orders.ListByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey); e2 == nil && len(winner) > 0 {
				return replay(winner), nil
			}
		}
		return nil, fmt.Errorf("create orders for checkout %s: %w", sess.id, err)
	}

	req.Cart.ClearSnapshot(snapshot)
	if err := sess.advance(domain.CheckoutStatusCompleted); err != nil {
		return nil, err
	}
	sess.log.Info("checkout completed",
		zap.Int("orders", len(orders)),
		zap.String("total", total.String()),
		zap.String("payment_id", charge.PaymentID))

	return &Result{
		CheckoutID:       sess.id,
		Status:           sess.status,
		PaymentReference: charge.PaymentID,
		TotalAmount:      total,
		Currency:         s.pricing.Currency,
		Orders:           orders,
	}, nil
}

// buildOrders copies the snapshot into one PLACED order per restaurant group.
func (s *Service) buildOrders(checkoutID uuid.UUID, req Request, snapshot cart.Snapshot) ([]*domain.Order, decimal.Decimal) {
	now := s.now()
	total := decimal.Zero
	orders := make([]*domain.Order, 0, len(snapshot.Groups))

	for _, group := range snapshot.Groups {
		items := make([]domain.OrderItem, 0, len(group.Items))
		for _, line := range group.Items {
			items = append(items, domain.NewOrderItem(line))
		}
		pricing := PriceGroup(group, s.pricing)
		total = total.Add(pricing.TotalAmount)

		orders = append(orders, &domain.Order{
			ID:             uuid.New(),
			CheckoutID:     checkoutID,
			UserID:         req.UserID,
			RestaurantID:   group.RestaurantID,
			RestaurantName: group.RestaurantName,
			Items:          items,
			Pricing:        pricing,
			ServiceType:    req.ServiceType,
			Status:         domain.OrderStatusPlaced,
			IdempotencyKey: req.IdempotencyKey,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return orders, total
}

func (s *Service) refund(ctx context.Context, sess *session, paymentID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.payments.Refund(ctx, paymentID); err != nil {
		sess.log.Error("refund failed, manual reconciliation needed", zap.String("payment_id", paymentID), zap.Error(err))
		return
	}
	sess.log.Info("payment refunded", zap.String("payment_id", paymentID))
}

func replay(orders []*domain.Order) *Result {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Pricing.TotalAmount)
	}
	return &Result{
		CheckoutID:       orders[0].CheckoutID,
		Status:           domain.CheckoutStatusCompleted,
		PaymentReference: orders[0].PaymentReference,
		TotalAmount:      total,
		Currency:         orders[0].Pricing.Currency,
		Orders:           orders,
		Replayed:         true,
	}
}

func validate(req Request) error {
	switch {
	case req.UserID == "":
		return fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	case strings.TrimSpace(req.IdempotencyKey) == "":
		return fmt.Errorf("%w: idempotency key is required", ErrInvalidRequest)
	case !req.ServiceType.IsValid():
		return fmt.Errorf("%w: unknown service type %q", ErrInvalidRequest, req.ServiceType)
	case req.Cart == nil:
		return fmt.Errorf("%w: cart is required", ErrInvalidRequest)
	}
	return nil
}
