package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StatusSource decides the outcome of a mock charge.
type StatusSource interface {
	Status() (approved bool, reason RefusalReason, message string)
}

// RandomStatus approves about 95% of charges.
type RandomStatus struct{}

func (RandomStatus) Status() (bool, RefusalReason, string) {
	return calcStatus(rand.Intn(101)) // Intn is exclusive of the upper bound
}

func calcStatus(randomInt int) (bool, RefusalReason, string) {
	if randomInt < 95 {
		return true, RefusalUnknown, ""
	}
	reason := randomInt - 95
	if reason == 0 || reason > 5 {
		return false, RefusalUnknown, "unknown reason"
	}
	return false, RefusalReason(reason), ""
}

type FixedStatus struct {
	Approved bool
	Reason   RefusalReason
	Message  string
}

func (f FixedStatus) Status() (bool, RefusalReason, string) {
	return f.Approved, f.Reason, f.Message
}

// MockGateway simulates a payment provider in process.
type MockGateway struct {
	status StatusSource

	mu      sync.Mutex
	charges map[string]*ChargeResult
	refunds map[string]time.Time
}

func NewMockGateway(status StatusSource) *MockGateway {
	if status == nil {
		status = RandomStatus{}
	}
	return &MockGateway{
		status:  status,
		charges: make(map[string]*ChargeResult),
		refunds: make(map[string]time.Time),
	}
}

func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, req.Amount)
	}

	approved, reason, message := g.status.Status()
	if !approved {
		return nil, &DeclinedError{Reason: reason, Message: message}
	}

	result := &ChargeResult{
		PaymentID:  "PAY-" + uuid.NewString(),
		CheckoutID: req.CheckoutID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		ChargedAt:  time.Now().UTC(),
	}

	g.mu.Lock()
	g.charges[result.PaymentID] = result
	g.mu.Unlock()

	return result, nil
}

// Refund is idempotent for known payments.
func (g *MockGateway) Refund(ctx context.Context, paymentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.charges[paymentID]; !ok {
		return fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
	}
	if _, done := g.refunds[paymentID]; !done {
		g.refunds[paymentID] = time.Now().UTC()
	}
	return nil
}

func (g *MockGateway) Refunded(paymentID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.refunds[paymentID]
	return ok
}
