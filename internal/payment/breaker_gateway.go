package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_foodcourt/pkg/circuitbreaker"
	"go.uber.org/zap"
)

// BreakerGateway bounds every call with a timeout and stops calling a failing
// provider until its breaker half-opens. Declines do not count as failures.
type BreakerGateway struct {
	next    Gateway
	timeout time.Duration
	charge  *circuitbreaker.Breaker[*ChargeResult]
	refund  *circuitbreaker.Breaker[struct{}]
}

func NewBreakerGateway(next Gateway, timeout time.Duration, log *zap.Logger) *BreakerGateway {
	cfg := circuitbreaker.DefaultConfig("payment")
	cfg.Logger = log
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrPaymentDeclined) || errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrPaymentNotFound)
	}
	return newBreakerGateway(next, timeout, cfg)
}

func newBreakerGateway(next Gateway, timeout time.Duration, cfg circuitbreaker.Config) *BreakerGateway {
	refundCfg := cfg
	refundCfg.Name = cfg.Name + "-refund"
	return &BreakerGateway{
		next:    next,
		timeout: timeout,
		charge:  circuitbreaker.New[*ChargeResult](cfg),
		refund:  circuitbreaker.New[struct{}](refundCfg),
	}
}

func (g *BreakerGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	res, err := g.charge.Execute(func() (*ChargeResult, error) {
		return g.next.Charge(ctx, req)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return res, err
}

func (g *BreakerGateway) Refund(ctx context.Context, paymentID string) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	_, err := g.refund.Execute(func() (struct{}, error) {
		return struct{}{}, g.next.Refund(ctx, paymentID)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return err
}

func (g *BreakerGateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}
