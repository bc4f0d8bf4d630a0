package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidAmount      = errors.New("invalid payment amount")
	ErrPaymentNotFound    = errors.New("payment not found")
)

type ChargeRequest struct {
	CheckoutID   uuid.UUID
	UserID       string
	Amount       decimal.Decimal
	Currency     string
	PaymentToken string
}

type ChargeResult struct {
	PaymentID  string          `json:"payment_id"`
	CheckoutID uuid.UUID       `json:"checkout_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	ChargedAt  time.Time       `json:"charged_at"`
}

// Gateway is the payment provider. Charge returns a *DeclinedError when the
// provider refuses the payment.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, paymentID string) error
}

type RefusalReason int

const (
	RefusalUnknown RefusalReason = iota
	RefusalInsufficientFunds
	RefusalCardExpired
	RefusalCardBlocked
	RefusalFraudSuspected
	RefusalLimitExceeded
)

// String representation (for logging)
func (r RefusalReason) String() string {
	switch r {
	case RefusalInsufficientFunds:
		return "insufficient funds"
	case RefusalCardExpired:
		return "card expired"
	case RefusalCardBlocked:
		return "card blocked"
	case RefusalFraudSuspected:
		return "fraud suspected"
	case RefusalLimitExceeded:
		return "limit exceeded"
	default:
		return "unknown reason"
	}
}

type DeclinedError struct {
	Reason  RefusalReason
	Message string
}

func (e *DeclinedError) Error() string {
	if e.Message != "" {
		return ErrPaymentDeclined.Error() + ": " + e.Message
	}
	return ErrPaymentDeclined.Error() + ": " + e.Reason.String()
}

func (e *DeclinedError) Is(target error) bool {
	return target == ErrPaymentDeclined
}
