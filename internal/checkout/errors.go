package checkout

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrInvalidRequest    = errors.New("invalid checkout request")
	ErrIllegalTransition = errors.New("illegal transition of checkout status")
)
