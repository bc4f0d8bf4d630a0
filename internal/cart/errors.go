package cart

import "errors"

var (
	ErrInvalidMenuItem = errors.New("menu item must have an id and a non-negative price")
	ErrPolicyRejected  = errors.New("cart policy rejected item")
)

// PolicyError carries the reason reported by the active Policy.
type PolicyError struct {
	RestaurantID string
	Reason       string
}

func (e *PolicyError) Error() string {
	return ErrPolicyRejected.Error() + ": " + e.Reason
}

func (e *PolicyError) Is(target error) bool {
	return target == ErrPolicyRejected
}
