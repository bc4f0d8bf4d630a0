package domain

type OrderStatus string

const (
	OrderStatusPlaced       OrderStatus = "PLACED"
	OrderStatusConfirmed    OrderStatus = "CONFIRMED"
	OrderStatusPreparing    OrderStatus = "PREPARING"
	OrderStatusReadyToServe OrderStatus = "READY_TO_SERVE"
	OrderStatusServed       OrderStatus = "SERVED"
	OrderStatusCompleted    OrderStatus = "COMPLETED"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
)

var orderFlow = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReadyToServe,
	OrderStatusServed,
	OrderStatusCompleted,
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) IsValid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	for _, f := range orderFlow {
		if f == s {
			return true
		}
	}
	return false
}

// Next returns the following status in the linear flow, or false for terminal or unknown statuses.
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, f := range orderFlow[:len(orderFlow)-1] {
		if f == s {
			return orderFlow[i+1], true
		}
	}
	return "", false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionOrder allows one step forward, or cancellation from any non-terminal status.
func CanTransitionOrder(from, to OrderStatus) bool {
	if from.IsTerminal() || !from.IsValid() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	next, ok := from.Next()
	return ok && next == to
}
