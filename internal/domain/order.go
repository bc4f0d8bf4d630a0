package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ServiceType string

const (
	ServiceTypeDineIn   ServiceType = "DINE_IN"
	ServiceTypeTakeaway ServiceType = "TAKEAWAY"
)

func (t ServiceType) IsValid() bool {
	return t == ServiceTypeDineIn || t == ServiceTypeTakeaway
}

// OrderItem is the frozen copy of a cart line taken at payment time.
type OrderItem struct {
	IdentityKey         string                  `json:"identity_key"`
	SourceItemID        string                  `json:"source_item_id"`
	Name                string                  `json:"name"`
	UnitBasePrice       decimal.Decimal         `json:"unit_base_price"`
	UnitPrice           decimal.Decimal         `json:"unit_price"`
	Quantity            int                     `json:"quantity"`
	IsVeg               bool                    `json:"is_veg"`
	Customizations      []SelectedCustomization `json:"customizations,omitempty"`
	SpecialInstructions string                  `json:"special_instructions,omitempty"`
	LineTotal           decimal.Decimal         `json:"line_total"`
}

type Pricing struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Taxes       decimal.Decimal `json:"taxes"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

type Order struct {
	ID               uuid.UUID   `json:"id"`
	CheckoutID       uuid.UUID   `json:"checkout_id"`
	UserID           string      `json:"user_id"`
	RestaurantID     string      `json:"restaurant_id"`
	RestaurantName   string      `json:"restaurant_name"`
	Items            []OrderItem `json:"items"`
	Pricing          Pricing     `json:"pricing"`
	PaymentReference string      `json:"payment_reference"`
	ServiceType      ServiceType `json:"service_type"`
	Status           OrderStatus `json:"status"`
	CancelReason     string      `json:"cancel_reason,omitempty"`
	IdempotencyKey   string      `json:"idempotency_key"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// NewOrderItem copies a cart line into an order line.
func NewOrderItem(line CartLineItem) OrderItem {
	return OrderItem{
		IdentityKey:         line.IdentityKey,
		SourceItemID:        line.SourceItemID,
		Name:                line.Name,
		UnitBasePrice:       line.UnitBasePrice,
		UnitPrice:           line.UnitPrice(),
		Quantity:            line.Quantity,
		IsVeg:               line.IsVeg,
		Customizations:      CloneCustomizations(line.Customizations),
		SpecialInstructions: line.SpecialInstructions,
		LineTotal:           line.LineTotal,
	}
}

// Clone returns a deep copy so stored orders cannot be mutated through returned values.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.Customizations = CloneCustomizations(it.Customizations)
		c.Items[i] = it
	}
	return &c
}
