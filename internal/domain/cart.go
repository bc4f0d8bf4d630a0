package domain

import "github.com/shopspring/decimal"

// CartLineItem is one distinct purchasable entry in a cart.
// LineTotal always equals Quantity * UnitPrice().
type CartLineItem struct {
	IdentityKey         string                  `json:"identity_key"`
	SourceItemID        string                  `json:"source_item_id"`
	Name                string                  `json:"name"`
	UnitBasePrice       decimal.Decimal         `json:"unit_base_price"`
	Quantity            int                     `json:"quantity"`
	RestaurantID        string                  `json:"restaurant_id"`
	RestaurantName      string                  `json:"restaurant_name"`
	Image               string                  `json:"image,omitempty"`
	IsVeg               bool                    `json:"is_veg"`
	SpiceLevel          int                     `json:"spice_level"`
	Customizations      []SelectedCustomization `json:"customizations,omitempty"`
	SpecialInstructions string                  `json:"special_instructions,omitempty"`
	LineTotal           decimal.Decimal         `json:"line_total"`
}

func (c CartLineItem) CustomizationTotal() decimal.Decimal {
	return CustomizationTotal(c.Customizations)
}

// UnitPrice is the price of one unit including customizations.
func (c CartLineItem) UnitPrice() decimal.Decimal {
	return c.UnitBasePrice.Add(c.CustomizationTotal())
}

// Clone returns a deep copy.
func (c CartLineItem) Clone() CartLineItem {
	c.Customizations = CloneCustomizations(c.Customizations)
	return c
}
