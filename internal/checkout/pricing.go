package checkout

import (
	"github.com/fjod/go_foodcourt/internal/cart"
	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/shopspring/decimal"
)

type PricingConfig struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
	Currency    string
}

// PriceGroup prices one restaurant's share of a cart. Taxes are rounded half
// away from zero to two places; the subtotal is kept exact.
func PriceGroup(group cart.RestaurantGroup, cfg PricingConfig) domain.Pricing {
	taxes := group.Subtotal.Mul(cfg.TaxRate).Round(2)
	return domain.Pricing{
		Subtotal:    group.Subtotal,
		Taxes:       taxes,
		DeliveryFee: cfg.DeliveryFee,
		TotalAmount: group.Subtotal.Add(taxes).Add(cfg.DeliveryFee),
		Currency:    cfg.Currency,
	}
}
