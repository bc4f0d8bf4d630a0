package domain

import "github.com/shopspring/decimal"

type Restaurant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Cuisine     string `json:"cuisine"`
	IsOpen      bool   `json:"is_open"`
}

// MenuItem is a catalog entry as served by the catalog collaborator.
type MenuItem struct {
	ID             string               `json:"id"`
	RestaurantID   string               `json:"restaurant_id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Price          decimal.Decimal      `json:"price"`
	Image          string               `json:"image"`
	IsVeg          bool                 `json:"is_veg"`
	SpiceLevel     int                  `json:"spice_level"`
	Category       string               `json:"category"`
	Available      bool                 `json:"available"`
	Customizations []CustomizationGroup `json:"customizations,omitempty"`
}

type CustomizationGroup struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Required      bool                  `json:"required"`
	MaxSelections int                   `json:"max_selections"` // 0 means unlimited
	Options       []CustomizationOption `json:"options"`
}

type CustomizationOption struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	IsVeg bool            `json:"is_veg"`
}

// SelectedCustomization holds the options a shopper picked from one group.
type SelectedCustomization struct {
	GroupID   string                `json:"group_id"`
	GroupName string                `json:"group_name"`
	Options   []CustomizationOption `json:"options"`
}

// Group returns the customization group with the given id.
func (m MenuItem) Group(id string) (CustomizationGroup, bool) {
	for _, g := range m.Customizations {
		if g.ID == id {
			return g, true
		}
	}
	return CustomizationGroup{}, false
}

// Option returns the option with the given id.
func (g CustomizationGroup) Option(id string) (CustomizationOption, bool) {
	for _, o := range g.Options {
		if o.ID == id {
			return o, true
		}
	}
	return CustomizationOption{}, false
}

// CloneCustomizations deep-copies a selection so later edits never leak into stored state.
func CloneCustomizations(in []SelectedCustomization) []SelectedCustomization {
	if in == nil {
		return nil
	}
	out := make([]SelectedCustomization, len(in))
	for i, c := range in {
		out[i] = SelectedCustomization{
			GroupID:   c.GroupID,
			GroupName: c.GroupName,
			Options:   append([]CustomizationOption(nil), c.Options...),
		}
	}
	return out
}

// CustomizationTotal sums the price of every selected option.
func CustomizationTotal(selected []SelectedCustomization) decimal.Decimal {
	total := decimal.Zero
	for _, c := range selected {
		for _, o := range c.Options {
			total = total.Add(o.Price)
		}
	}
	return total
}
