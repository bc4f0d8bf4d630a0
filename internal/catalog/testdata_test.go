package catalog

import (
	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/shopspring/decimal"
)

func pizzaPlace() domain.Restaurant {
	return domain.Restaurant{ID: "r-pizza", Name: "Slice Club", Cuisine: "Italian", IsOpen: true}
}

func margherita() domain.MenuItem {
	return domain.MenuItem{
		ID:           "margherita",
		RestaurantID: "r-pizza",
		Name:         "Margherita",
		Price:        decimal.RequireFromString("249.00"),
		IsVeg:        true,
		Category:     "Pizza",
		Available:    true,
		Customizations: []domain.CustomizationGroup{
			{
				ID:            "size",
				Name:          "Size",
				Required:      true,
				MaxSelections: 1,
				Options: []domain.CustomizationOption{
					{ID: "regular", Name: "Regular", Price: decimal.Zero, IsVeg: true},
					{ID: "large", Name: "Large", Price: decimal.RequireFromString("120.50"), IsVeg: true},
				},
			},
			{
				ID:            "toppings",
				Name:          "Extra toppings",
				MaxSelections: 2,
				Options: []domain.CustomizationOption{
					{ID: "olive", Name: "Olives", Price: decimal.RequireFromString("30"), IsVeg: true},
					{ID: "jalapeno", Name: "Jalapeno", Price: decimal.RequireFromString("25"), IsVeg: true},
					{ID: "chicken", Name: "Chicken", Price: decimal.RequireFromString("60")},
				},
			},
		},
	}
}
