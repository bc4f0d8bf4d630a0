package cart

// Decision is the outcome of a Policy check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Policy decides whether items from restaurantID may join a cart that already
// holds items from cartRestaurants (distinct ids, first-seen order).
type Policy interface {
	CanAdd(restaurantID string, cartRestaurants []string) Decision
}

type PolicyFunc func(restaurantID string, cartRestaurants []string) Decision

func (f PolicyFunc) CanAdd(restaurantID string, cartRestaurants []string) Decision {
	return f(restaurantID, cartRestaurants)
}

// AllowAll permits multi-vendor carts. It is the default policy.
type AllowAll struct{}

func (AllowAll) CanAdd(string, []string) Decision {
	return Decision{Allowed: true}
}

// SingleRestaurant limits a cart to one vendor.
type SingleRestaurant struct{}

func (SingleRestaurant) CanAdd(restaurantID string, cartRestaurants []string) Decision {
	for _, id := range cartRestaurants {
		if id != restaurantID {
			return Decision{Allowed: false, Reason: "cart already contains items from another restaurant"}
		}
	}
	return Decision{Allowed: true}
}

// PolicyByName maps a configuration value to a Policy.
func PolicyByName(name string) (Policy, bool) {
	switch name {
	case "", "multi", "allow_all":
		return AllowAll{}, true
	case "single", "single_restaurant":
		return SingleRestaurant{}, true
	default:
		return nil, false
	}
}
