package cart

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/shopspring/decimal"
)

// RestaurantGroup is a by-restaurant projection of the cart.
type RestaurantGroup struct {
	RestaurantID   string                `json:"restaurant_id"`
	RestaurantName string                `json:"restaurant_name"`
	Items          []domain.CartLineItem `json:"items"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	ItemCount      int                   `json:"item_count"`
}

// Snapshot is a consistent view of the cart taken under a single lock.
type Snapshot struct {
	Items          []domain.CartLineItem `json:"items"`
	Groups         []RestaurantGroup     `json:"groups"`
	TotalPrice     decimal.Decimal       `json:"total_price"`
	TotalItemCount int                   `json:"total_item_count"`
}

// Engine owns the line items of one shopping session. All methods are safe for
// concurrent use; the mutex is the only access point to the collection.
type Engine struct {
	mu     sync.Mutex
	policy Policy
	keys   []string // insertion order
	items  map[string]*domain.CartLineItem
}

type Option func(*Engine)

func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		policy: AllowAll{},
		items:  make(map[string]*domain.CartLineItem),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddItem merges one unit of item into the cart. An existing line with the same
// identity key gets its quantity incremented, otherwise a new line is appended.
func (e *Engine) AddItem(
	item domain.MenuItem,
	restaurantID, restaurantName string,
	customizations []domain.SelectedCustomization,
	specialInstructions string) error {

	if item.ID == "" || item.Price.IsNegative() {
		return fmt.Errorf("%w: id=%q price=%s", ErrInvalidMenuItem, item.ID, item.Price)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if d := e.policy.CanAdd(restaurantID, e.restaurantsLocked()); !d.Allowed {
		return &PolicyError{RestaurantID: restaurantID, Reason: d.Reason}
	}

	key := IdentityKey(item.ID, customizations, specialInstructions)
	if existing, ok := e.items[key]; ok {
		existing.Quantity++
		existing.LineTotal = existing.LineTotal.Add(existing.UnitPrice())
		return nil
	}

	line := &domain.CartLineItem{
		IdentityKey:         key,
		SourceItemID:        item.ID,
		Name:                item.Name,
		UnitBasePrice:       item.Price,
		Quantity:            1,
		RestaurantID:        restaurantID,
		RestaurantName:      restaurantName,
		Image:               item.Image,
		IsVeg:               item.IsVeg,
		SpiceLevel:          item.SpiceLevel,
		Customizations:      domain.CloneCustomizations(customizations),
		SpecialInstructions: strings.TrimSpace(specialInstructions),
	}
	line.LineTotal = line.UnitPrice()

	e.items[key] = line
	e.keys = append(e.keys, key)
	return nil
}

// RemoveItem deletes the line with the given key. Unknown keys are ignored.
func (e *Engine) RemoveItem(identityKey string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(identityKey)
}

// UpdateQuantity sets the quantity of a line. Negative values are ignored and
// zero removes the line.
func (e *Engine) UpdateQuantity(identityKey string, newQuantity int) {
	if newQuantity < 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if newQuantity == 0 {
		e.removeLocked(identityKey)
		return
	}

	line, ok := e.items[identityKey]
	if !ok {
		return
	}
	line.Quantity = newQuantity
	line.LineTotal = line.UnitPrice().Mul(decimal.NewFromInt(int64(newQuantity)))
}

// ClearSnapshot removes what a snapshot captured and keeps anything added since.
// A line whose quantity grew after the snapshot keeps the difference.
func (e *Engine) ClearSnapshot(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, taken := range s.Items {
		line, ok := e.items[taken.IdentityKey]
		if !ok {
			continue
		}
		if line.Quantity <= taken.Quantity {
			e.removeLocked(taken.IdentityKey)
			continue
		}
		line.Quantity -= taken.Quantity
		line.LineTotal = line.UnitPrice().Mul(decimal.NewFromInt(int64(line.Quantity)))
	}
}

func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys = nil
	e.items = make(map[string]*domain.CartLineItem)
}

func (e *Engine) TotalPrice() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := decimal.Zero
	for _, line := range e.items {
		total = total.Add(line.LineTotal)
	}
	return total
}

func (e *Engine) TotalItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, line := range e.items {
		count += line.Quantity
	}
	return count
}

// Len returns the number of distinct lines.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.keys)
}

// Items returns copies of all lines in insertion order.
func (e *Engine) Items() []domain.CartLineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.itemsLocked(nil)
}

// ItemsForRestaurant returns copies of the lines of one restaurant in insertion order.
func (e *Engine) ItemsForRestaurant(restaurantID string) []domain.CartLineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.itemsLocked(func(line *domain.CartLineItem) bool {
		return line.RestaurantID == restaurantID
	})
}

func (e *Engine) RestaurantSubtotal(restaurantID string) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()

	subtotal := decimal.Zero
	for _, line := range e.items {
		if line.RestaurantID == restaurantID {
			subtotal = subtotal.Add(line.LineTotal)
		}
	}
	return subtotal
}

// CanAddToCart evaluates the configured policy without mutating the cart.
func (e *Engine) CanAddToCart(restaurantID string) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.policy.CanAdd(restaurantID, e.restaurantsLocked())
}

// GroupByRestaurant partitions the cart by restaurant, preserving first-seen
// restaurant order and insertion order within each group.
func (e *Engine) GroupByRestaurant() []RestaurantGroup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return groupItems(e.itemsLocked(nil))
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := e.itemsLocked(nil)
	s := Snapshot{
		Items:      items,
		Groups:     groupItems(items),
		TotalPrice: decimal.Zero,
	}
	for _, line := range items {
		s.TotalPrice = s.TotalPrice.Add(line.LineTotal)
		s.TotalItemCount += line.Quantity
	}
	return s
}

func (e *Engine) removeLocked(key string) {
	if _, ok := e.items[key]; !ok {
		return
	}
	delete(e.items, key)
	for i, k := range e.keys {
		if k == key {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			break
		}
	}
}

// itemsLocked copies lines in insertion order; a nil match keeps every line.
func (e *Engine) itemsLocked(match func(*domain.CartLineItem) bool) []domain.CartLineItem {
	out := make([]domain.CartLineItem, 0, len(e.keys))
	for _, k := range e.keys {
		line := e.items[k]
		if match != nil && !match(line) {
			continue
		}
		out = append(out, line.Clone())
	}
	return out
}

func (e *Engine) restaurantsLocked() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, k := range e.keys {
		id := e.items[k].RestaurantID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func groupItems(items []domain.CartLineItem) []RestaurantGroup {
	groups := []RestaurantGroup{}
	index := make(map[string]int)
	for _, line := range items {
		i, ok := index[line.RestaurantID]
		if !ok {
			i = len(groups)
			index[line.RestaurantID] = i
			groups = append(groups, RestaurantGroup{
				RestaurantID:   line.RestaurantID,
				RestaurantName: line.RestaurantName,
				Subtotal:       decimal.Zero,
			})
		}
		g := &groups[i]
		g.Items = append(g.Items, line)
		g.Subtotal = g.Subtotal.Add(line.LineTotal)
		g.ItemCount += line.Quantity
	}
	return groups
}
