package catalog

import (
	"errors"
	"fmt"

	"github.com/fjod/go_foodcourt/internal/domain"
)

var (
	ErrInvalidCustomization = errors.New("invalid customization")
	ErrItemUnavailable      = errors.New("menu item is unavailable")
	ErrRestaurantClosed     = errors.New("restaurant is closed")
)

// SelectionRequest is what a shopper picked from one customization group.
type SelectionRequest struct {
	GroupID   string   `json:"group_id"`
	OptionIDs []string `json:"option_ids"`
}

// ResolveSelection validates requests against the item's customization groups
// and returns them priced from the menu, in menu group order.
func ResolveSelection(item domain.MenuItem, requests []SelectionRequest) ([]domain.SelectedCustomization, error) {
	if !item.Available {
		return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, item.ID)
	}

	picked := make(map[string][]domain.CustomizationOption, len(requests))
	for _, req := range requests {
		group, ok := item.Group(req.GroupID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown group %q", ErrInvalidCustomization, req.GroupID)
		}
		if _, dup := picked[group.ID]; dup {
			return nil, fmt.Errorf("%w: group %q selected twice", ErrInvalidCustomization, group.ID)
		}

		seen := make(map[string]struct{}, len(req.OptionIDs))
		options := make([]domain.CustomizationOption, 0, len(req.OptionIDs))
		for _, id := range req.OptionIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			opt, ok := group.Option(id)
			if !ok {
				return nil, fmt.Errorf("%w: unknown option %q in group %q", ErrInvalidCustomization, id, group.ID)
			}
			options = append(options, opt)
		}
		if group.MaxSelections > 0 && len(options) > group.MaxSelections {
			return nil, fmt.Errorf("%w: group %q allows at most %d options", ErrInvalidCustomization, group.ID, group.MaxSelections)
		}
		picked[group.ID] = options
	}

	var selected []domain.SelectedCustomization
	for _, group := range item.Customizations {
		options := picked[group.ID]
		if len(options) == 0 {
			if group.Required {
				return nil, fmt.Errorf("%w: group %q is required", ErrInvalidCustomization, group.ID)
			}
			continue
		}
		selected = append(selected, domain.SelectedCustomization{
			GroupID:   group.ID,
			GroupName: group.Name,
			Options:   options,
		})
	}
	return selected, nil
}
