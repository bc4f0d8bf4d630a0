package cart

import (
	"encoding/base64"
	"sort"
	"strconv"
	"strings"

	"github.com/fjod/go_foodcourt/internal/domain"
)

// IdentityKey derives the merge key of a line item. Two additions are the same
// line item iff their keys match. Selection order and surrounding whitespace in
// the instructions do not matter. The result is URL-safe.
func IdentityKey(sourceItemID string, customizations []domain.SelectedCustomization, specialInstructions string) string {
	options := make([]string, 0, len(customizations))
	for _, c := range customizations {
		for _, o := range c.Options {
			options = append(options, strconv.Quote(c.GroupID)+":"+strconv.Quote(o.ID))
		}
	}
	sort.Strings(options)

	var b strings.Builder
	b.WriteString(strconv.Quote(sourceItemID))
	b.WriteByte('|')
	b.WriteString(strings.Join(options, ","))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(strings.TrimSpace(specialInstructions)))

	return base64.RawURLEncoding.EncodeToString([]byte(b.String()))
}
