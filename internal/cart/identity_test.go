package cart

import (
	"encoding/base64"
	"testing"

	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityKey_Deterministic(t *testing.T) {
	a := IdentityKey("A", toppings(option("olive", "1"), option("corn", "2")), "extra spicy")
	b := IdentityKey("A", toppings(option("olive", "1"), option("corn", "2")), "extra spicy")

	assert.Equal(t, a, b)
}

func TestIdentityKey_SelectionOrderDoesNotMatter(t *testing.T) {
	a := IdentityKey("A", []domain.SelectedCustomization{
		{GroupID: "size", Options: []domain.CustomizationOption{option("large", "30")}},
		{GroupID: "toppings", Options: []domain.CustomizationOption{option("olive", "1"), option("corn", "2")}},
	}, "")
	b := IdentityKey("A", []domain.SelectedCustomization{
		{GroupID: "toppings", Options: []domain.CustomizationOption{option("corn", "2"), option("olive", "1")}},
		{GroupID: "size", Options: []domain.CustomizationOption{option("large", "30")}},
	}, "")

	assert.Equal(t, a, b)
}

func TestIdentityKey_Distinguishes(t *testing.T) {
	base := IdentityKey("A", nil, "")

	assert.NotEqual(t, base, IdentityKey("B", nil, ""))
	assert.NotEqual(t, base, IdentityKey("A", toppings(option("olive", "1")), ""))
	assert.NotEqual(t, base, IdentityKey("A", nil, "no onion"))
	assert.NotEqual(t,
		IdentityKey("A", []domain.SelectedCustomization{{GroupID: "g1", Options: []domain.CustomizationOption{option("o", "0")}}}, ""),
		IdentityKey("A", []domain.SelectedCustomization{{GroupID: "g2", Options: []domain.CustomizationOption{option("o", "0")}}}, ""),
	)
}

func TestIdentityKey_SeparatorsInValuesDoNotCollide(t *testing.T) {
	a := IdentityKey(`A|"x"`, nil, "")
	b := IdentityKey("A", nil, `"x"`)

	assert.NotEqual(t, a, b)
}

func TestIdentityKey_URLSafe(t *testing.T) {
	key := IdentityKey("item/1?x=y", toppings(option("a+b", "1")), "extra / sauce")

	assert.NotContains(t, key, "/")
	assert.NotContains(t, key, "+")
	assert.NotContains(t, key, "=")
	_, err := base64.RawURLEncoding.DecodeString(key)
	require.NoError(t, err)
}
