package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestApply_DefaultSortsByName(t *testing.T) {
	got := Apply(Fallback(), models.ProductQuery{})

	assert.Equal(t, []string{
		"Bananas", "Broccoli", "Carrots", "Fresh Avocados",
		"Organic Apples", "Spinach", "Strawberries", "Tomatoes",
	}, names(got))
}

func TestApply_Search(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "name match is case insensitive", search: "APPLE", want: []string{"Organic Apples"}},
		{name: "description match", search: "crunchy", want: []string{"Carrots"}},
		{name: "matches name or description", search: "organic", want: []string{"Carrots", "Organic Apples", "Spinach", "Strawberries"}},
		{name: "no match", search: "durian", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(Fallback(), models.ProductQuery{Search: tt.search})
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestApply_Category(t *testing.T) {
	got := Apply(Fallback(), models.ProductQuery{Category: "vegetables"})
	assert.Equal(t, []string{"Broccoli", "Carrots", "Tomatoes"}, names(got))

	all := Apply(Fallback(), models.ProductQuery{Category: AllCategories})
	assert.Len(t, all, len(Fallback()))
}

func TestApply_Sort(t *testing.T) {
	low := Apply(Fallback(), models.ProductQuery{Sort: enum.ProductSortPriceLow})
	assert.Equal(t, "Carrots", low[0].Name)
	assert.Equal(t, "Strawberries", low[len(low)-1].Name)

	high := Apply(Fallback(), models.ProductQuery{Sort: enum.ProductSortPriceHigh})
	assert.Equal(t, "Strawberries", high[0].Name)
	assert.Equal(t, "Carrots", high[len(high)-1].Name)

	rating := Apply(Fallback(), models.ProductQuery{Sort: enum.ProductSortRating})
	assert.Equal(t, "Fresh Avocados", rating[0].Name)
	assert.Equal(t, "Spinach", rating[len(rating)-1].Name)
	// Ties keep catalog order.
	assert.Equal(t, []string{"Organic Apples", "Tomatoes"}, names(rating[3:5]))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := Fallback()
	Apply(in, models.ProductQuery{Sort: enum.ProductSortPriceHigh})
	assert.Equal(t, uint64(1), in[0].ID)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"fruits", "berries", "vegetables", "leafy-greens"}, Categories(Fallback()))
}

func TestFeatured(t *testing.T) {
	got := Featured(Fallback(), 3)
	assert.Equal(t, []string{"Fresh Avocados", "Strawberries", "Carrots"}, names(got))

	assert.Len(t, Featured(Fallback(), 100), 8)
}

func TestOffers(t *testing.T) {
	got := Offers()
	assert.Len(t, got, 3)
	got[0].Title = "changed"
	assert.NotEqual(t, "changed", Offers()[0].Title)
}
