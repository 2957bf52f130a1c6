package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"goflare.io/storefront/models"
)

func TestSummarize(t *testing.T) {
	items := []models.LineItem{
		{ID: 1, Price: decimal.RequireFromString("2.5"), Quantity: 2},
		{ID: 2, Price: decimal.RequireFromString("4.99"), Quantity: 1},
	}

	sum := Summarize(items)

	assert.True(t, sum.Subtotal.Equal(decimal.RequireFromString("9.99")), sum.Subtotal.String())
	assert.True(t, sum.Shipping.Equal(decimal.RequireFromString("5.99")))
	assert.True(t, sum.Tax.Equal(decimal.RequireFromString("0.80")), sum.Tax.String())
	assert.True(t, sum.Total.Equal(decimal.RequireFromString("16.78")), sum.Total.String())
	assert.Equal(t, int64(3), sum.ItemCount)
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)

	assert.True(t, sum.Subtotal.IsZero())
	assert.True(t, sum.Shipping.IsZero())
	assert.True(t, sum.Tax.IsZero())
	assert.True(t, sum.Total.IsZero())
	assert.Zero(t, sum.ItemCount)
}

func TestCount(t *testing.T) {
	assert.Equal(t, int64(6), Count([]models.LineItem{{Quantity: 1}, {Quantity: 5}}))
	assert.Zero(t, Count(nil))
}
