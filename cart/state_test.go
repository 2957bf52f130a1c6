package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goflare.io/storefront/models"
)

func apple(quantity int64) models.LineItem {
	return models.LineItem{
		ID:       1,
		Name:     "Apple",
		Price:    decimal.RequireFromString("2.5"),
		Image:    "a.jpg",
		Quantity: quantity,
	}
}

func TestAddItem_MergesByID(t *testing.T) {
	s := NewState()
	s.AddItem(apple(1))

	second := apple(2)
	second.Name = "Green Apple"
	second.Price = decimal.RequireFromString("9")
	second.Image = "b.jpg"
	s.AddItem(second)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint64(1), items[0].ID)
	assert.Equal(t, int64(3), items[0].Quantity)
	assert.Equal(t, "Apple", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "a.jpg", items[0].Image)
}

func TestAddItem_QuantityIsSumPerID(t *testing.T) {
	s := NewState()
	adds := []models.LineItem{
		{ID: 3, Name: "c", Quantity: 2},
		{ID: 1, Name: "a", Quantity: 1},
		{ID: 3, Name: "c2", Quantity: 5},
		{ID: 2, Name: "b", Quantity: 4},
		{ID: 1, Name: "a2", Quantity: 7},
	}
	for _, item := range adds {
		s.AddItem(item)
	}

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []uint64{3, 1, 2}, ids(items))
	assert.Equal(t, int64(7), items[0].Quantity)
	assert.Equal(t, int64(8), items[1].Quantity)
	assert.Equal(t, int64(4), items[2].Quantity)
	assert.Equal(t, "c", items[0].Name)
	assert.Equal(t, "a", items[1].Name)
}

func TestUpdateQuantity(t *testing.T) {
	s := NewState()
	s.AddItem(apple(1))
	s.AddItem(models.LineItem{ID: 2, Name: "Pear", Quantity: 1})

	s.UpdateQuantity(1, 10)
	items := s.Items()
	assert.Equal(t, int64(10), items[0].Quantity)
	assert.Equal(t, "Apple", items[0].Name)
	assert.Equal(t, "a.jpg", items[0].Image)
	assert.Equal(t, int64(1), items[1].Quantity)

	before := s.Items()
	s.UpdateQuantity(99, 4)
	assert.Equal(t, before, s.Items())
}

func TestUpdateQuantity_AcceptsNonPositive(t *testing.T) {
	s := NewState()
	s.AddItem(apple(2))

	s.UpdateQuantity(1, 0)
	assert.Equal(t, int64(0), s.Items()[0].Quantity)

	s.UpdateQuantity(1, -3)
	assert.Equal(t, int64(-3), s.Items()[0].Quantity)
	assert.Equal(t, 1, s.Len())
}

func TestRemoveItem(t *testing.T) {
	s := NewState()
	for id := uint64(1); id <= 4; id++ {
		s.AddItem(models.LineItem{ID: id, Quantity: 1})
	}

	s.RemoveItem(2)
	assert.Equal(t, []uint64{1, 3, 4}, ids(s.Items()))

	s.RemoveItem(2)
	s.RemoveItem(42)
	assert.Equal(t, []uint64{1, 3, 4}, ids(s.Items()))

	s.RemoveItem(1)
	s.RemoveItem(3)
	s.RemoveItem(4)
	assert.Empty(t, s.Items())
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := NewState()
	s.AddItem(apple(1))

	items := s.Items()
	items[0].Quantity = 100

	assert.Equal(t, int64(1), s.Items()[0].Quantity)
	assert.Equal(t, 1, s.Len())
}

func TestRemoveItem_DoesNotAliasEarlierSnapshots(t *testing.T) {
	s := NewState()
	for id := uint64(1); id <= 3; id++ {
		s.AddItem(models.LineItem{ID: id, Quantity: 1})
	}
	snapshot := s.Items()

	s.RemoveItem(1)

	assert.Equal(t, []uint64{1, 2, 3}, ids(snapshot))
	assert.Equal(t, []uint64{2, 3}, ids(s.Items()))
}

func TestOrderFollowsFirstSeenID(t *testing.T) {
	s := NewState()
	s.AddItem(models.LineItem{ID: 5, Quantity: 1})
	s.AddItem(models.LineItem{ID: 2, Quantity: 1})
	s.UpdateQuantity(5, 9)
	s.AddItem(models.LineItem{ID: 2, Quantity: 3})
	s.AddItem(models.LineItem{ID: 7, Quantity: 1})
	s.AddItem(models.LineItem{ID: 5, Quantity: 1})

	assert.Equal(t, []uint64{5, 2, 7}, ids(s.Items()))
}

func TestRestore(t *testing.T) {
	s := Restore([]models.LineItem{
		{ID: 1, Quantity: 1},
		{ID: 2, Quantity: 2},
		{ID: 1, Quantity: 4},
	})

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(5), items[0].Quantity)
}

func ids(items []models.LineItem) []uint64 {
	out := make([]uint64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
