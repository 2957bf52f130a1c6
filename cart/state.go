// Package cart holds the line-item collection of one visitor.
package cart

import (
	"goflare.io/storefront/models"
)

// State is the exclusive owner of a visitor's line items.
//
// State is not safe for concurrent use; callers serialise access per visitor.
type State struct {
	items []models.LineItem
}

// NewState returns an empty cart.
func NewState() *State {
	return &State{}
}

// Restore rebuilds a cart from a previously saved snapshot, merging duplicate ids.
func Restore(items []models.LineItem) *State {
	s := NewState()
	for _, item := range items {
		s.AddItem(item)
	}
	return s
}

// AddItem appends item, or increases the quantity of the entry already holding item.ID.
// The existing entry keeps its name, price and image.
func (s *State) AddItem(item models.LineItem) {
	if i := s.index(item.ID); i >= 0 {
		s.items[i].Quantity += item.Quantity
		return
	}
	s.items = append(s.items, item)
}

// UpdateQuantity sets the quantity of the entry with the given id. Unknown ids are ignored.
// No bound is enforced here; the display layer rejects quantities below one.
func (s *State) UpdateQuantity(id uint64, quantity int64) {
	if i := s.index(id); i >= 0 {
		s.items[i].Quantity = quantity
	}
}

// RemoveItem drops the entry with the given id. Unknown ids are ignored.
func (s *State) RemoveItem(id uint64) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
}

// Items returns a copy of the line items in insertion order.
func (s *State) Items() []models.LineItem {
	out := make([]models.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of distinct line items.
func (s *State) Len() int {
	return len(s.items)
}

func (s *State) index(id uint64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
