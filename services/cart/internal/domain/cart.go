package domain

import (
	"time"

	pkgcatalog "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
)

// Cart is the ordered list of product snapshots added under one cart ID.
// Items are never merged: adding the same product twice yields two entries.
type Cart struct {
	ID       string  `json:"id"`
	Items    []Item  `json:"items"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency,omitempty"`
}

// Item is a snapshot of a product taken when it was added to the cart.
// Later catalog changes do not alter it.
type Item struct {
	ProductID string    `json:"product_id" validate:"required,max=128"`
	Name      string    `json:"name" validate:"required,max=500"`
	Price     float64   `json:"price" validate:"gte=0"`
	Currency  string    `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
	Category  string    `json:"category,omitempty" validate:"max=64"`
	Image     string    `json:"image,omitempty" validate:"omitempty,imageref"`
	AddedAt   time.Time `json:"added_at"`
}

// ItemFromProduct snapshots p as a cart item.
func ItemFromProduct(p pkgcatalog.Product, at time.Time) Item {
	return Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Currency:  p.Currency,
		Category:  p.Category,
		Image:     p.PrimaryImage(),
		AddedAt:   at,
	}
}

// NewCart assembles a Cart from its stored items, computing count and total.
// The cart currency is the first non-empty item currency.
func NewCart(id string, items []Item) *Cart {
	if items == nil {
		items = []Item{}
	}
	c := &Cart{ID: id, Items: items, Count: len(items)}
	for _, it := range items {
		c.Total += it.Price
		if c.Currency == "" {
			c.Currency = it.Currency
		}
	}
	return c
}

// Change actions.
const (
	ActionItemAdded = "item_added"
	ActionCleared   = "cleared"
)

// Change notifies subscribers that a cart's contents changed.
type Change struct {
	CartID string    `json:"cart_id"`
	Action string    `json:"action"`
	Count  int       `json:"count"`
	At     time.Time `json:"at"`
}
