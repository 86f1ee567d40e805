package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	pkgcatalog "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/validator"
)

func TestNewCart_CountAndTotal(t *testing.T) {
	c := NewCart("cart-1", []Item{
		{ProductID: "1", Price: 25000, Currency: "NGN"},
		{ProductID: "1", Price: 25000, Currency: "NGN"},
		{ProductID: "3", Price: 8000.5, Currency: "NGN"},
	})

	assert.Equal(t, "cart-1", c.ID)
	assert.Equal(t, 3, c.Count)
	assert.InDelta(t, 58000.5, c.Total, 1e-9)
	assert.Equal(t, "NGN", c.Currency)
}

func TestNewCart_NilItems(t *testing.T) {
	c := NewCart("cart-1", nil)

	assert.NotNil(t, c.Items)
	assert.Equal(t, 0, c.Count)
	assert.Zero(t, c.Total)
	assert.Empty(t, c.Currency)
}

func TestNewCart_CurrencyFromFirstPricedItem(t *testing.T) {
	c := NewCart("cart-1", []Item{
		{ProductID: "1"},
		{ProductID: "2", Currency: "USD"},
	})
	assert.Equal(t, "USD", c.Currency)
}

func TestItemFromProduct(t *testing.T) {
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	p := pkgcatalog.Product{
		ID:       "2",
		Name:     "Silver Ring",
		Category: pkgcatalog.CategoryJewelries,
		Price:    12000,
		Currency: "NGN",
		Images:   []string{"/data/images/ring_1.jpg"},
	}

	item := ItemFromProduct(p, at)

	assert.Equal(t, Item{
		ProductID: "2",
		Name:      "Silver Ring",
		Price:     12000,
		Currency:  "NGN",
		Category:  pkgcatalog.CategoryJewelries,
		Image:     "/data/images/ring_1.jpg",
		AddedAt:   at,
	}, item)
}

func TestItem_Validation(t *testing.T) {
	assert.NoError(t, validator.Validate(Item{ProductID: "1", Name: "Gold Ring", Price: 1}))
	assert.Error(t, validator.Validate(Item{Name: "Gold Ring"}))
	assert.Error(t, validator.Validate(Item{ProductID: "1"}))
	assert.Error(t, validator.Validate(Item{ProductID: "1", Name: "x", Price: -1}))
	assert.Error(t, validator.Validate(Item{ProductID: "1", Name: "x", Currency: "ngn"}))
}
