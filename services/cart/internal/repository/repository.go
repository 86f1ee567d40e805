package repository

import (
	"context"
	"errors"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/domain"
)

// ErrCartFull is returned by Append when the cart already holds the maximum
// number of items.
var ErrCartFull = errors.New("cart is full")

// CartRepository defines the interface for cart persistence operations.
// A cart is an append-only list; there is no per-item removal.
type CartRepository interface {
	// Append adds item to the end of the cart and returns the new item count.
	// When limit is positive and the cart already holds limit items, nothing
	// is written and ErrCartFull is returned. The check and the write are atomic.
	Append(ctx context.Context, cartID string, item domain.Item, limit int) (int, error)

	// List returns the cart's items in insertion order. An unknown cart is empty.
	List(ctx context.Context, cartID string) ([]domain.Item, error)

	// Count returns the number of items in the cart.
	Count(ctx context.Context, cartID string) (int, error)

	// Clear removes every item from the cart.
	Clear(ctx context.Context, cartID string) error
}
