package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/domain"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/repository"
)

const keyPrefix = "cart:"

// Key returns the Redis list key holding a cart's items.
func Key(cartID string) string {
	return keyPrefix + cartID + ":items"
}

// CartRepository implements repository.CartRepository using a Redis list per cart.
type CartRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository. Every write
// extends the cart's expiry to ttl.
func NewCartRepository(client redis.UniversalClient, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// appendScript pushes ARGV[1] unless the list already holds ARGV[2] items
// (ARGV[2] <= 0 disables the cap) and sets a PEXPIRE of ARGV[3] ms when
// positive. It returns the new length, or -1 when the cart is full.
var appendScript = redis.NewScript(`
local limit = tonumber(ARGV[2])
if limit > 0 and redis.call('LLEN', KEYS[1]) >= limit then
	return -1
end
local n = redis.call('RPUSH', KEYS[1], ARGV[1])
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('PEXPIRE', KEYS[1], ttl)
end
return n
`)

// Append pushes item onto the cart list and refreshes its TTL. The length
// check and the push run as one script, so concurrent adds never overshoot
// limit.
func (r *CartRepository) Append(ctx context.Context, cartID string, item domain.Item, limit int) (int, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return 0, fmt.Errorf("marshal cart item: %w", err)
	}

	n, err := appendScript.Run(ctx, r.client, []string{Key(cartID)}, data, limit, r.ttl.Milliseconds()).Int()
	if err != nil {
		return 0, fmt.Errorf("redis rpush cart item: %w", err)
	}
	if n < 0 {
		return 0, repository.ErrCartFull
	}

	return n, nil
}

// List reads every item of the cart in insertion order.
func (r *CartRepository) List(ctx context.Context, cartID string) ([]domain.Item, error) {
	raw, err := r.client.LRange(ctx, Key(cartID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange cart: %w", err)
	}

	items := make([]domain.Item, 0, len(raw))
	for i, s := range raw {
		var item domain.Item
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			return nil, fmt.Errorf("unmarshal cart item %d: %w", i, err)
		}
		items = append(items, item)
	}

	return items, nil
}

// Count returns the cart list length.
func (r *CartRepository) Count(ctx context.Context, cartID string) (int, error) {
	n, err := r.client.LLen(ctx, Key(cartID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis llen cart: %w", err)
	}
	return int(n), nil
}

// Clear deletes the cart list.
func (r *CartRepository) Clear(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, Key(cartID)).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
