// Package notify fans cart change notifications out to subscribers through
// Redis pub/sub, so every cart service instance sees changes made by any other.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/domain"
)

// subscriberBuffer is the per-subscriber channel capacity. When a subscriber
// falls behind, older changes are dropped in favour of the newest one since
// only the latest count matters.
const subscriberBuffer = 4

// Channel returns the pub/sub channel carrying changes for a cart.
func Channel(cartID string) string {
	return "cart:" + cartID + ":changes"
}

// Notifier publishes and subscribes to cart changes.
type Notifier struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewNotifier creates a Redis-backed notifier.
func NewNotifier(client redis.UniversalClient, logger *slog.Logger) *Notifier {
	return &Notifier{client: client, logger: logger}
}

// Publish broadcasts change on the cart's channel.
func (n *Notifier) Publish(ctx context.Context, change domain.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal cart change: %w", err)
	}
	if err := n.client.Publish(ctx, Channel(change.CartID), data).Err(); err != nil {
		return fmt.Errorf("redis publish cart change: %w", err)
	}
	return nil
}

// Subscribe returns a channel of changes for cartID. The channel is closed
// when ctx is done or cancel is called; cancel is safe to call more than once.
func (n *Notifier) Subscribe(ctx context.Context, cartID string) (<-chan domain.Change, func(), error) {
	ps := n.client.Subscribe(ctx, Channel(cartID))
	// Wait for the subscription confirmation so no publish after Subscribe
	// returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe %s: %w", Channel(cartID), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan domain.Change, subscriberBuffer)

	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change domain.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					n.logger.Warn("discarding malformed cart change",
						slog.String("channel", msg.Channel),
						slog.String("error", err.Error()),
					)
					continue
				}
				deliver(out, change)
			}
		}
	}()

	return out, cancel, nil
}

// deliver sends change without blocking, evicting the oldest pending change
// when the buffer is full.
func deliver(out chan domain.Change, change domain.Change) {
	for {
		select {
		case out <- change:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
