package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/kafka"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/logger"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/domain"
)

// Kafka topics for cart domain events.
var (
	TopicCartItemAdded = pkgkafka.Topic("cart", "item_added")
	TopicCartCleared   = pkgkafka.Topic("cart", "cleared")
)

// AggregateTypeCart is the aggregate type of every cart event.
const AggregateTypeCart = "cart"

// SourceCartService identifies events originating from the cart service.
const SourceCartService = "cart-service"

// CartItemAddedData is the payload for a cart.item_added event.
type CartItemAddedData struct {
	CartID    string      `json:"cart_id"`
	Item      domain.Item `json:"item"`
	ItemCount int         `json:"item_count"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	CartID string `json:"cart_id"`
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer for the cart service.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishItemAdded publishes a cart.item_added event.
func (p *Producer) PublishItemAdded(ctx context.Context, cartID string, item domain.Item, count int) error {
	data := CartItemAddedData{CartID: cartID, Item: item, ItemCount: count}
	if err := p.publish(ctx, TopicCartItemAdded, cartID, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.item_added event",
		slog.String("cart_id", cartID),
		slog.String("product_id", item.ProductID),
		slog.Int("item_count", count),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, cartID string) error {
	if err := p.publish(ctx, TopicCartCleared, cartID, CartClearedData{CartID: cartID}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("cart_id", cartID),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, cartID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, cartID, AggregateTypeCart, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
