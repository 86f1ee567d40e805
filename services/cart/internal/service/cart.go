package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/errors"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/validator"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/domain"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/repository"
)

// MaxItemsPerCart caps the number of entries a single cart may hold.
const MaxItemsPerCart = 50

// AddItemInput is the product snapshot to append to a cart.
type AddItemInput struct {
	ProductID string  `json:"product_id" validate:"required,max=128"`
	Name      string  `json:"name" validate:"required,max=500"`
	Price     float64 `json:"price" validate:"gte=0"`
	Currency  string  `json:"currency" validate:"omitempty,len=3,uppercase"`
	Category  string  `json:"category" validate:"max=64"`
	Image     string  `json:"image" validate:"omitempty,imageref,max=2048"`
}

// AddItemResult reports the stored snapshot and the cart size after the add.
type AddItemResult struct {
	Item  domain.Item `json:"item"`
	Count int         `json:"count"`
}

// Notifier broadcasts cart changes to subscribers.
type Notifier interface {
	Publish(ctx context.Context, change domain.Change) error
	Subscribe(ctx context.Context, cartID string) (<-chan domain.Change, func(), error)
}

// EventPublisher emits cart domain events.
type EventPublisher interface {
	PublishItemAdded(ctx context.Context, cartID string, item domain.Item, count int) error
	PublishCartCleared(ctx context.Context, cartID string) error
}

// CartService implements the business logic for cart operations.
type CartService struct {
	repo     repository.CartRepository
	notifier Notifier
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, notifier Notifier, events EventPublisher, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		notifier: notifier,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetCart returns the cart's items in insertion order. An unknown cart is empty.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	if cartID == "" {
		return nil, apperrors.InvalidInput("cart id is required")
	}

	items, err := s.repo.List(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return domain.NewCart(cartID, items), nil
}

// AddItem appends a product snapshot to the cart. Adding the same product
// again appends a second entry.
func (s *CartService) AddItem(ctx context.Context, cartID string, input AddItemInput) (*AddItemResult, error) {
	if cartID == "" {
		return nil, apperrors.InvalidInput("cart id is required")
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	item := domain.Item{
		ProductID: input.ProductID,
		Name:      input.Name,
		Price:     input.Price,
		Currency:  input.Currency,
		Category:  input.Category,
		Image:     input.Image,
		AddedAt:   s.now(),
	}

	count, err := s.repo.Append(ctx, cartID, item, MaxItemsPerCart)
	if errors.Is(err, repository.ErrCartFull) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
	}
	if err != nil {
		return nil, fmt.Errorf("append cart item: %w", err)
	}

	s.notify(ctx, domain.Change{CartID: cartID, Action: domain.ActionItemAdded, Count: count, At: item.AddedAt})

	if err := s.events.PublishItemAdded(ctx, cartID, item, count); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.item_added event",
			slog.String("cart_id", cartID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("cart_id", cartID),
		slog.String("product_id", item.ProductID),
		slog.Int("count", count),
	)

	return &AddItemResult{Item: item, Count: count}, nil
}

// Count returns the number of items in the cart, as shown on the cart badge.
func (s *CartService) Count(ctx context.Context, cartID string) (int, error) {
	if cartID == "" {
		return 0, apperrors.InvalidInput("cart id is required")
	}

	n, err := s.repo.Count(ctx, cartID)
	if err != nil {
		return 0, fmt.Errorf("count cart items: %w", err)
	}
	return n, nil
}

// ClearCart removes all items from the cart.
func (s *CartService) ClearCart(ctx context.Context, cartID string) error {
	if cartID == "" {
		return apperrors.InvalidInput("cart id is required")
	}

	if err := s.repo.Clear(ctx, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.notify(ctx, domain.Change{CartID: cartID, Action: domain.ActionCleared, Count: 0, At: s.now()})

	if err := s.events.PublishCartCleared(ctx, cartID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("cart_id", cartID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("cart_id", cartID),
	)

	return nil
}

// Subscribe streams changes to the cart until ctx is done or cancel is called.
func (s *CartService) Subscribe(ctx context.Context, cartID string) (<-chan domain.Change, func(), error) {
	if cartID == "" {
		return nil, nil, apperrors.InvalidInput("cart id is required")
	}

	ch, cancel, err := s.notifier.Subscribe(ctx, cartID)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe to cart changes: %w", err)
	}
	return ch, cancel, nil
}

// notify publishes a change; a failed notification never fails the write.
func (s *CartService) notify(ctx context.Context, change domain.Change) {
	if err := s.notifier.Publish(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart change",
			slog.String("cart_id", change.CartID),
			slog.String("action", change.Action),
			slog.String("error", err.Error()),
		)
	}
}
