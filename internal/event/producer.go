package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/utafrali/storefront/pkg/kafka"

	"github.com/utafrali/storefront/internal/domain"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCartUpdated        = "storefront.cart.updated"
	TopicWishlistUpdated    = "storefront.wishlist.updated"
	TopicOrderCreated       = "storefront.order.created"
	TopicOrderStatusChanged = "storefront.order.status_changed"
)

// Aggregate type constants.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
	AggregateTypeOrder    = "order"
)

// Source identifier for events originating from the storefront.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event (full snapshot).
type CartUpdatedData struct {
	SessionID string            `json:"session_id"`
	Items     []domain.CartItem `json:"items"`
	Total     float64           `json:"total"`
	Count     int               `json:"count"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID  string `json:"session_id"`
	ProductIDs []int  `json:"product_ids"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   int    `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// Publisher publishes storefront domain events. A nil *Producer is a valid
// Publisher that drops everything, so event publishing can be disabled
// without conditionals at every call site.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, items []domain.CartItem) error
	PublishWishlistUpdated(ctx context.Context, sessionID string, products []domain.Product) error
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, orderID int, oldStatus, newStatus string) error
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event with the full cart
// snapshot.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, items []domain.CartItem) error {
	if p == nil {
		return nil
	}

	data := CartUpdatedData{
		SessionID: sessionID,
		Items:     items,
		Total:     domain.CartTotal(items),
		Count:     domain.CartCount(items),
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, sessionID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.Int("count", data.Count),
	)
	return nil
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, sessionID string, products []domain.Product) error {
	if p == nil {
		return nil
	}

	ids := make([]int, len(products))
	for i, product := range products {
		ids[i] = product.ID
	}
	data := WishlistUpdatedData{SessionID: sessionID, ProductIDs: ids}

	event, err := pkgkafka.NewEvent(TopicWishlistUpdated, sessionID, AggregateTypeWishlist, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create wishlist.updated event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicWishlistUpdated, event); err != nil {
		return fmt.Errorf("publish wishlist.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.updated event",
		slog.String("session_id", sessionID),
		slog.Int("count", len(ids)),
	)
	return nil
}

// PublishOrderCreated publishes an order.created event with the full order
// snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	if p == nil {
		return nil
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, strconv.Itoa(order.ID), AggregateTypeOrder, SourceStorefront, order)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.Int("order_id", order.ID),
		slog.Float64("total", order.Total),
	)
	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID int, oldStatus, newStatus string) error {
	if p == nil {
		return nil
	}

	data := OrderStatusChangedData{OrderID: orderID, OldStatus: oldStatus, NewStatus: newStatus}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, strconv.Itoa(orderID), AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.Int("order_id", orderID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)
	return nil
}
