package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bharat2468/cloud-project/internal/domain"
	pkgkafka "github.com/bharat2468/cloud-project/pkg/kafka"
)

// Kafka topic constants for cart domain events.
const (
	TopicItemAdded   = "storefront.cart.item_added"
	TopicItemRemoved = "storefront.cart.item_removed"
	TopicCheckedOut  = "storefront.cart.checked_out"
)

// Aggregate type constant.
const AggregateTypeCart = "cart"

// Source identifier for events originating from the cart service.
const SourceCartService = "cart-service"

// ItemAddedData is the payload for a cart.item_added event.
type ItemAddedData struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// ItemRemovedData is the payload for a cart.item_removed event.
type ItemRemovedData struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

// CheckedOutData is the payload for a cart.checked_out event. It carries the
// cleared product ids only; consumers re-price against the catalog themselves
// since cart views never persist prices.
type CheckedOutData struct {
	UserID     string   `json:"user_id"`
	ProductIDs []string `json:"product_ids"`
	ItemCount  int      `json:"item_count"`
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the cart service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishItemAdded publishes a cart.item_added event.
func (p *Producer) PublishItemAdded(ctx context.Context, item domain.CartItem) error {
	data := ItemAddedData{
		UserID:    item.UserID,
		ProductID: item.ProductID,
		AddedAt:   item.AddedAt,
	}

	event, err := pkgkafka.NewEvent(TopicItemAdded, item.UserID, AggregateTypeCart, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create cart.item_added event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicItemAdded, event); err != nil {
		return fmt.Errorf("publish cart.item_added event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.item_added event",
		slog.String("user_id", item.UserID),
		slog.String("product_id", item.ProductID),
	)

	return nil
}

// PublishItemRemoved publishes a cart.item_removed event.
func (p *Producer) PublishItemRemoved(ctx context.Context, item domain.CartItem) error {
	data := ItemRemovedData{
		UserID:    item.UserID,
		ProductID: item.ProductID,
	}

	event, err := pkgkafka.NewEvent(TopicItemRemoved, item.UserID, AggregateTypeCart, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create cart.item_removed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicItemRemoved, event); err != nil {
		return fmt.Errorf("publish cart.item_removed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.item_removed event",
		slog.String("user_id", item.UserID),
		slog.String("product_id", item.ProductID),
	)

	return nil
}

// PublishCheckedOut publishes a cart.checked_out event for the cleared rows.
// An empty cart still produces an event so downstream consumers observe the
// checkout attempt.
func (p *Producer) PublishCheckedOut(ctx context.Context, userID string, items []domain.CartItem) error {
	productIDs := make([]string, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	data := CheckedOutData{
		UserID:     userID,
		ProductIDs: productIDs,
		ItemCount:  len(items),
	}

	event, err := pkgkafka.NewEvent(TopicCheckedOut, userID, AggregateTypeCart, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create cart.checked_out event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCheckedOut, event); err != nil {
		return fmt.Errorf("publish cart.checked_out event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.checked_out event",
		slog.String("user_id", userID),
		slog.Int("item_count", len(items)),
	)

	return nil
}
