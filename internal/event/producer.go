package event

import (
	"context"
	"strconv"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/domain"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/kafka"
)

// Kafka topics for cart item lifecycle events.
const (
	TopicItemAdded   = "shoponline.cart.item.added"
	TopicItemUpdated = "shoponline.cart.item.updated"
	TopicItemRemoved = "shoponline.cart.item.removed"
)

const source = "cart-service"

// ItemEvent is the payload for every cart item lifecycle event.
type ItemEvent struct {
	CartItemID int64 `json:"cart_item_id"`
	CartID     int64 `json:"cart_id"`
	UserID     int64 `json:"user_id"`
	ProductID  int64 `json:"product_id"`
	Quantity   int   `json:"quantity"`
	UnitPrice  int64 `json:"unit_price,omitempty"`
}

// Publisher sends event envelopes to Kafka. Satisfied by kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event kafka.Event) error
}

// Producer publishes cart item lifecycle events. Events for the same user
// share a partition key so consumers see them in order.
type Producer struct {
	publisher Publisher
}

// NewProducer wraps a Kafka publisher.
func NewProducer(publisher Publisher) *Producer {
	return &Producer{publisher: publisher}
}

func (p *Producer) publish(ctx context.Context, topic, eventType string, payload ItemEvent) error {
	ev, err := kafka.NewEvent(eventType, source, payload)
	if err != nil {
		return err
	}
	key := strconv.FormatInt(payload.UserID, 10)
	return p.publisher.Publish(ctx, topic, key, ev)
}

// ItemAdded publishes an item-added event.
func (p *Producer) ItemAdded(ctx context.Context, li domain.LineItem) error {
	return p.publish(ctx, TopicItemAdded, "cart.item.added", ItemEvent{
		CartItemID: li.ID,
		CartID:     li.CartID,
		UserID:     li.UserID,
		ProductID:  li.ProductID,
		Quantity:   li.Quantity,
		UnitPrice:  li.UnitPrice,
	})
}

// ItemUpdated publishes a quantity-updated event.
func (p *Producer) ItemUpdated(ctx context.Context, li domain.LineItem) error {
	return p.publish(ctx, TopicItemUpdated, "cart.item.updated", ItemEvent{
		CartItemID: li.ID,
		CartID:     li.CartID,
		UserID:     li.UserID,
		ProductID:  li.ProductID,
		Quantity:   li.Quantity,
		UnitPrice:  li.UnitPrice,
	})
}

// ItemRemoved publishes an item-removed event.
func (p *Producer) ItemRemoved(ctx context.Context, userID int64, item domain.CartItem) error {
	return p.publish(ctx, TopicItemRemoved, "cart.item.removed", ItemEvent{
		CartItemID: item.ID,
		CartID:     item.CartID,
		UserID:     userID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity,
	})
}
