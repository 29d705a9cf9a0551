package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/domain"
	"github.com/RozzaysRed/OnlineShop-Blazor/internal/repository"
	apperrors "github.com/RozzaysRed/OnlineShop-Blazor/pkg/errors"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/logger"
)

// ProductCatalog resolves products against the catalog service.
type ProductCatalog interface {
	Product(ctx context.Context, id int64) (*domain.Product, error)
	Products(ctx context.Context) (map[int64]domain.Product, error)
}

// EventProducer publishes cart item lifecycle events.
type EventProducer interface {
	ItemAdded(ctx context.Context, li domain.LineItem) error
	ItemUpdated(ctx context.Context, li domain.LineItem) error
	ItemRemoved(ctx context.Context, userID int64, item domain.CartItem) error
}

// AddItemInput carries the parameters of an add-to-cart request.
type AddItemInput struct {
	UserID    int64
	ProductID int64
	Quantity  int
}

// CartService implements the cart use cases on top of the repository and the
// catalog client.
type CartService struct {
	repo    repository.CartRepository
	catalog ProductCatalog
	events  EventProducer
	logger  *slog.Logger
}

// NewCartService wires the cart service. events may be nil when event
// publishing is disabled.
func NewCartService(repo repository.CartRepository, catalog ProductCatalog, events EventProducer, l *slog.Logger) *CartService {
	return &CartService{repo: repo, catalog: catalog, events: events, logger: l}
}

// AddItem adds a product to the user's cart. The product must exist in the
// catalog and must not already be in the cart; either violation rejects the
// request without modifying the cart.
func (s *CartService) AddItem(ctx context.Context, in AddItemInput) (domain.LineItem, error) {
	if in.UserID <= 0 {
		return domain.LineItem{}, apperrors.InvalidInput("user_id must be positive")
	}
	if in.ProductID <= 0 {
		return domain.LineItem{}, apperrors.InvalidInput("product_id must be positive")
	}
	if in.Quantity < 1 {
		return domain.LineItem{}, apperrors.InvalidInput("quantity must be at least 1")
	}

	product, err := s.catalog.Product(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.LineItem{}, apperrors.Rejected(fmt.Sprintf("product %d does not exist", in.ProductID))
		}
		return domain.LineItem{}, err
	}

	item, err := s.repo.AddItem(ctx, in.UserID, in.ProductID, in.Quantity)
	if err != nil {
		return domain.LineItem{}, err
	}

	li, err := domain.AssembleLineItem(in.UserID, *item, product)
	if err != nil {
		return domain.LineItem{}, apperrors.Internal(err)
	}

	s.publishAdded(ctx, li)
	return li, nil
}

// GetItem returns a single assembled line item.
func (s *CartService) GetItem(ctx context.Context, itemID int64) (domain.LineItem, error) {
	owned, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return domain.LineItem{}, err
	}

	product, err := s.catalog.Product(ctx, owned.Item.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.LineItem{}, apperrors.Internal(
				fmt.Errorf("cart item %d references unknown product %d", owned.Item.ID, owned.Item.ProductID))
		}
		return domain.LineItem{}, err
	}

	li, err := domain.AssembleLineItem(owned.UserID, owned.Item, product)
	if err != nil {
		return domain.LineItem{}, apperrors.Internal(err)
	}
	return li, nil
}

// GetItems returns the user's cart as assembled line items, resolving the
// whole catalog once rather than per item. A user without a cart gets an
// empty list.
func (s *CartService) GetItems(ctx context.Context, userID int64) ([]domain.LineItem, error) {
	if userID <= 0 {
		return nil, apperrors.InvalidInput("user_id must be positive")
	}

	items, err := s.repo.GetItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []domain.LineItem{}, nil
	}

	products, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}

	lineItems := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, apperrors.Internal(
				fmt.Errorf("cart item %d references unknown product %d", item.ID, item.ProductID))
		}
		li, err := domain.AssembleLineItem(userID, item, &product)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		lineItems = append(lineItems, li)
	}
	return lineItems, nil
}

// UpdateQuantity replaces the quantity of an existing cart item.
func (s *CartService) UpdateQuantity(ctx context.Context, itemID int64, quantity int) (domain.LineItem, error) {
	if quantity < 1 {
		return domain.LineItem{}, apperrors.InvalidInput("quantity must be at least 1")
	}

	owned, err := s.repo.UpdateQuantity(ctx, itemID, quantity)
	if err != nil {
		return domain.LineItem{}, err
	}

	product, err := s.catalog.Product(ctx, owned.Item.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.LineItem{}, apperrors.Internal(
				fmt.Errorf("cart item %d references unknown product %d", owned.Item.ID, owned.Item.ProductID))
		}
		return domain.LineItem{}, err
	}

	li, err := domain.AssembleLineItem(owned.UserID, owned.Item, product)
	if err != nil {
		return domain.LineItem{}, apperrors.Internal(err)
	}

	s.publishUpdated(ctx, li)
	return li, nil
}

// DeleteItem removes an item from the cart and returns what was removed.
// The deletion stands even when the product can no longer be resolved; in
// that case the returned line item carries the stored fields only.
func (s *CartService) DeleteItem(ctx context.Context, itemID int64) (domain.LineItem, error) {
	owned, err := s.repo.DeleteItem(ctx, itemID)
	if err != nil {
		return domain.LineItem{}, err
	}

	li := domain.LineItem{
		ID:        owned.Item.ID,
		CartID:    owned.Item.CartID,
		UserID:    owned.UserID,
		ProductID: owned.Item.ProductID,
		Quantity:  owned.Item.Quantity,
	}

	product, err := s.catalog.Product(ctx, owned.Item.ProductID)
	if err == nil {
		if assembled, aerr := domain.AssembleLineItem(owned.UserID, owned.Item, product); aerr == nil {
			li = assembled
		}
	} else {
		logger.FromContext(ctx).WarnContext(ctx, "deleted item could not be assembled",
			slog.Int64("cart_item_id", owned.Item.ID),
			slog.Int64("product_id", owned.Item.ProductID),
			slog.String("error", err.Error()),
		)
	}

	s.publishRemoved(ctx, owned.UserID, owned.Item)
	return li, nil
}

// Event publishing is best effort. A broker outage must not fail the cart
// operation that already committed.
func (s *CartService) publishAdded(ctx context.Context, li domain.LineItem) {
	if s.events == nil {
		return
	}
	if err := s.events.ItemAdded(ctx, li); err != nil {
		s.logEventFailure(ctx, "cart.item.added", li.ID, err)
	}
}

func (s *CartService) publishUpdated(ctx context.Context, li domain.LineItem) {
	if s.events == nil {
		return
	}
	if err := s.events.ItemUpdated(ctx, li); err != nil {
		s.logEventFailure(ctx, "cart.item.updated", li.ID, err)
	}
}

func (s *CartService) publishRemoved(ctx context.Context, userID int64, item domain.CartItem) {
	if s.events == nil {
		return
	}
	if err := s.events.ItemRemoved(ctx, userID, item); err != nil {
		s.logEventFailure(ctx, "cart.item.removed", item.ID, err)
	}
}

func (s *CartService) logEventFailure(ctx context.Context, eventType string, itemID int64, err error) {
	s.logger.WarnContext(ctx, "event publish failed",
		slog.String("event_type", eventType),
		slog.Int64("cart_item_id", itemID),
		slog.String("error", err.Error()),
	)
}
