package repository

import (
	"context"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/domain"
)

// OwnedItem is a cart item together with the ID of the user owning the cart.
// Single-item reads resolve ownership through the cart in one round trip.
type OwnedItem struct {
	Item   domain.CartItem
	UserID int64
}

// CartRepository provides access to carts and their items.
type CartRepository interface {
	// AddItem inserts an item into the user's cart, creating the cart on
	// first use. Returns a rejected error when the product is already in
	// the cart.
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*domain.CartItem, error)

	// GetItem returns a single cart item by its ID along with the owning
	// user.
	GetItem(ctx context.Context, itemID int64) (*OwnedItem, error)

	// GetItems returns all items in the user's cart. A user without a cart
	// gets an empty slice.
	GetItems(ctx context.Context, userID int64) ([]domain.CartItem, error)

	// UpdateQuantity replaces the quantity of an existing item.
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) (*OwnedItem, error)

	// DeleteItem removes an item and returns it so callers can report what
	// was removed.
	DeleteItem(ctx context.Context, itemID int64) (*OwnedItem, error)
}
