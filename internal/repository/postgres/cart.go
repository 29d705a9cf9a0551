package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/domain"
	"github.com/RozzaysRed/OnlineShop-Blazor/internal/repository"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/database"
	apperrors "github.com/RozzaysRed/OnlineShop-Blazor/pkg/errors"
)

// CartRepository is the Postgres implementation of repository.CartRepository.
type CartRepository struct {
	db database.DBTX
}

// NewCartRepository creates a repository backed by the given pool.
func NewCartRepository(db database.DBTX) *CartRepository {
	return &CartRepository{db: db}
}

var _ repository.CartRepository = (*CartRepository)(nil)

// addItemQuery creates the user's cart if missing and inserts the item in a
// single atomic statement. The no-op UPDATE on carts makes RETURNING yield
// the cart ID whether the cart is new or existing. When the product is
// already in the cart, the item insert hits the unique constraint and
// returns no row.
const addItemQuery = `
WITH cart AS (
	INSERT INTO carts (user_id) VALUES ($1)
	ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
	RETURNING id
)
INSERT INTO cart_items (cart_id, product_id, quantity)
SELECT cart.id, $2, $3 FROM cart
ON CONFLICT (cart_id, product_id) DO NOTHING
RETURNING id, cart_id, product_id, quantity, created_at, updated_at`

func (r *CartRepository) AddItem(ctx context.Context, userID, productID int64, quantity int) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.QueryRow(ctx, addItemQuery, userID, productID, quantity).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.Rejected(fmt.Sprintf("product %d is already in the cart", productID))
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("add cart item: %w", err))
	}
	return &item, nil
}

const getItemQuery = `
SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at, c.user_id
FROM cart_items ci
JOIN carts c ON c.id = ci.cart_id
WHERE ci.id = $1`

func (r *CartRepository) GetItem(ctx context.Context, itemID int64) (*repository.OwnedItem, error) {
	var owned repository.OwnedItem
	err := r.db.QueryRow(ctx, getItemQuery, itemID).Scan(
		&owned.Item.ID, &owned.Item.CartID, &owned.Item.ProductID,
		&owned.Item.Quantity, &owned.Item.CreatedAt, &owned.Item.UpdatedAt,
		&owned.UserID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("cart item", strconv.FormatInt(itemID, 10))
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("get cart item: %w", err))
	}
	return &owned, nil
}

const getItemsQuery = `
SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at
FROM cart_items ci
JOIN carts c ON c.id = ci.cart_id
WHERE c.user_id = $1
ORDER BY ci.id`

func (r *CartRepository) GetItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	rows, err := r.db.Query(ctx, getItemsQuery, userID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list cart items: %w", err))
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, apperrors.Internal(fmt.Errorf("scan cart item: %w", err))
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("iterate cart items: %w", err))
	}
	return items, nil
}

const updateQuantityQuery = `
UPDATE cart_items ci
SET quantity = $2, updated_at = now()
FROM carts c
WHERE ci.id = $1 AND c.id = ci.cart_id
RETURNING ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at, c.user_id`

func (r *CartRepository) UpdateQuantity(ctx context.Context, itemID int64, quantity int) (*repository.OwnedItem, error) {
	var owned repository.OwnedItem
	err := r.db.QueryRow(ctx, updateQuantityQuery, itemID, quantity).Scan(
		&owned.Item.ID, &owned.Item.CartID, &owned.Item.ProductID,
		&owned.Item.Quantity, &owned.Item.CreatedAt, &owned.Item.UpdatedAt,
		&owned.UserID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("cart item", strconv.FormatInt(itemID, 10))
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("update cart item quantity: %w", err))
	}
	return &owned, nil
}

const deleteItemQuery = `
DELETE FROM cart_items ci
USING carts c
WHERE ci.id = $1 AND c.id = ci.cart_id
RETURNING ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at, c.user_id`

func (r *CartRepository) DeleteItem(ctx context.Context, itemID int64) (*repository.OwnedItem, error) {
	var owned repository.OwnedItem
	err := r.db.QueryRow(ctx, deleteItemQuery, itemID).Scan(
		&owned.Item.ID, &owned.Item.CartID, &owned.Item.ProductID,
		&owned.Item.Quantity, &owned.Item.CreatedAt, &owned.Item.UpdatedAt,
		&owned.UserID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("cart item", strconv.FormatInt(itemID, 10))
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("delete cart item: %w", err))
	}
	return &owned, nil
}
