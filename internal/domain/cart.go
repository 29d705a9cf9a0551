package domain

import "time"

// Cart holds the items a user intends to purchase. Each user has exactly one
// cart, created on demand the first time an item is added.
type Cart struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem is a single product entry in a cart. A cart holds at most one item
// per product; quantity changes go through updates, not duplicate rows.
type CartItem struct {
	ID        int64     `json:"id"`
	CartID    int64     `json:"cart_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is the catalog view of a product as returned by the catalog
// service. Price is in the smallest currency unit.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Price       int64  `json:"price"`
}
