package domain

import "fmt"

// LineItem is the assembled cart entry served to clients: a cart item joined
// with the catalog data of its product. TotalPrice is derived, never stored.
type LineItem struct {
	ID          int64  `json:"id"`
	CartID      int64  `json:"cart_id"`
	UserID      int64  `json:"user_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	TotalPrice  int64  `json:"total_price"`
}

// AssembleLineItem joins a cart item with its product. A nil product means
// the stored item references a product the catalog no longer knows about,
// which is a data integrity fault rather than a user error.
func AssembleLineItem(userID int64, item CartItem, product *Product) (LineItem, error) {
	if product == nil {
		return LineItem{}, fmt.Errorf("cart item %d references unknown product %d", item.ID, item.ProductID)
	}

	return LineItem{
		ID:          item.ID,
		CartID:      item.CartID,
		UserID:      userID,
		ProductID:   item.ProductID,
		ProductName: product.Name,
		Description: product.Description,
		ImageURL:    product.ImageURL,
		UnitPrice:   product.Price,
		Quantity:    item.Quantity,
		TotalPrice:  product.Price * int64(item.Quantity),
	}, nil
}
