package models

import "time"

// Cart represents a shopping cart. Items keep their insertion order.
type Cart struct {
	ID        int        `json:"id" db:"id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// CartItem references a catalog product with a requested quantity
type CartItem struct {
	ProductID int `json:"product_id" db:"product_id"`
	Quantity  int `json:"quantity" db:"quantity"`
}

// ItemCount returns the total quantity across all lines
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// HasProduct returns true if the cart contains a line for the product
func (c *Cart) HasProduct(productID int) bool {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// ValidatedLine is a cart line whose product passed catalog validation,
// carrying the product so checkout can snapshot its price.
type ValidatedLine struct {
	Item    CartItem `json:"item"`
	Product *Product `json:"product"`
}

// RejectedLine is a cart line that failed catalog validation
type RejectedLine struct {
	Item           CartItem `json:"item"`
	Reason         string   `json:"reason"`
	AvailableStock int      `json:"available_stock"`
}

// Rejection reasons reported by catalog validation and checkout
const (
	ReasonProductMissing    = "product not found"
	ReasonProductInactive   = "product not available"
	ReasonInsufficientStock = "insufficient stock"
)

// CartValidation partitions a cart's lines into valid and invalid sets.
// Both slices mirror the cart's line order; every line lands in exactly one.
type CartValidation struct {
	Valid   []ValidatedLine `json:"valid"`
	Invalid []RejectedLine  `json:"invalid"`
}
