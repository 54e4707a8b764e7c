package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"ecommerce-platform/internal/models"
)

// CartRepository handles cart data operations. Carts hold product references
// only; prices and titles are resolved against the catalog at read time.
type CartRepository struct {
	db       *sql.DB
	products *ProductRepository
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *sql.DB, products *ProductRepository) *CartRepository {
	return &CartRepository{db: db, products: products}
}

// Create creates a new empty cart
func (r *CartRepository) Create() (*models.Cart, error) {
	now := time.Now().UTC()
	result, err := r.db.Exec(
		"INSERT INTO carts (created_at, updated_at) VALUES (?, ?)", now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart id: %w", err)
	}

	return &models.Cart{ID: int(id), Items: []models.CartItem{}, CreatedAt: now, UpdatedAt: now}, nil
}

// GetByID retrieves a cart with its lines in insertion order
func (r *CartRepository) GetByID(id int) (*models.Cart, error) {
	cart := &models.Cart{Items: []models.CartItem{}}
	err := r.db.QueryRow(
		"SELECT id, created_at, updated_at FROM carts WHERE id = ?", id,
	).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFoundError("cart", id)
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	rows, err := r.db.Query(
		"SELECT product_id, quantity FROM cart_items WHERE cart_id = ? ORDER BY position", id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return cart, nil
}

// AddItem adds quantity of a product to the cart, merging into an existing
// line when the product is already present. The product must exist in the
// catalog; stock is not checked here, only at checkout.
func (r *CartRepository) AddItem(cartID, productID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, models.NewValidationError("quantity", "quantity must be at least 1")
	}
	if _, err := r.products.GetByID(productID); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(*) FROM carts WHERE id = ?", cartID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check cart: %w", err)
	}
	if exists == 0 {
		return nil, models.NewNotFoundError("cart", cartID)
	}

	result, err := tx.Exec(`
		UPDATE cart_items SET quantity = quantity + ?
		WHERE cart_id = ? AND product_id = ?`,
		quantity, cartID, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to merge cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// New line goes at the end
		_, err = tx.Exec(`
			INSERT INTO cart_items (cart_id, product_id, quantity, position)
			VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM cart_items WHERE cart_id = ?))`,
			cartID, productID, quantity, cartID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert cart item: %w", err)
		}
	}

	if _, err := tx.Exec("UPDATE carts SET updated_at = ? WHERE id = ?", time.Now().UTC(), cartID); err != nil {
		return nil, fmt.Errorf("failed to touch cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return r.GetByID(cartID)
}

// SetItemQuantity replaces the quantity on an existing cart line. A
// quantity of zero or less removes the line.
func (r *CartRepository) SetItemQuantity(cartID, productID, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return r.RemoveItem(cartID, productID)
	}

	result, err := r.db.Exec(`
		UPDATE cart_items SET quantity = ?
		WHERE cart_id = ? AND product_id = ?`,
		quantity, cartID, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(cartID); err != nil {
			return nil, err
		}
		return nil, models.NewNotFoundError("cart item", productID)
	}

	if _, err := r.db.Exec("UPDATE carts SET updated_at = ? WHERE id = ?", time.Now().UTC(), cartID); err != nil {
		return nil, fmt.Errorf("failed to touch cart: %w", err)
	}

	return r.GetByID(cartID)
}

// RemoveItem removes a single product line from the cart
func (r *CartRepository) RemoveItem(cartID, productID int) (*models.Cart, error) {
	result, err := r.db.Exec(
		"DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?", cartID, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(cartID); err != nil {
			return nil, err
		}
		return nil, models.NewNotFoundError("cart item", productID)
	}

	if _, err := r.db.Exec("UPDATE carts SET updated_at = ? WHERE id = ?", time.Now().UTC(), cartID); err != nil {
		return nil, fmt.Errorf("failed to touch cart: %w", err)
	}

	return r.GetByID(cartID)
}

// RemoveItems removes the given product lines from the cart. Checkout uses
// this to trim purchased lines while leaving rejected ones in place.
func (r *CartRepository) RemoveItems(cartID int, productIDs []int) error {
	if len(productIDs) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, productID := range productIDs {
		if _, err := tx.Exec(
			"DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?", cartID, productID,
		); err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
	}

	if _, err := tx.Exec("UPDATE carts SET updated_at = ? WHERE id = ?", time.Now().UTC(), cartID); err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}

	return tx.Commit()
}

// Clear removes every line from the cart
func (r *CartRepository) Clear(cartID int) (*models.Cart, error) {
	if _, err := r.GetByID(cartID); err != nil {
		return nil, err
	}

	if _, err := r.db.Exec("DELETE FROM cart_items WHERE cart_id = ?", cartID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	if _, err := r.db.Exec("UPDATE carts SET updated_at = ? WHERE id = ?", time.Now().UTC(), cartID); err != nil {
		return nil, fmt.Errorf("failed to touch cart: %w", err)
	}

	return r.GetByID(cartID)
}

// Delete deletes a cart and its lines
func (r *CartRepository) Delete(cartID int) error {
	result, err := r.db.Exec("DELETE FROM carts WHERE id = ?", cartID)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.NewNotFoundError("cart", cartID)
	}

	return nil
}

// ValidateAgainstCatalog partitions the cart's lines into valid and invalid
// sets based on the current catalog state. A line is valid when its product
// exists, is active and has stock covering the requested quantity. The
// result is advisory: stock may move between this check and checkout, which
// re-verifies each line with a conditional decrement.
func (r *CartRepository) ValidateAgainstCatalog(cart *models.Cart) (*models.CartValidation, error) {
	validation := &models.CartValidation{
		Valid:   []models.ValidatedLine{},
		Invalid: []models.RejectedLine{},
	}

	ids := make([]int, len(cart.Items))
	for i, item := range cart.Items {
		ids[i] = item.ProductID
	}

	catalog, err := r.products.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	for _, item := range cart.Items {
		product, ok := catalog[item.ProductID]
		switch {
		case !ok:
			validation.Invalid = append(validation.Invalid, models.RejectedLine{
				Item:   item,
				Reason: models.ReasonProductMissing,
			})
		case !product.IsActive():
			validation.Invalid = append(validation.Invalid, models.RejectedLine{
				Item:           item,
				Reason:         models.ReasonProductInactive,
				AvailableStock: product.Stock,
			})
		case product.Stock < item.Quantity:
			validation.Invalid = append(validation.Invalid, models.RejectedLine{
				Item:           item,
				Reason:         models.ReasonInsufficientStock,
				AvailableStock: product.Stock,
			})
		default:
			validation.Valid = append(validation.Valid, models.ValidatedLine{
				Item:    item,
				Product: product,
			})
		}
	}

	return validation, nil
}
