package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ecommerce-platform/internal/models"
)

// ProductRepository handles product data operations and owns the
// authoritative stock counter
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ProductSearchFilters represents filters for product search
type ProductSearchFilters struct {
	Category string
	Status   models.ProductStatus
	MinPrice int
	MaxPrice int
	Query    string // Matches title, description or category
	Limit    int
	Offset   int
	SortBy   string // "price", "title", "created_at"
	SortDesc bool
}

const productColumns = "id, title, description, code, price, stock, status, category, created_at, updated_at"

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Code,
		&product.Price,
		&product.Stock,
		&product.Status,
		&product.Category,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Create creates a new product
func (r *ProductRepository) Create(req *models.ProductCreateRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := r.db.Exec(`
		INSERT INTO products (title, description, code, price, stock, status, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Title, req.Description, req.Code, req.Price, req.Stock, req.Status, req.Category, now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, models.ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get product id: %w", err)
	}

	return r.GetByID(int(id))
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(id int) (*models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = ?", productColumns)

	product, err := scanProduct(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetByCode retrieves a product by its unique code
func (r *ProductRepository) GetByCode(code string) (*models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE code = ?", productColumns)

	product, err := scanProduct(r.db.QueryRow(query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewNotFoundError("product", code)
		}
		return nil, fmt.Errorf("failed to get product by code: %w", err)
	}

	return product, nil
}

// GetByIDs retrieves several products keyed by id. Missing ids are simply
// absent from the result.
func (r *ProductRepository) GetByIDs(ids []int) (map[int]*models.Product, error) {
	products := make(map[int]*models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf("SELECT %s FROM products WHERE id IN (%s)", productColumns, placeholders)
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[product.ID] = product
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Search searches for products with filters and pagination, returning the
// matching page and the total match count
func (r *ProductRepository) Search(filters ProductSearchFilters) ([]*models.Product, int, error) {
	var conditions []string
	var args []interface{}

	if filters.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filters.Category)
	}
	if filters.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filters.Status)
	}
	if filters.MinPrice > 0 {
		conditions = append(conditions, "price >= ?")
		args = append(args, filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		conditions = append(conditions, "price <= ?")
		args = append(args, filters.MaxPrice)
	}
	if filters.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ? OR category LIKE ?)")
		pattern := "%" + filters.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	orderBy := "ORDER BY created_at DESC"
	switch filters.SortBy {
	case "price", "title", "created_at":
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("ORDER BY %s %s", filters.SortBy, direction)
	}

	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	query := fmt.Sprintf("SELECT %s FROM products %s %s LIMIT ? OFFSET ?",
		productColumns, whereClause, orderBy)
	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// Update updates a product's mutable fields
func (r *ProductRepository) Update(id int, req *models.ProductUpdateRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var sets []string
	var args []interface{}

	if req.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *req.Title)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.Code != nil {
		sets = append(sets, "code = ?")
		args = append(args, *req.Code)
	}
	if req.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *req.Price)
	}
	if req.Stock != nil {
		sets = append(sets, "stock = ?")
		args = append(args, *req.Stock)
	}
	if req.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *req.Status)
	}
	if req.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *req.Category)
	}

	if len(sets) == 0 {
		return r.GetByID(id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = ?", strings.Join(sets, ", "))
	result, err := r.db.Exec(query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, models.ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, models.NewNotFoundError("product", id)
	}

	return r.GetByID(id)
}

// Delete deletes a product
func (r *ProductRepository) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.NewNotFoundError("product", id)
	}

	return nil
}

// DecrementStock subtracts quantity from a product's stock as a single
// conditional update. The precondition stock >= quantity and the subtraction
// execute as one indivisible statement, so concurrent checkouts can never
// drive stock negative. Returns the updated stock, or InsufficientStockError
// when the precondition no longer holds.
func (r *ProductRepository) DecrementStock(id, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, models.NewValidationError("quantity", "quantity must be greater than 0")
	}

	result, err := r.db.Exec(`
		UPDATE products
		SET stock = stock - ?, updated_at = ?
		WHERE id = ? AND stock >= ?`,
		quantity, time.Now().UTC(), id, quantity,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	var stock int
	err = r.db.QueryRow("SELECT stock FROM products WHERE id = ?", id).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, models.NewNotFoundError("product", id)
		}
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}

	if rowsAffected == 0 {
		return 0, &models.InsufficientStockError{
			ProductID: id,
			Requested: quantity,
			Available: stock,
		}
	}

	return stock, nil
}

// IncrementStock adds quantity back to a product's stock. Used by restock
// and cancellation flows; no precondition.
func (r *ProductRepository) IncrementStock(id, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, models.NewValidationError("quantity", "quantity must be greater than 0")
	}

	result, err := r.db.Exec(`
		UPDATE products
		SET stock = stock + ?, updated_at = ?
		WHERE id = ?`,
		quantity, time.Now().UTC(), id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to increment stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, models.NewNotFoundError("product", id)
	}

	var stock int
	if err := r.db.QueryRow("SELECT stock FROM products WHERE id = ?", id).Scan(&stock); err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}

	return stock, nil
}

// Categories returns the distinct product categories
func (r *ProductRepository) Categories() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT category FROM products ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}
