package services

import (
	"go.uber.org/zap"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
)

// ProductService handles catalog business logic
type ProductService struct {
	products ProductStore
	logger   *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(products ProductStore, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{products: products, logger: logger}
}

// Create adds a product to the catalog
func (s *ProductService) Create(req *models.ProductCreateRequest) (*models.Product, error) {
	product, err := s.products.Create(req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.Int("product_id", product.ID),
		zap.String("code", product.Code))
	return product, nil
}

// Get retrieves a product by id
func (s *ProductService) Get(id int) (*models.Product, error) {
	return s.products.GetByID(id)
}

// GetByCode retrieves a product by its unique code
func (s *ProductService) GetByCode(code string) (*models.Product, error) {
	return s.products.GetByCode(code)
}

// Search lists products matching the filters
func (s *ProductService) Search(filters repositories.ProductSearchFilters) ([]*models.Product, int, error) {
	return s.products.Search(filters)
}

// Update modifies a product
func (s *ProductService) Update(id int, req *models.ProductUpdateRequest) (*models.Product, error) {
	product, err := s.products.Update(id, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product updated", zap.Int("product_id", id))
	return product, nil
}

// Delete removes a product from the catalog. Existing cart lines referencing
// it become invalid and are reported at validation time.
func (s *ProductService) Delete(id int) error {
	if err := s.products.Delete(id); err != nil {
		return err
	}

	s.logger.Info("product deleted", zap.Int("product_id", id))
	return nil
}

// Restock adds stock to a product
func (s *ProductService) Restock(id, quantity int) (*models.Product, error) {
	if _, err := s.products.IncrementStock(id, quantity); err != nil {
		return nil, err
	}

	s.logger.Info("product restocked",
		zap.Int("product_id", id),
		zap.Int("quantity", quantity))
	return s.products.GetByID(id)
}

// Categories lists the distinct catalog categories
func (s *ProductService) Categories() ([]string, error) {
	return s.products.Categories()
}
