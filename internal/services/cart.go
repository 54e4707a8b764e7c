package services

import (
	"go.uber.org/zap"

	"ecommerce-platform/internal/models"
)

// CartService handles cart business logic
type CartService struct {
	carts  CartStore
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts CartStore, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{carts: carts, logger: logger}
}

// Create creates a new empty cart
func (s *CartService) Create() (*models.Cart, error) {
	cart, err := s.carts.Create()
	if err != nil {
		return nil, err
	}

	s.logger.Info("cart created", zap.Int("cart_id", cart.ID))
	return cart, nil
}

// Get retrieves a cart
func (s *CartService) Get(id int) (*models.Cart, error) {
	return s.carts.GetByID(id)
}

// AddItem adds quantity of a product to the cart, merging duplicate lines
func (s *CartService) AddItem(cartID, productID, quantity int) (*models.Cart, error) {
	return s.carts.AddItem(cartID, productID, quantity)
}

// SetItemQuantity replaces the quantity on a cart line; zero or less
// removes the line
func (s *CartService) SetItemQuantity(cartID, productID, quantity int) (*models.Cart, error) {
	return s.carts.SetItemQuantity(cartID, productID, quantity)
}

// RemoveItem removes one product line from the cart
func (s *CartService) RemoveItem(cartID, productID int) (*models.Cart, error) {
	return s.carts.RemoveItem(cartID, productID)
}

// Clear removes every line from the cart
func (s *CartService) Clear(cartID int) (*models.Cart, error) {
	return s.carts.Clear(cartID)
}

// Validate reports which cart lines would survive a checkout right now.
// The answer is advisory; checkout re-verifies with atomic decrements.
func (s *CartService) Validate(cartID int) (*models.CartValidation, error) {
	cart, err := s.carts.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	return s.carts.ValidateAgainstCatalog(cart)
}
