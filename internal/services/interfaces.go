package services

import (
	"context"
	"time"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
)

// ProductStore is the catalog surface the services depend on
type ProductStore interface {
	Create(req *models.ProductCreateRequest) (*models.Product, error)
	GetByID(id int) (*models.Product, error)
	GetByCode(code string) (*models.Product, error)
	Search(filters repositories.ProductSearchFilters) ([]*models.Product, int, error)
	Update(id int, req *models.ProductUpdateRequest) (*models.Product, error)
	Delete(id int) error
	DecrementStock(id, quantity int) (int, error)
	IncrementStock(id, quantity int) (int, error)
	Categories() ([]string, error)
}

// CartStore is the cart surface the services depend on
type CartStore interface {
	Create() (*models.Cart, error)
	GetByID(id int) (*models.Cart, error)
	AddItem(cartID, productID, quantity int) (*models.Cart, error)
	SetItemQuantity(cartID, productID, quantity int) (*models.Cart, error)
	RemoveItem(cartID, productID int) (*models.Cart, error)
	RemoveItems(cartID int, productIDs []int) error
	Clear(cartID int) (*models.Cart, error)
	ValidateAgainstCatalog(cart *models.Cart) (*models.CartValidation, error)
}

// TicketStore is the ticket surface the services depend on
type TicketStore interface {
	Create(req *models.TicketCreateRequest) (*models.Ticket, error)
	GetByID(id int) (*models.Ticket, error)
	GetByCode(code string) (*models.Ticket, error)
	Search(filters repositories.TicketSearchFilters) ([]*models.Ticket, int, error)
	UpdateStatus(id int, status models.TicketStatus) (*models.Ticket, error)
	Delete(id int) error
	Stats(filters repositories.TicketSearchFilters) (*models.TicketStats, error)
}

// UserStore is the account surface the services depend on
type UserStore interface {
	Create(email, name, passwordHash string, role models.UserRole, cartID int) (*models.User, error)
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

// StockStore is the slice of the catalog checkout needs
type StockStore interface {
	DecrementStock(id, quantity int) (int, error)
	IncrementStock(id, quantity int) (int, error)
}

// CheckoutCartStore is the slice of the cart store checkout needs
type CheckoutCartStore interface {
	GetByID(id int) (*models.Cart, error)
	ValidateAgainstCatalog(cart *models.Cart) (*models.CartValidation, error)
	RemoveItems(cartID int, productIDs []int) error
}

// CheckoutTicketStore is the slice of the ticket store checkout needs
type CheckoutTicketStore interface {
	Create(req *models.TicketCreateRequest) (*models.Ticket, error)
	GetByCode(code string) (*models.Ticket, error)
}

// Notifier delivers purchase confirmations. Delivery is best effort;
// checkout never fails on a notifier error.
type Notifier interface {
	Send(ctx context.Context, email, name string, ticket *models.Ticket) error
}

// IdempotencyStore deduplicates checkout attempts by attempt id. TryLock
// claims an attempt for processing; Remember records its outcome so replays
// of the same attempt return the original ticket instead of charging twice.
type IdempotencyStore interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Remember(ctx context.Context, key, value string, ttl time.Duration) error
	Recall(ctx context.Context, key string) (string, bool, error)
	Release(ctx context.Context, key string) error
}
