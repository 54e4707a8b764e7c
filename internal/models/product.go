package models

import (
	"strings"
	"time"
)

// ProductStatus represents the availability status of a catalog product
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// Product represents a catalog entry with an authoritative stock counter
type Product struct {
	ID          int           `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Code        string        `json:"code" db:"code"`
	Price       int           `json:"price" db:"price"` // Price in cents
	Stock       int           `json:"stock" db:"stock"`
	Status      ProductStatus `json:"status" db:"status"`
	Category    string        `json:"category" db:"category"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// ProductCreateRequest represents the data needed to create a product
type ProductCreateRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Code        string        `json:"code"`
	Price       int           `json:"price"`
	Stock       int           `json:"stock"`
	Status      ProductStatus `json:"status"`
	Category    string        `json:"category"`
}

// ProductUpdateRequest represents the fields that can be updated on a product.
// Nil pointers leave the stored value untouched.
type ProductUpdateRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Code        *string        `json:"code,omitempty"`
	Price       *int           `json:"price,omitempty"`
	Stock       *int           `json:"stock,omitempty"`
	Status      *ProductStatus `json:"status,omitempty"`
	Category    *string        `json:"category,omitempty"`
}

// Validate validates product creation data
func (req *ProductCreateRequest) Validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(req.Code) == "" {
		return NewValidationError("code", "code is required")
	}
	if req.Price < 0 {
		return NewValidationError("price", "price cannot be negative")
	}
	if req.Stock < 0 {
		return NewValidationError("stock", "stock cannot be negative")
	}
	if strings.TrimSpace(req.Category) == "" {
		return NewValidationError("category", "category is required")
	}
	if req.Status == "" {
		req.Status = ProductActive
	}
	return validateProductStatus(req.Status)
}

// Validate validates product update data
func (req *ProductUpdateRequest) Validate() error {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return NewValidationError("title", "title cannot be empty")
	}
	if req.Code != nil && strings.TrimSpace(*req.Code) == "" {
		return NewValidationError("code", "code cannot be empty")
	}
	if req.Price != nil && *req.Price < 0 {
		return NewValidationError("price", "price cannot be negative")
	}
	if req.Stock != nil && *req.Stock < 0 {
		return NewValidationError("stock", "stock cannot be negative")
	}
	if req.Status != nil {
		return validateProductStatus(*req.Status)
	}
	return nil
}

func validateProductStatus(status ProductStatus) error {
	switch status {
	case ProductActive, ProductInactive:
		return nil
	default:
		return NewValidationError("status", "invalid product status")
	}
}

// IsActive returns true if the product is available for purchase
func (p *Product) IsActive() bool {
	return p.Status == ProductActive
}

// HasStock returns true if the product can cover the requested quantity.
// Advisory only; the atomic decrement is the authoritative check.
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

// PriceInCurrency returns the price in the main currency unit as a float
func (p *Product) PriceInCurrency() float64 {
	return float64(p.Price) / 100.0
}

// Audience identifies who a projected view is shaped for
type Audience string

const (
	AudiencePublic Audience = "public"
	AudienceAdmin  Audience = "admin"
	AudienceCart   Audience = "cart"
)

// ProductView is the single projected response shape for a product.
// Fields not exposed to the audience are zeroed and omitted from JSON.
type ProductView struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Code        string        `json:"code,omitempty"`
	Price       int           `json:"price"`
	Stock       int           `json:"stock,omitempty"`
	Status      ProductStatus `json:"status,omitempty"`
	Category    string        `json:"category,omitempty"`
	Available   bool          `json:"available"`
	CreatedAt   *time.Time    `json:"created_at,omitempty"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
}

// View projects the product for the given audience. Admin sees everything,
// cart sees what checkout needs, public sees the browsable subset.
func (p *Product) View(audience Audience) ProductView {
	view := ProductView{
		ID:        p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Available: p.IsActive() && p.Stock > 0,
	}

	switch audience {
	case AudienceAdmin:
		view.Description = p.Description
		view.Code = p.Code
		view.Stock = p.Stock
		view.Status = p.Status
		view.Category = p.Category
		createdAt, updatedAt := p.CreatedAt, p.UpdatedAt
		view.CreatedAt = &createdAt
		view.UpdatedAt = &updatedAt
	case AudienceCart:
		view.Stock = p.Stock
		view.Status = p.Status
	default: // AudiencePublic
		view.Description = p.Description
		view.Category = p.Category
		view.Stock = p.Stock
	}

	return view
}
