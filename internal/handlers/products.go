package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/internal/middleware"
	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/services"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	products *services.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondMessage(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// audienceFor picks the projection based on who is asking
func audienceFor(c *gin.Context) models.Audience {
	if user := middleware.CurrentUser(c); user != nil && user.IsAdmin() {
		return models.AudienceAdmin
	}
	return models.AudiencePublic
}

// List godoc
// @Summary List products
// @Tags products
// @Produce json
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Param query query string false "Text search"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Router /api/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	filters := repositories.ProductSearchFilters{
		Category: c.Query("category"),
		Status:   models.ProductStatus(c.Query("status")),
		Query:    c.Query("query"),
		SortBy:   c.Query("sort"),
		SortDesc: c.Query("order") == "desc",
	}
	filters.MinPrice, _ = strconv.Atoi(c.Query("min_price"))
	filters.MaxPrice, _ = strconv.Atoi(c.Query("max_price"))
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filters.Offset, _ = strconv.Atoi(c.Query("offset"))

	products, total, err := h.products.Search(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	audience := audienceFor(c)
	views := make([]models.ProductView, len(products))
	for i, product := range products {
		views[i] = product.View(audience)
	}

	respond(c, http.StatusOK, gin.H{
		"products": views,
		"total":    total,
		"limit":    filters.Limit,
		"offset":   filters.Offset,
	})
}

// Get godoc
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, product.View(audienceFor(c)))
}

// Create godoc
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body models.ProductCreateRequest true "Product data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req models.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, product.View(models.AudienceAdmin))
}

// Update godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param product body models.ProductUpdateRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, product.View(models.AudienceAdmin))
}

// Delete godoc
// @Summary Delete a product
// @Tags products
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"deleted": id})
}

// Restock godoc
// @Summary Add stock to a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Router /api/products/{id}/restock [post]
func (h *ProductHandler) Restock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.Restock(id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, product.View(models.AudienceAdmin))
}

// Categories godoc
// @Summary List product categories
// @Tags products
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/products/categories [get]
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.products.Categories()
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"categories": categories})
}
