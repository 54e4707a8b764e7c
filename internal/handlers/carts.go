package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ecommerce-platform/internal/middleware"
	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/services"
)

// CartHandler handles cart endpoints, including checkout
type CartHandler struct {
	carts    *services.CartService
	checkout *services.CheckoutEngine
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *services.CartService, checkout *services.CheckoutEngine) *CartHandler {
	return &CartHandler{carts: carts, checkout: checkout}
}

// Create godoc
// @Summary Create an empty cart
// @Tags carts
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Router /api/carts [post]
func (h *CartHandler) Create(c *gin.Context) {
	cart, err := h.carts.Create()
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, cart)
}

// Get godoc
// @Summary Get a cart
// @Tags carts
// @Produce json
// @Param cid path int true "Cart ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/carts/{cid} [get]
func (h *CartHandler) Get(c *gin.Context) {
	cartID, ok := pathID(c, "cid")
	if !ok {
		return
	}

	cart, err := h.carts.Get(cartID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, cart)
}

// AddItem godoc
// @Summary Add a product to a cart
// @Tags carts
// @Accept json
// @Produce json
// @Param cid path int true "Cart ID"
// @Param pid path int true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/carts/{cid}/products/{pid} [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	cartID, ok := pathID(c, "cid")
	if !ok {
		return
	}
	productID, ok := pathID(c, "pid")
	if !ok {
		return
	}

	// Body is optional; the default is a single unit
	req := struct {
		Quantity int `json:"quantity"`
	}{Quantity: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	cart, err := h.carts.AddItem(cartID, productID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, cart)
}

// SetItemQuantity godoc
// @Summary Replace the quantity of a cart line
// @Tags carts
// @Accept json
// @Produce json
// @Param cid path int true "Cart ID"
// @Param pid path int true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/carts/{cid}/products/{pid} [put]
func (h *CartHandler) SetItemQuantity(c *gin.Context) {
	cartID, ok := pathID(c, "cid")
	if !ok {
		return
	}
	productID, ok := pathID(c, "pid")
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

	cart, err := h.carts.SetItemQuantity(cartID, productID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, cart)
}

// RemoveItem godoc
// @Summary Remove a product from a cart
// @Tags carts
// @Param cid path int true "Cart ID"
// @Param pid path int true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/carts/{cid}/products/{pid} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cartID, ok := pathID(c, "cid")
	if !ok {
		return
	}
	productID, ok := pathID(c, "pid")
	if !ok {
		return
	}

	cart, err := h.carts.RemoveItem(cartID, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, cart)
}

// Clear godoc
// @Summary Remove every line from a cart
// @Tags carts
// @Param cid path int true "Cart ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/carts/{cid} [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	cartID, ok := pathID(c, "cid")
	if !ok {
		return
	}

	cart, err := h.carts.Clear(cartID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, cart)
}

// Validate godoc
// @Summary Preview which cart lines would survive checkout
// @Tags carts
// @Produce json
// @Param cid path int true "Cart ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/carts/{cid}/validate [get]
func (h *CartHandler) Validate(c *gin.Context) {
	cartID, ok := pathID(c, "cid")
	if !ok {
		return
	}

	validation, err := h.carts.Validate(cartID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, validation)
}

// Purchase godoc
// @Summary Check out a cart
// @Description Claims stock line by line and produces a ticket. Lines that
// @Description cannot be fulfilled stay in the cart and are reported back.
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param cid path int true "Cart ID"
// @Param Idempotency-Key header string false "Attempt id for safe retries"
// @Success 200 {object} map[string]interface{} "Outcome with ticket and rejected lines"
// @Failure 400 {object} map[string]interface{} "No purchasable items"
// @Failure 404 {object} map[string]interface{} "Cart not found"
// @Router /api/carts/{cid}/purchase [post]
func (h *CartHandler) Purchase(c *gin.Context) {
	cartID, ok := pathID(c, "cid")
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		respondMessage(c, http.StatusUnauthorized, "authentication required")
		return
	}

	attemptID := c.GetHeader("Idempotency-Key")
	if attemptID == "" {
		attemptID = uuid.NewString()
	}

	result, err := h.checkout.Purchase(c.Request.Context(), services.PurchaseRequest{
		CartID:    cartID,
		AttemptID: attemptID,
		Purchaser: services.Purchaser{Email: user.Email, Name: user.Name},
	})
	if err != nil {
		// Total rejection still reports why each line failed
		if errors.Is(err, models.ErrInsufficientItems) && result != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":          "error",
				"message":         err.Error(),
				"failed_products": result.Rejected,
			})
			return
		}
		respondError(c, err)
		return
	}

	audience := models.AudiencePublic
	if user.IsAdmin() {
		audience = models.AudienceAdmin
	}

	payload := gin.H{
		"outcome":            result.Outcome,
		"ticket":             result.Ticket.View(audience),
		"purchased_products": result.Ticket.Items,
	}
	if result.Outcome == services.OutcomePartial {
		payload["failed_products"] = result.Rejected
		payload["message"] = "some items could not be fulfilled and remain in the cart"
	}

	respond(c, http.StatusOK, payload)
}
