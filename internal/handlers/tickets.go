package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/internal/middleware"
	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
	"ecommerce-platform/internal/services"
)

// TicketHandler handles ticket endpoints
type TicketHandler struct {
	tickets *services.TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

func ticketFiltersFromQuery(c *gin.Context) repositories.TicketSearchFilters {
	filters := repositories.TicketSearchFilters{
		Purchaser: c.Query("purchaser"),
		Status:    models.TicketStatus(c.Query("status")),
	}
	filters.MinAmount, _ = strconv.Atoi(c.Query("min_amount"))
	filters.MaxAmount, _ = strconv.Atoi(c.Query("max_amount"))
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filters.Offset, _ = strconv.Atoi(c.Query("offset"))

	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = t
		}
	}
	return filters
}

// List godoc
// @Summary List tickets
// @Description Administrators see every ticket; other accounts see their own.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param date_from query string false "RFC 3339 lower bound"
// @Param date_to query string false "RFC 3339 upper bound"
// @Param min_amount query int false "Minimum amount in cents"
// @Param max_amount query int false "Maximum amount in cents"
// @Success 200 {object} map[string]interface{}
// @Router /api/tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	filters := ticketFiltersFromQuery(c)

	tickets, total, err := h.tickets.Search(user, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	audience := models.AudiencePublic
	if user.IsAdmin() {
		audience = models.AudienceAdmin
	}
	views := make([]models.TicketView, len(tickets))
	for i, ticket := range tickets {
		views[i] = ticket.View(audience)
	}

	respond(c, http.StatusOK, gin.H{
		"tickets": views,
		"total":   total,
		"limit":   filters.Limit,
		"offset":  filters.Offset,
	})
}

// Get godoc
// @Summary Get a ticket by id
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/tickets/{id} [get]
func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	ticket, err := h.tickets.Get(user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	audience := models.AudiencePublic
	if user.IsAdmin() {
		audience = models.AudienceAdmin
	}
	respond(c, http.StatusOK, ticket.View(audience))
}

// GetByCode godoc
// @Summary Get a ticket by its receipt code
// @Tags tickets
// @Produce json
// @Param code path string true "Ticket code"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/tickets/code/{code} [get]
func (h *TicketHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		respondMessage(c, http.StatusBadRequest, "invalid code")
		return
	}

	ticket, err := h.tickets.GetByCode(code)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, ticket.View(models.AudiencePublic))
}

// Summary godoc
// @Summary Aggregate the requester's own tickets
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/tickets/my-summary [get]
func (h *TicketHandler) Summary(c *gin.Context) {
	stats, err := h.tickets.Summary(middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, stats)
}

// Stats godoc
// @Summary Aggregate tickets matching the filters
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/tickets/stats [get]
func (h *TicketHandler) Stats(c *gin.Context) {
	user := middleware.CurrentUser(c)
	stats, err := h.tickets.Stats(user, ticketFiltersFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, stats)
}

// UpdateStatus godoc
// @Summary Move a ticket through its lifecycle
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "Illegal transition"
// @Router /api/tickets/{id}/status [patch]
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.TicketStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user := middleware.CurrentUser(c)
	ticket, err := h.tickets.UpdateStatus(user, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, ticket.View(models.AudienceAdmin))
}

// Delete godoc
// @Summary Delete a ticket
// @Tags tickets
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/tickets/{id} [delete]
func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.tickets.Delete(middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"deleted": id})
}
