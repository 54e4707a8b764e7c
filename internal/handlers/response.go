package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/services"
)

// Every response uses the same envelope: {"status":"success","payload":...}
// on success, {"status":"error","message":...} on failure.

func respond(c *gin.Context, code int, payload interface{}) {
	c.JSON(code, gin.H{"status": "success", "payload": payload})
}

func respondMessage(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case models.IsNotFound(err):
		respondMessage(c, http.StatusNotFound, err.Error())
	case models.IsValidation(err):
		respondMessage(c, http.StatusBadRequest, err.Error())
	case models.IsInvalidTransition(err):
		respondMessage(c, http.StatusConflict, err.Error())
	case models.IsInsufficientStock(err):
		respondMessage(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrDuplicateCode),
		errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, services.ErrCheckoutInProgress):
		respondMessage(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInsufficientItems):
		respondMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		respondMessage(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		respondMessage(c, http.StatusUnauthorized, err.Error())
	default:
		respondMessage(c, http.StatusInternalServerError, "internal server error")
	}
}
