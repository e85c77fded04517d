package handlers

import (
	"errors"
	"net/http"

	"github.com/Comfie/property-crm-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

// respondError maps service sentinel errors onto HTTP status codes. Invalid
// input is 400, missing records 404, illegal lifecycle operations 422.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrRentalTypeMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
