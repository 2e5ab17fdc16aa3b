package handlers

import (
	"errors"
	"net/http"

	"livetokens/internal/logger"
	"livetokens/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP status codes. Anything outside
// the domain set is an internal error and is not leaked to the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrSelfTip),
		errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrBelowMinimum):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrStreamNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrGoalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "busy, try again"})
	case errors.Is(err, services.ErrPayoutProvider):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
