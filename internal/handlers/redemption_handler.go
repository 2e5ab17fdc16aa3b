package handlers

import (
	"net/http"
	"strconv"

	"livetokens/internal/auth"
	"livetokens/internal/models"
	"livetokens/internal/services"

	"github.com/gin-gonic/gin"
)

// RedemptionHandler handles token-to-currency payout endpoints
type RedemptionHandler struct {
	redemptionService *services.RedemptionService
}

// NewRedemptionHandler creates a new RedemptionHandler
func NewRedemptionHandler(redemptionService *services.RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{redemptionService: redemptionService}
}

// Redeem handles POST /api/redemptions
func (h *RedemptionHandler) Redeem(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	redemption, err := h.redemptionService.Redeem(c.Request.Context(), userID, req.Destination, req.Tokens)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"redemption":      redemption,
		"payout_batch_id": redemption.ProviderBatchID,
	})
}

// ListRedemptions handles GET /api/redemptions
func (h *RedemptionHandler) ListRedemptions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	redemptions, err := h.redemptionService.ListRedemptions(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"redemptions": redemptions})
}
