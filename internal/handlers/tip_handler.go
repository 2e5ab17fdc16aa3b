package handlers

import (
	"net/http"
	"strconv"
	"time"

	"livetokens/internal/auth"
	"livetokens/internal/models"
	"livetokens/internal/services"

	"github.com/gin-gonic/gin"
)

// TipHandler handles tip and king-of-room endpoints
type TipHandler struct {
	tipService *services.TipService
}

// NewTipHandler creates a new TipHandler
func NewTipHandler(tipService *services.TipService) *TipHandler {
	return &TipHandler{tipService: tipService}
}

// SendTip handles POST /api/tips
func (h *TipHandler) SendTip(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.SendTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.tipService.SendTip(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"new_balance":       result.SenderBalance,
		"recipient_balance": result.RecipientBalance,
	})
}

// GetKingOfRoom handles GET /api/king-of-room?username=
func (h *TipHandler) GetKingOfRoom(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	king, err := h.tipService.GetKingOfRoom(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}

	if king == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"king_user_id": king.UserID,
		"total_tokens": king.TotalTokens,
		"since":        king.CreatedAt,
	})
}

// ListTips handles GET /api/tips?stream_id=&since_hours=&limit=
// Without stream_id it returns the caller's own sent tips.
func (h *TipHandler) ListTips(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sinceHours, _ := strconv.Atoi(c.DefaultQuery("since_hours", "24"))
	if sinceHours <= 0 {
		sinceHours = 24
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	since := time.Now().Add(-time.Duration(sinceHours) * time.Hour)

	var (
		tips []models.Tip
		err  error
	)
	if streamIDStr := c.Query("stream_id"); streamIDStr != "" {
		streamID, parseErr := strconv.ParseUint(streamIDStr, 10, 64)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stream_id"})
			return
		}
		tips, err = h.tipService.ListStreamTips(c.Request.Context(), uint(streamID), since, limit)
	} else {
		tips, err = h.tipService.ListSentTips(c.Request.Context(), userID, since, limit)
	}

	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tips": tips})
}
