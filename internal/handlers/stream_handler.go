package handlers

import (
	"net/http"

	"livetokens/internal/auth"
	"livetokens/internal/models"
	"livetokens/internal/services"

	"github.com/gin-gonic/gin"
)

// StreamHandler handles stream settings endpoints
type StreamHandler struct {
	streamService *services.StreamService
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(streamService *services.StreamService) *StreamHandler {
	return &StreamHandler{streamService: streamService}
}

// GetOwnStream handles GET /api/stream
func (h *StreamHandler) GetOwnStream(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	stream, err := h.streamService.GetOwnStream(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream": stream})
}

// GetStreamByUsername handles GET /api/streams/:username
func (h *StreamHandler) GetStreamByUsername(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	stream, err := h.streamService.GetStreamByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream": stream})
}

// UpdateStream handles PATCH /api/stream
func (h *StreamHandler) UpdateStream(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.UpdateStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	stream, err := h.streamService.UpdateSettings(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream": stream})
}
