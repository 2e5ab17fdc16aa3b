package handlers

import (
	"net/http"
	"strconv"

	"livetokens/internal/auth"
	"livetokens/internal/models"
	"livetokens/internal/services"

	"github.com/gin-gonic/gin"
)

// TipMenuHandler handles tip menu endpoints
type TipMenuHandler struct {
	tipMenuService *services.TipMenuService
}

// NewTipMenuHandler creates a new TipMenuHandler
func NewTipMenuHandler(tipMenuService *services.TipMenuService) *TipMenuHandler {
	return &TipMenuHandler{tipMenuService: tipMenuService}
}

// CreateItem handles POST /api/tip-menu
func (h *TipMenuHandler) CreateItem(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.CreateTipMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := h.tipMenuService.CreateItem(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// UpdateItem handles PATCH /api/tip-menu/:id
func (h *TipMenuHandler) UpdateItem(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req models.UpdateTipMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := h.tipMenuService.UpdateItem(c.Request.Context(), userID, uint(itemID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DeleteItem handles DELETE /api/tip-menu/:id
func (h *TipMenuHandler) DeleteItem(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	if err := h.tipMenuService.DeleteItem(c.Request.Context(), userID, uint(itemID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListItems handles GET /api/tip-menu/:username, returning the creator's
// active tip menu for viewers
func (h *TipMenuHandler) ListItems(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	items, err := h.tipMenuService.ListByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
