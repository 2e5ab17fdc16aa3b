package handlers

import (
	"net/http"
	"strconv"

	"livetokens/internal/auth"
	"livetokens/internal/models"
	"livetokens/internal/services"

	"github.com/gin-gonic/gin"
)

// GoalHandler handles token goal endpoints
type GoalHandler struct {
	goalService *services.GoalService
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoal handles POST /api/goals
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// UpdateGoal handles PATCH /api/goals/:id
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	goalID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid goal ID"})
		return
	}

	var req models.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), userID, uint(goalID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// ListGoals handles GET /api/goals/:username, returning the creator's
// active goals for viewers
func (h *GoalHandler) ListGoals(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	goals, err := h.goalService.ListByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}
