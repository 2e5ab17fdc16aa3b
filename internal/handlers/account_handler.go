package handlers

import (
	"net/http"

	"livetokens/internal/auth"
	"livetokens/internal/services"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles balance and provisioning endpoints
type AccountHandler struct {
	accountService *services.AccountService
	webhookSecret  string
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *services.AccountService, webhookSecret string) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		webhookSecret:  webhookSecret,
	}
}

// GetTokens handles GET /api/user/tokens
func (h *AccountHandler) GetTokens(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": account.Balance})
}

// CreditTokens handles POST /api/user/tokens, crediting purchased tokens
// after an external checkout completes
func (h *AccountHandler) CreditTokens(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		Tokens int64 `json:"tokens" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token amount"})
		return
	}

	account, err := h.accountService.CreditTokens(c.Request.Context(), userID, req.Tokens)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tokens":  account.Balance,
	})
}

// IdentityWebhook handles POST /webhooks/identity: the identity provider
// notifies us of new users and we provision their account and stream
func (h *AccountHandler) IdentityWebhook(c *gin.Context) {
	if h.webhookSecret == "" || c.GetHeader("X-Webhook-Secret") != h.webhookSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ExternalID string `json:"external_id" binding:"required"`
		Username   string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	account, err := h.accountService.EnsureAccount(c.Request.Context(), req.ExternalID, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}
