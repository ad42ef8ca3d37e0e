package handler

import (
	"net/http"

	"github.com/yourorg/papertrade/internal/store"
	"github.com/yourorg/papertrade/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountHandler serves the cached account balance.
type AccountHandler struct {
	balances *store.BalanceStore
	logger   *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(balances *store.BalanceStore, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		balances: balances,
		logger:   logger,
	}
}

// GetBalance handles retrieving the cached balance
// GET /api/v1/account/balance
func (h *AccountHandler) GetBalance(c *gin.Context) {
	balance, ok := h.balances.Get()
	if !ok {
		utils.SendErrorResponse(c, http.StatusNotFound, "No balance cached yet")
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// RefreshBalance handles forcing a full balance refetch from the backend
// POST /api/v1/account/balance/refresh
func (h *AccountHandler) RefreshBalance(c *gin.Context) {
	if err := h.balances.Refresh(c.Request.Context()); err != nil {
		h.logger.Error("Failed to refresh balance", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusBadGateway, "Failed to refresh balance")
		return
	}

	balance, _ := h.balances.Get()
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
