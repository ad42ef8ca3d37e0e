package handler

import (
	"errors"
	"net/http"

	"github.com/yourorg/papertrade/internal/model"
	"github.com/yourorg/papertrade/internal/service"
	"github.com/yourorg/papertrade/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderHandler exposes the draft/confirm/submit order flow.
type OrderHandler struct {
	orders *service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// UpdateDraft handles replacing the in-progress order draft
// PUT /api/v1/orders/draft
func (h *OrderHandler) UpdateDraft(c *gin.Context) {
	var draft model.OrderDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orders.UpdateDraft(draft); err != nil {
		h.respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": h.orders.State(), "draft": h.orders.Draft()})
}

// Submit handles validating the draft and producing a pending confirmation
// POST /api/v1/orders/submit
func (h *OrderHandler) Submit(c *gin.Context) {
	pending, err := h.orders.Submit()
	if err != nil {
		h.respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": h.orders.State(), "pending": pending})
}

// Confirm handles submitting the pending order to the backend
// POST /api/v1/orders/confirm
func (h *OrderHandler) Confirm(c *gin.Context) {
	outcome, err := h.orders.Confirm(c.Request.Context())
	if err != nil {
		h.respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// Cancel handles discarding the pending confirmation
// POST /api/v1/orders/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	if err := h.orders.Cancel(); err != nil {
		h.respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": h.orders.State()})
}

func (h *OrderHandler) respondFlowError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		utils.SendErrorResponse(c, http.StatusUnprocessableEntity, vErr.Message)
		return
	}
	h.logger.Error("Order flow error", zap.Error(err))
	utils.SendErrorResponse(c, http.StatusInternalServerError, "Order flow error")
}
