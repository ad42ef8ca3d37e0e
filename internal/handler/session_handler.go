package handler

import (
	"net/http"

	"github.com/yourorg/papertrade/internal/service"
	"github.com/yourorg/papertrade/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler exposes the viewed-selection and visibility controls.
type SessionHandler struct {
	sessions *service.SessionService
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// GetSelection handles retrieving the current selection
// GET /api/v1/session/selection
func (h *SessionHandler) GetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Selection())
}

// UpdateSelection handles switching the viewed symbol and range
// PUT /api/v1/session/selection
func (h *SessionHandler) UpdateSelection(c *gin.Context) {
	var sel service.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sessions.Select(sel); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, h.sessions.Selection())
}

// UpdateVisibility handles page visibility changes reported by the UI
// PUT /api/v1/session/visibility
func (h *SessionHandler) UpdateVisibility(c *gin.Context) {
	var body struct {
		Visible *bool `json:"visible" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Visible flag is required")
		return
	}

	h.sessions.SetVisibility(*body.Visible)
	c.JSON(http.StatusOK, gin.H{"visible": *body.Visible})
}
