package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/pokedex/internal/api/middleware"
	"github.com/timmy/pokedex/internal/domain"
)

// AttemptLister reads persisted load attempts.
type AttemptLister interface {
	ListRecent(ctx context.Context, remote string, limit int) ([]domain.LoadAttempt, error)
}

// TelemetryHandler exposes persisted remote load attempts.
type TelemetryHandler struct {
	attempts AttemptLister
}

// NewTelemetryHandler creates a new telemetry handler.
func NewTelemetryHandler(attempts AttemptLister) *TelemetryHandler {
	return &TelemetryHandler{attempts: attempts}
}

// List handles GET /api/v1/telemetry?remote=&limit=.
func (h *TelemetryHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}

	attempts, err := h.attempts.ListRecent(c.Request.Context(), c.Query("remote"), limit)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Failed to list load attempts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list load attempts"})
		return
	}
	if attempts == nil {
		attempts = []domain.LoadAttempt{}
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}
