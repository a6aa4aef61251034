package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/pokedex/internal/service"
)

// HealthHandler reports liveness plus a summary of cache and remote state.
type HealthHandler struct {
	started    time.Time
	cache      *service.ListCache
	components *service.ComponentService
}

func NewHealthHandler(cache *service.ListCache, components *service.ComponentService) *HealthHandler {
	return &HealthHandler{started: time.Now(), cache: cache, components: components}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	}
	if h.cache != nil {
		snap := h.cache.Snapshot()
		body["cached_items"] = len(snap.Items)
		body["loading"] = snap.IsLoading
	}
	if h.components != nil {
		body["remotes"] = len(h.components.Remotes())
	}
	c.JSON(http.StatusOK, body)
}
