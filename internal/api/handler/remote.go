package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/pokedex/internal/api/middleware"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/service"
)

// RemoteHandler exposes federation remotes and tracked component loads.
type RemoteHandler struct {
	components *service.ComponentService
}

// NewRemoteHandler creates a new remote handler.
func NewRemoteHandler(components *service.ComponentService) *RemoteHandler {
	return &RemoteHandler{components: components}
}

type remoteView struct {
	domain.RemoteConfig
	EntryURL string `json:"entry_url"`
}

// List handles GET /api/v1/remotes.
func (h *RemoteHandler) List(c *gin.Context) {
	remotes := h.components.Remotes()
	views := make([]remoteView, 0, len(remotes))
	for _, r := range remotes {
		views = append(views, remoteView{RemoteConfig: r, EntryURL: r.EntryURL()})
	}
	c.JSON(http.StatusOK, gin.H{"remotes": views})
}

// LoadComponent handles GET /api/v1/remotes/:name/components/:component.
// With ?raw=1 the entry script itself is returned.
func (h *RemoteHandler) LoadComponent(c *gin.Context) {
	name := c.Param("name")
	component := c.Param("component")

	mod, err := h.components.Load(c.Request.Context(), name, component)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Remote not found: " + name})
			return
		}
		middleware.GetLogger(c).WithError(err).Error("Failed to load remote component")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load component: " + err.Error()})
		return
	}

	if c.Query("raw") == "1" {
		c.Data(http.StatusOK, mod.ContentType, mod.Source)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"module": mod,
		"size":   len(mod.Source),
	})
}
