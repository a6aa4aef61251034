package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/pokedex/internal/api/middleware"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/service"
)

// Preloader warms preview images in the background.
type Preloader interface {
	PreloadAsync(url string)
}

// PokemonHandler serves the grid list cache and the detail view.
type PokemonHandler struct {
	cache     *service.ListCache
	details   *service.DetailService
	preloader Preloader
}

// NewPokemonHandler creates a new pokemon handler.
// Parameters:
//   - cache: process-wide list cache.
//   - details: detail view service.
//   - preloader: optional preview preloader; nil disables preloading.
//
// Returns:
//   - *PokemonHandler: initialized handler.
func NewPokemonHandler(cache *service.ListCache, details *service.DetailService, preloader Preloader) *PokemonHandler {
	return &PokemonHandler{cache: cache, details: details, preloader: preloader}
}

// ListResponse is the grid view state.
type ListResponse struct {
	Items      []domain.ListItem `json:"items"`
	Total      int               `json:"total"`
	HasMore    bool              `json:"has_more"`
	PageIndex  int               `json:"page_index"`
	PageSize   int               `json:"page_size"`
	IsLoading  bool              `json:"is_loading"`
	Query      string            `json:"query"`
	SelectedID *int              `json:"selected_id"`
}

func listResponse(snap service.ListSnapshot) ListResponse {
	return ListResponse{
		Items:      snap.Filtered(),
		Total:      len(snap.Items),
		HasMore:    snap.Cursor.HasMore,
		PageIndex:  snap.Cursor.PageIndex,
		PageSize:   snap.Cursor.PageSize,
		IsLoading:  snap.IsLoading,
		Query:      snap.SearchQuery,
		SelectedID: snap.SelectedID,
	}
}

// List handles GET /api/v1/pokemon.
// A present q parameter replaces the search query, even when empty.
func (h *PokemonHandler) List(c *gin.Context) {
	if q, ok := c.GetQuery("q"); ok {
		h.cache.SetSearchQuery(q)
	}
	c.JSON(http.StatusOK, listResponse(h.cache.Snapshot()))
}

// Next handles POST /api/v1/pokemon/next.
func (h *PokemonHandler) Next(c *gin.Context) {
	if err := h.cache.LoadNextPage(c.Request.Context()); err != nil {
		middleware.GetLogger(c).WithError(err).Error("Failed to load next page")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to load next page: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, listResponse(h.cache.Snapshot()))
}

// Reset handles POST /api/v1/pokemon/reset.
func (h *PokemonHandler) Reset(c *gin.Context) {
	h.cache.Reset()
	c.JSON(http.StatusOK, listResponse(h.cache.Snapshot()))
}

// Get handles GET /api/v1/pokemon/:id.
func (h *PokemonHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.details.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pokemon not found"})
			return
		}
		middleware.GetLogger(c).WithError(err).Error("Failed to get detail")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to get pokemon: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Open handles POST /api/v1/pokemon/:id/open.
// Only items already held by the cache can be selected.
func (h *PokemonHandler) Open(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, found := h.cache.Lookup(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pokemon is not in the list"})
		return
	}

	h.cache.OpenDetail(id)
	if h.preloader != nil {
		h.preloader.PreloadAsync(item.PreviewImage)
	}
	c.JSON(http.StatusOK, gin.H{
		"selected_id": id,
		"item":        item,
	})
}

// Close handles DELETE /api/v1/selection.
func (h *PokemonHandler) Close(c *gin.Context) {
	h.cache.CloseDetail()
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
