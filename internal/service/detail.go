package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/source"
)

// DetailService builds the detail view model of a single item.
type DetailService struct {
	catalog source.Catalog
}

// NewDetailService creates a detail service over catalog.
func NewDetailService(catalog source.Catalog) *DetailService {
	return &DetailService{catalog: catalog}
}

// Get fetches item id from the upstream and maps it for display.
func (s *DetailService) Get(ctx context.Context, id int) (*domain.PokemonDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id %d", domain.ErrItemNotFound, id)
	}
	detail, err := s.catalog.Detail(ctx, strconv.Itoa(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get detail %d: %w", id, err)
	}
	view := source.ToPokemonDetail(detail)
	return &view, nil
}
