package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/source"
)

// idCatalog looks details up by decimal id.
type idCatalog struct {
	details map[string]*source.ItemDetail
}

func (c *idCatalog) ListPage(context.Context, int, int) (*source.ListingPage, error) {
	return &source.ListingPage{}, nil
}

func (c *idCatalog) Detail(_ context.Context, nameOrID string) (*source.ItemDetail, error) {
	d, ok := c.details[nameOrID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return d, nil
}

func TestDetailService_Get(t *testing.T) {
	sprite := "https://img.test/25.png"
	catalog := &idCatalog{details: map[string]*source.ItemDetail{
		"25": {
			ID:      25,
			Name:    "pikachu",
			Height:  4,
			Weight:  60,
			Sprites: source.Sprites{FrontDefault: &sprite},
			Types:   []source.TypeSlot{{Slot: 1, Type: source.NamedResource{Name: "electric"}}, {Slot: 2, Type: source.NamedResource{Name: "shadow"}}},
			Stats:   []source.StatSlot{{BaseStat: 35, Stat: source.NamedResource{Name: "hp"}}},
		},
	}}
	svc := NewDetailService(catalog)

	detail, err := svc.Get(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, "pikachu", detail.Name)
	assert.Equal(t, sprite, detail.Image)
	require.Len(t, detail.Types, 2)
	assert.Equal(t, domain.ColorForType("electric"), detail.Types[0].Color)
	assert.Equal(t, "#A8A878", detail.Types[1].Color)
	require.Len(t, detail.Stats, 1)
	assert.Equal(t, 35, detail.Stats[0].Value)

	_, err = svc.Get(context.Background(), 26)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}
