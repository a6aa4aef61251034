package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/pokedex/internal/domain"
)

// ListingEntry is one entry of an upstream listing page.
type ListingEntry struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// ListingPage is one page of the upstream listing endpoint.
// Next is nil (or empty) once no further pages exist.
type ListingPage struct {
	Count   int            `json:"count"`
	Next    *string        `json:"next"`
	Results []ListingEntry `json:"results"`
}

// HasNext reports whether the upstream signals a further page.
func (p *ListingPage) HasNext() bool {
	return p != nil && p.Next != nil && *p.Next != ""
}

// ItemDetail is the upstream detail payload of one catalog item.
type ItemDetail struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Height    int           `json:"height"`
	Weight    int           `json:"weight"`
	Sprites   Sprites       `json:"sprites"`
	Types     []TypeSlot    `json:"types"`
	Stats     []StatSlot    `json:"stats"`
	Abilities []AbilitySlot `json:"abilities"`
	Moves     []MoveSlot    `json:"moves"`
}

// Sprites holds the image assets of an item.
type Sprites struct {
	FrontDefault *string         `json:"front_default"`
	Other        *OtherSprites   `json:"other,omitempty"`
	Versions     *SpriteVersions `json:"versions,omitempty"`
}

// OtherSprites holds the higher resolution assets.
type OtherSprites struct {
	OfficialArtwork *SpriteSet `json:"official-artwork,omitempty"`
}

// SpriteVersions holds generation specific assets.
type SpriteVersions struct {
	GenerationV *struct {
		BlackWhite *struct {
			Animated *SpriteSet `json:"animated,omitempty"`
		} `json:"black-white,omitempty"`
	} `json:"generation-v,omitempty"`
}

// SpriteSet is a single front image.
type SpriteSet struct {
	FrontDefault *string `json:"front_default"`
}

// NamedResource is a {name,url} reference.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// TypeSlot is one ordered category descriptor.
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// StatSlot is one base stat.
type StatSlot struct {
	BaseStat int           `json:"base_stat"`
	Stat     NamedResource `json:"stat"`
}

// AbilitySlot is one ability.
type AbilitySlot struct {
	Ability NamedResource `json:"ability"`
}

// MoveSlot is one move.
type MoveSlot struct {
	Move NamedResource `json:"move"`
}

// Validate checks the fields every consumer relies on.
func (d *ItemDetail) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: empty detail", domain.ErrMalformedResponse)
	}
	if d.ID <= 0 {
		return fmt.Errorf("%w: detail %q has invalid id %d", domain.ErrMalformedResponse, d.Name, d.ID)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: detail %d has no name", domain.ErrMalformedResponse, d.ID)
	}
	return nil
}

// Catalog defines the upstream catalog API.
type Catalog interface {
	// ListPage fetches limit listing entries starting at offset.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - limit: page size.
	//   - offset: zero-based index of the first entry.
	// Returns:
	//   - *ListingPage: entries plus the next-page token.
	//   - error: non-nil on transport failure or malformed payload.
	ListPage(ctx context.Context, limit, offset int) (*ListingPage, error)

	// Detail fetches one item by name or decimal id.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - nameOrID: listing entry name or decimal id.
	// Returns:
	//   - *ItemDetail: validated detail payload.
	//   - error: domain.ErrItemNotFound if missing; other errors on failure.
	Detail(ctx context.Context, nameOrID string) (*ItemDetail, error)
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s: status %d", e.URL, e.StatusCode)
}

// Unwrap maps 404 to ErrItemNotFound and everything else to ErrUpstreamStatus.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == 404 {
		return domain.ErrItemNotFound
	}
	return domain.ErrUpstreamStatus
}

// IsNotFound reports whether err indicates a missing catalog item.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrItemNotFound)
}
