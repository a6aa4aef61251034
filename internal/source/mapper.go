package source

import "github.com/timmy/pokedex/internal/domain"

// ToListItem maps a detail payload to a grid row.
// The sprite is the thumbnail; official artwork is the preview, falling back to the sprite.
func ToListItem(d *ItemDetail) domain.ListItem {
	thumb := deref(d.Sprites.FrontDefault)
	preview := d.artwork()
	if preview == "" {
		preview = thumb
	}

	categories := make([]string, 0, len(d.Types))
	for _, t := range d.Types {
		categories = append(categories, t.Type.Name)
	}

	return domain.ListItem{
		ID:             d.ID,
		Name:           d.Name,
		ThumbnailImage: thumb,
		PreviewImage:   preview,
		Categories:     categories,
	}
}

// ToPokemonDetail maps a detail payload to the detail view model.
func ToPokemonDetail(d *ItemDetail) domain.PokemonDetail {
	image := d.artwork()
	if image == "" {
		image = deref(d.Sprites.FrontDefault)
	}

	types := make([]domain.TypeInfo, 0, len(d.Types))
	for _, t := range d.Types {
		types = append(types, domain.TypeInfo{Name: t.Type.Name, Color: domain.ColorForType(t.Type.Name)})
	}

	stats := make([]domain.Stat, 0, len(d.Stats))
	for _, s := range d.Stats {
		stats = append(stats, domain.Stat{Name: s.Stat.Name, Value: s.BaseStat})
	}

	abilities := make([]string, 0, len(d.Abilities))
	for _, a := range d.Abilities {
		abilities = append(abilities, a.Ability.Name)
	}

	moves := make([]string, 0, len(d.Moves))
	for _, m := range d.Moves {
		moves = append(moves, m.Move.Name)
	}

	return domain.PokemonDetail{
		ID:            d.ID,
		Name:          d.Name,
		Image:         image,
		ImageAnimated: d.animated(),
		Types:         types,
		Stats:         stats,
		Height:        d.Height,
		Weight:        d.Weight,
		Abilities:     abilities,
		Moves:         moves,
	}
}

func (d *ItemDetail) artwork() string {
	if d.Sprites.Other == nil || d.Sprites.Other.OfficialArtwork == nil {
		return ""
	}
	return deref(d.Sprites.Other.OfficialArtwork.FrontDefault)
}

func (d *ItemDetail) animated() string {
	v := d.Sprites.Versions
	if v == nil || v.GenerationV == nil || v.GenerationV.BlackWhite == nil || v.GenerationV.BlackWhite.Animated == nil {
		return ""
	}
	return deref(v.GenerationV.BlackWhite.Animated.FrontDefault)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
