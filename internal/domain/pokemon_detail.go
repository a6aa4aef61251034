package domain

// PokemonDetail is the content of the detail view for one catalog item.
type PokemonDetail struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Image         string     `json:"image"`
	ImageAnimated string     `json:"image_animated,omitempty"`
	Types         []TypeInfo `json:"types"`
	Stats         []Stat     `json:"stats"`
	Height        int        `json:"height"`
	Weight        int        `json:"weight"`
	Abilities     []string   `json:"abilities"`
	Moves         []string   `json:"moves"`
}

// TypeInfo is a category name with its display color.
type TypeInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Stat is a named base stat.
type Stat struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// defaultTypeColor is the color of the "normal" type.
const defaultTypeColor = "#A8A878"

// TypeColors maps a type name to its display color.
var TypeColors = map[string]string{
	"fire":     "#F08030",
	"water":    "#6890F0",
	"grass":    "#78C850",
	"electric": "#F8D030",
	"psychic":  "#F85888",
	"ice":      "#98D8D8",
	"dragon":   "#7038F8",
	"dark":     "#705848",
	"fairy":    "#EE99AC",
	"fighting": "#C03028",
	"flying":   "#A890F0",
	"ghost":    "#705898",
	"ground":   "#E0C068",
	"bug":      "#A8B820",
	"rock":     "#B8A038",
	"steel":    "#B8B8D0",
	"poison":   "#A040A0",
	"normal":   defaultTypeColor,
}

// ColorForType returns the display color for a type, defaulting to the normal color.
func ColorForType(name string) string {
	if c, ok := TypeColors[name]; ok {
		return c
	}
	return defaultTypeColor
}
