package render

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Style holds the visual parameters of a rendered map.
type Style struct {
	CenterLat     float64 `yaml:"center_lat"`
	CenterLng     float64 `yaml:"center_lng"`
	Zoom          int     `yaml:"zoom"`
	PolygonWeight int     `yaml:"polygon_weight"`
	FillOpacity   float64 `yaml:"fill_opacity"`
	MarkerRadius  int     `yaml:"marker_radius"`
	MarkerOpacity float64 `yaml:"marker_opacity"`
	NoiseColor    string  `yaml:"noise_color"`
	TileURL       string  `yaml:"tile_url"`
	Attribution   string  `yaml:"attribution"`
}

// DefaultStyle returns the stock map styling.
func DefaultStyle() Style {
	return Style{
		CenterLat:     45.7615,
		CenterLng:     4.83,
		Zoom:          16,
		PolygonWeight: 3,
		FillOpacity:   0.2,
		MarkerRadius:  6,
		MarkerOpacity: 0.55,
		NoiseColor:    "gray",
		TileURL:       "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution:   "&copy; OpenStreetMap contributors",
	}
}

// LoadStyle reads a YAML style file over the defaults, so a partial file
// only overrides the keys it names.
func LoadStyle(path string) (Style, error) {
	style := DefaultStyle()

	data, err := os.ReadFile(path)
	if err != nil {
		return style, eris.Wrap(err, "render: read style file")
	}
	if err := yaml.Unmarshal(data, &style); err != nil {
		return style, eris.Wrap(err, "render: parse style file")
	}
	return style, nil
}
