// Package render builds interactive map artifacts from clustered points:
// a Leaflet HTML page plus optional GeoJSON and shapefile exports.
package render

import "fmt"

// paired12 is the ColorBrewer Paired qualitative palette.
var paired12 = []rgb{
	{0xa6, 0xce, 0xe3},
	{0x1f, 0x78, 0xb4},
	{0xb2, 0xdf, 0x8a},
	{0x33, 0xa0, 0x2c},
	{0xfb, 0x9a, 0x99},
	{0xe3, 0x1a, 0x1c},
	{0xfd, 0xbf, 0x6f},
	{0xff, 0x7f, 0x00},
	{0xca, 0xb2, 0xd6},
	{0x6a, 0x3d, 0x9a},
	{0xff, 0xff, 0x99},
	{0xb1, 0x59, 0x28},
}

type rgb struct {
	r, g, b uint8
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// Colormap linearly interpolates a fixed palette across a value range.
type Colormap struct {
	colors   []rgb
	min, max float64
}

// Paired12 returns the Paired palette scaled over [min, max], matching a
// linear colormap with evenly spaced anchors.
func Paired12(min, max float64) *Colormap {
	return &Colormap{colors: paired12, min: min, max: max}
}

// Color maps a value to a hex color. Values outside the range are
// clamped; a degenerate range always yields the first anchor.
func (c *Colormap) Color(v float64) string {
	if c.max <= c.min {
		return c.colors[0].hex()
	}
	t := (v - c.min) / (c.max - c.min)
	if t <= 0 {
		return c.colors[0].hex()
	}
	if t >= 1 {
		return c.colors[len(c.colors)-1].hex()
	}

	segments := float64(len(c.colors) - 1)
	pos := t * segments
	i := int(pos)
	frac := pos - float64(i)

	lo, hi := c.colors[i], c.colors[i+1]
	return rgb{
		r: lerp(lo.r, hi.r, frac),
		g: lerp(lo.g, hi.g, frac),
		b: lerp(lo.b, hi.b, frac),
	}.hex()
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
