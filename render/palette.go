// =======================
// render/palette.go
// =======================

package render

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is a gradient through a set of color stops, blended in HCL space
// so brightness stays even along the way.
type Palette struct {
	stops []colorful.Color
}

// DefaultPalette runs from deep purple through orange to green.
var DefaultPalette = NewPalette(
	colorful.Color{R: 120 / 255.0, G: 80 / 255.0, B: 1},
	colorful.Color{R: 1, G: 150 / 255.0, B: 50 / 255.0},
	colorful.Color{R: 50 / 255.0, G: 1, B: 120 / 255.0},
)

// Background is the canvas color of every rendered image.
var Background = color.RGBA{R: 16, G: 16, B: 22, A: 255}

// NewPalette builds a palette from at least one stop.
func NewPalette(stops ...colorful.Color) *Palette {
	if len(stops) == 0 {
		stops = []colorful.Color{{R: 1, G: 1, B: 1}}
	}
	return &Palette{stops: stops}
}

// At returns the color at position t in [0, 1]. Values outside are clamped.
func (p *Palette) At(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	if len(p.stops) == 1 {
		return toRGBA(p.stops[0])
	}

	segments := float64(len(p.stops) - 1)
	pos := t * segments
	i := int(pos)
	if i >= len(p.stops)-1 {
		return toRGBA(p.stops[len(p.stops)-1])
	}
	frac := pos - float64(i)
	if frac == 0 {
		return toRGBA(p.stops[i])
	}
	return toRGBA(p.stops[i].BlendHcl(p.stops[i+1], frac).Clamped())
}

// ForBucket colors bucket b of a table with the given length.
func (p *Palette) ForBucket(b, tableLength uint64) color.RGBA {
	if tableLength <= 1 {
		return p.At(0)
	}
	return p.At(float64(b) / float64(tableLength-1))
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
