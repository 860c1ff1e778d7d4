// =======================
// tui/grid.go
// =======================

package tui

import (
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"

	"hashviz/render"
)

// halfBlock draws the top half of a cell in the foreground color, so one
// terminal cell shows two vertically stacked pixels.
const halfBlock = '▀'

type cell struct {
	top, bottom color.RGBA
}

// grid is an image reduced to terminal cells.
type grid struct {
	cols, rows int
	cells      []cell
}

// downsample reduces img to cols×rows cells. Each half cell takes the first
// non-background pixel of the block it covers so sparse marks survive the
// reduction.
func downsample(img *image.RGBA, cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	if img == nil || cols <= 0 || rows <= 0 {
		return g
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	halves := rows * 2

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x0, x1 := span(c, cols, w)
			top0, top1 := span(2*r, halves, h)
			bot0, bot1 := span(2*r+1, halves, h)

			g.cells[r*cols+c] = cell{
				top:    sample(img, b.Min.X+x0, b.Min.X+x1, b.Min.Y+top0, b.Min.Y+top1),
				bottom: sample(img, b.Min.X+x0, b.Min.X+x1, b.Min.Y+bot0, b.Min.Y+bot1),
			}
		}
	}
	return g
}

// span returns the pixel range covered by slot i of n over size pixels. The
// range is never empty as long as size is positive.
func span(i, n, size int) (int, int) {
	start := i * size / n
	end := (i + 1) * size / n
	if end <= start {
		end = start + 1
	}
	return min(start, size-1), min(end, size)
}

func sample(img *image.RGBA, x0, x1, y0, y1 int) color.RGBA {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if c := img.RGBAAt(x, y); c != render.Background {
				return c
			}
		}
	}
	return render.Background
}

func (g *grid) draw(s tcell.Screen, originX, originY int) {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			cl := g.cells[r*g.cols+c]
			style := tcell.StyleDefault.
				Foreground(toTcell(cl.top)).
				Background(toTcell(cl.bottom))
			s.SetContent(originX+c, originY+r, halfBlock, nil, style)
		}
	}
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
