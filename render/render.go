// =======================
// render/render.go
// =======================

// Package render turns accumulated hash results into images.
package render

import (
	"cmp"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"slices"

	"hashviz/hashmod"
)

// Options controls the size and look of rendered images.
type Options struct {
	// ImageWidth and ImageHeight are the canvas size in units.
	ImageWidth  int
	ImageHeight int

	// Resolution is the number of pixels per unit.
	Resolution int

	// PointSize is the side of a plotted mark, in units.
	PointSize float64

	// BucketHeight is the height of the bucket image as a percentage of
	// ImageHeight.
	BucketHeight float64

	// Palette colors marks and bars by bucket. Nil uses DefaultPalette.
	Palette *Palette
}

func (o Options) canvas() (int, int) {
	res := max(o.Resolution, 1)
	return max(o.ImageWidth*res, 1), max(o.ImageHeight*res, 1)
}

func (o Options) palette() *Palette {
	if o.Palette == nil {
		return DefaultPalette
	}
	return o.Palette
}

// Render produces the hash image and the bucket histogram image for
// results over a table of the given length. It does not modify results.
func Render(results []hashmod.Result, tableLength uint64, opts Options) (*image.RGBA, *image.RGBA) {
	return HashImage(results, tableLength, opts), BucketImage(Counts(results, tableLength), opts)
}

// Counts tallies results per bucket. Results outside the table are ignored.
func Counts(results []hashmod.Result, tableLength uint64) []uint64 {
	counts := make([]uint64, tableLength)
	for _, r := range results {
		if r.Bucket < tableLength {
			counts[r.Bucket]++
		}
	}
	return counts
}

// HashImage plots one mark per result at the position given by its hash.
// Marks are drawn in hash order so the output does not depend on the order
// results were collected in.
func HashImage(results []hashmod.Result, tableLength uint64, opts Options) *image.RGBA {
	w, h := opts.canvas()
	img := newCanvas(w, h)
	pal := opts.palette()

	side := int(math.Round(opts.PointSize * float64(max(opts.Resolution, 1))))
	side = max(side, 1)

	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(a, b hashmod.Result) int {
		if c := cmp.Compare(a.Hash, b.Hash); c != 0 {
			return c
		}
		return cmp.Compare(a.Bucket, b.Bucket)
	})

	for _, r := range sorted {
		p := PointForHash(r.Hash, w, h)
		c := image.NewUniform(pal.ForBucket(r.Bucket, tableLength))
		draw.Draw(img, square(p, side, img.Bounds()), c, image.Point{}, draw.Src)
	}
	return img
}

// BucketImage draws one bar per bucket, scaled against the fullest bucket.
func BucketImage(counts []uint64, opts Options) *image.RGBA {
	w, fullHeight := opts.canvas()

	pct := opts.BucketHeight
	if pct <= 0 || pct > 100 {
		pct = 100
	}
	h := max(int(math.Round(float64(fullHeight)*pct/100)), 1)
	img := newCanvas(w, h)

	var most uint64
	for _, n := range counts {
		most = max(most, n)
	}
	if most == 0 {
		return img
	}

	pal := opts.palette()
	length := len(counts)
	for i, n := range counts {
		if n == 0 {
			continue
		}

		x0 := i * w / length
		x1 := max((i+1)*w/length, x0+1)
		barHeight := max(int(math.Round(float64(n)/float64(most)*float64(h))), 1)

		bar := image.Rect(x0, h-barHeight, x1, h).Intersect(img.Bounds())
		c := image.NewUniform(pal.ForBucket(uint64(i), uint64(length)))
		draw.Draw(img, bar, c, image.Point{}, draw.Src)
	}
	return img
}

func newCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	return img
}

// EncodePNG writes img to w as a PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// WritePNG writes img to the file at path, replacing it if it exists.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
