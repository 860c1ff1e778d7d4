// =======================
// render/point.go
// =======================

package render

import "image"

// PointForHash places a hash on a w×h canvas. The upper 32 bits pick the
// column and the lower 32 bits pick the row, each scaled so the full range
// of a half covers the full axis.
func PointForHash(hash uint64, w, h int) image.Point {
	hi, lo := hash>>32, hash&0xffffffff
	return image.Point{
		X: int((hi * uint64(w)) >> 32),
		Y: int((lo * uint64(h)) >> 32),
	}
}

// square returns the side×side rectangle centered on p, clipped to bounds.
func square(p image.Point, side int, bounds image.Rectangle) image.Rectangle {
	half := side / 2
	r := image.Rect(p.X-half, p.Y-half, p.X-half+side, p.Y-half+side)
	return r.Intersect(bounds)
}
