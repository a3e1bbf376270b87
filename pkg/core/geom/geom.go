// Package geom defines the integer geometry shared by every layout strategy
// and renderer.
//
// All coordinates are EMU (English Metric Units, 914400 per inch) held in
// int64 so layouts are exact and reproducible. The slide canvas is 16:9 at
// 10in × 5.625in.
//
// Anchors follow the connection-site numbering used by slide formats:
//
//	0 = top-mid    (x + w/2, y)
//	1 = right-mid  (x + w,   y + h/2)
//	2 = bottom-mid (x + w/2, y + h)
//	3 = left-mid   (x,       y + h/2)
package geom

import "fmt"

// Canvas dimensions and common unit conversions.
const (
	EMUPerInch  int64 = 914400
	EMUPerPoint int64 = 12700

	CanvasWidth  int64 = 9144000
	CanvasHeight int64 = 5143500
)

// Point is a position in EMU.
type Point struct {
	X, Y int64
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Rect is an axis-aligned rectangle in EMU. Placed rectangles always have
// positive width and height.
type Rect struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
	W int64 `json:"w"`
	H int64 `json:"h"`
}

func (r Rect) Right() int64  { return r.X + r.W }
func (r Rect) Bottom() int64 { return r.Y + r.H }

// Center returns the midpoint, rounded toward the origin.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) String() string {
	return fmt.Sprintf("{x=%d y=%d w=%d h=%d}", r.X, r.Y, r.W, r.H)
}

// Inset shrinks r by dx on the left and right and by dy on the top and bottom.
func (r Rect) Inset(dx, dy int64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Canvas returns the full slide rectangle.
func Canvas() Rect { return Rect{W: CanvasWidth, H: CanvasHeight} }

// Overlaps reports whether a and b share interior area. Rectangles that only
// touch along an edge or at a corner do not overlap.
func Overlaps(a, b Rect) bool {
	return a.X < b.Right() && b.X < a.Right() &&
		a.Y < b.Bottom() && b.Y < a.Bottom()
}

// Contains reports whether inner lies entirely within outer, edges included.
func Contains(outer, inner Rect) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.Right() <= outer.Right() && inner.Bottom() <= outer.Bottom()
}

// Union returns the smallest rectangle containing both a and b.
func Union(a, b Rect) Rect {
	x, y := min(a.X, b.X), min(a.Y, b.Y)
	return Rect{X: x, Y: y, W: max(a.Right(), b.Right()) - x, H: max(a.Bottom(), b.Bottom()) - y}
}

// Abs returns |v|.
func Abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
