package geom

import "fmt"

// Anchor is a connection-site index on a shape's bounding box.
type Anchor int

const (
	AnchorTop Anchor = iota
	AnchorRight
	AnchorBottom
	AnchorLeft
)

// Valid reports whether a is one of the four cardinal anchors.
func (a Anchor) Valid() bool { return a >= AnchorTop && a <= AnchorLeft }

func (a Anchor) String() string {
	switch a {
	case AnchorTop:
		return "top"
	case AnchorRight:
		return "right"
	case AnchorBottom:
		return "bottom"
	case AnchorLeft:
		return "left"
	}
	return fmt.Sprintf("anchor(%d)", int(a))
}

// Opposite returns the anchor on the facing side.
func (a Anchor) Opposite() Anchor {
	switch a {
	case AnchorTop:
		return AnchorBottom
	case AnchorRight:
		return AnchorLeft
	case AnchorBottom:
		return AnchorTop
	case AnchorLeft:
		return AnchorRight
	}
	return a
}

// AnchorPoint returns the midpoint of the side of r named by a. Odd sizes
// truncate toward the origin. An invalid anchor yields the center.
func AnchorPoint(r Rect, a Anchor) Point {
	switch a {
	case AnchorTop:
		return Point{r.X + r.W/2, r.Y}
	case AnchorRight:
		return Point{r.X + r.W, r.Y + r.H/2}
	case AnchorBottom:
		return Point{r.X + r.W/2, r.Y + r.H}
	case AnchorLeft:
		return Point{r.X, r.Y + r.H/2}
	}
	return r.Center()
}
