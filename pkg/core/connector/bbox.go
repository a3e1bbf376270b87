package connector

import (
	"fmt"
	"strings"

	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/errors"
)

// Direction fixes which side of each shape a connector attaches to.
type Direction int

const (
	RightToLeft Direction = iota // source right (1) → target left (3)
	LeftToRight                  // source left (3) → target right (1)
	TopToBottom                  // source bottom (2) → target top (0)
	BottomToTop                  // source top (0) → target bottom (2)
)

var directionNames = [...]string{"right_to_left", "left_to_right", "top_to_bottom", "bottom_to_top"}

func (d Direction) String() string {
	if d >= 0 && int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection accepts the snake_case names produced by String.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown connector direction %q", s)
}

// Anchors returns the source and target anchor indices for d.
func (d Direction) Anchors() (src, tgt geom.Anchor) {
	switch d {
	case LeftToRight:
		return geom.AnchorLeft, geom.AnchorRight
	case TopToBottom:
		return geom.AnchorBottom, geom.AnchorTop
	case BottomToTop:
		return geom.AnchorTop, geom.AnchorBottom
	default:
		return geom.AnchorRight, geom.AnchorLeft
	}
}

// Placement is the stored form of a shape-to-shape connector.
type Placement struct {
	Rect         geom.Rect
	FlipH, FlipV bool
	SourceAnchor geom.Anchor
	TargetAnchor geom.Anchor
	Start, End   geom.Point
}

// BBox resolves the anchor points of src and tgt for dir and returns the
// connector box spanning them. FlipH is set when the target point lies left
// of the source point, FlipV when it lies above. Width and height floor at 1
// because some renderers drop zero-sized connectors.
func BBox(src, tgt geom.Rect, dir Direction) Placement {
	sa, ta := dir.Anchors()
	sp := geom.AnchorPoint(src, sa)
	tp := geom.AnchorPoint(tgt, ta)
	return Placement{
		Rect: geom.Rect{
			X: min(sp.X, tp.X),
			Y: min(sp.Y, tp.Y),
			W: max(geom.Abs(tp.X-sp.X), 1),
			H: max(geom.Abs(tp.Y-sp.Y), 1),
		},
		FlipH:        tp.X < sp.X,
		FlipV:        tp.Y < sp.Y,
		SourceAnchor: sa,
		TargetAnchor: ta,
		Start:        sp,
		End:          tp,
	}
}

// Endpoints recovers the start and end points of a connector from its
// stored box and flip flags. Because of the 1-unit floor the result can be
// one unit off the true anchor along a collapsed axis.
func Endpoints(r geom.Rect, flipH, flipV bool) (start, end geom.Point) {
	start, end = geom.Point{X: r.X, Y: r.Y}, geom.Point{X: r.Right(), Y: r.Bottom()}
	if flipH {
		start.X, end.X = end.X, start.X
	}
	if flipV {
		start.Y, end.Y = end.Y, start.Y
	}
	return start, end
}

// Near reports whether a and b are within tol on both axes.
func Near(a, b geom.Point, tol int64) bool {
	return geom.Abs(a.X-b.X) <= tol && geom.Abs(a.Y-b.Y) <= tol
}
