package connector

import (
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/errors"
)

// Heading is the compass direction of an axis-aligned segment. Y grows
// downward, so South means increasing Y.
type Heading int

const (
	East Heading = iota
	West
	North
	South
)

func (h Heading) String() string {
	return [...]string{"R", "L", "U", "D"}[h]
}

func heading(a, b geom.Point) (Heading, bool) {
	switch {
	case a.Y == b.Y && b.X > a.X:
		return East, true
	case a.Y == b.Y && b.X < a.X:
		return West, true
	case a.X == b.X && b.Y < a.Y:
		return North, true
	case a.X == b.X && b.Y > a.Y:
		return South, true
	}
	return 0, false
}

func (h Heading) step(p geom.Point, d int64) geom.Point {
	switch h {
	case East:
		p.X += d
	case West:
		p.X -= d
	case North:
		p.Y -= d
	case South:
		p.Y += d
	}
	return p
}

// Arc angles in 60000ths of a degree, clockwise from +X.
const (
	Deg0   = 0
	Deg90  = 5400000
	Deg180 = 10800000
	Deg270 = 16200000
)

type turn struct{ in, out Heading }

// elbowArcs maps the eight valid elbow transitions to (start, swing).
var elbowArcs = map[turn][2]int{
	{East, South}: {Deg270, Deg90},
	{East, North}: {Deg90, -Deg90},
	{West, South}: {Deg270, -Deg90},
	{West, North}: {Deg90, Deg90},
	{South, East}: {Deg180, -Deg90},
	{South, West}: {Deg0, Deg90},
	{North, East}: {Deg180, Deg90},
	{North, West}: {Deg0, -Deg90},
}

// ElbowArc returns the arc start and swing angles for turning from in to out.
func ElbowArc(in, out Heading) (start, swing int, ok bool) {
	a, ok := elbowArcs[turn{in, out}]
	return a[0], a[1], ok
}

// Mode selects how rounded corners are drawn.
type Mode int

const (
	ModeArc     Mode = iota // quarter-circle arcs, for vector output
	ModeChamfer             // 45° cuts, for polyline-only output
)

// SegmentKind tags a routed segment.
type SegmentKind int

const (
	SegmentLine SegmentKind = iota
	SegmentArc
	SegmentChamfer
)

func (k SegmentKind) String() string {
	return [...]string{"line", "arc", "chamfer"}[k]
}

// Segment is one drawable piece of a routed path. Arc segments carry their
// radius and DrawingML-style start and swing angles.
type Segment struct {
	Kind       SegmentKind `json:"kind"`
	From       geom.Point  `json:"from"`
	To         geom.Point  `json:"to"`
	Radius     int64       `json:"radius,omitempty"`
	StartAngle int         `json:"start_angle,omitempty"`
	SwingAngle int         `json:"swing_angle,omitempty"`
}

// Route smooths the interior corners of an axis-aligned polyline.
//
// Every consecutive waypoint pair must differ in exactly one axis and every
// interior waypoint must be a 90° turn. A corner stays sharp when either
// adjacent segment is shorter than 2×radius; otherwise the incoming segment
// stops radius before the corner, the outgoing one starts radius after it,
// and an arc or chamfer joins them. No segment endpoint ever passes a
// neighboring waypoint.
func Route(points []geom.Point, radius int64, mode Mode) ([]Segment, error) {
	if len(points) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidRoute, "route needs at least 2 waypoints, got %d", len(points))
	}

	headings := make([]Heading, len(points)-1)
	lengths := make([]int64, len(points)-1)
	for i := range headings {
		h, ok := heading(points[i], points[i+1])
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidRoute,
				"waypoints %v and %v are not axis-aligned and distinct", points[i], points[i+1])
		}
		headings[i] = h
		lengths[i] = geom.Abs(points[i+1].X-points[i].X) + geom.Abs(points[i+1].Y-points[i].Y)
	}

	// cut[i] is how far the path is pulled back from waypoint i on each side.
	cut := make([]int64, len(points))
	for i := 1; i < len(points)-1; i++ {
		in, out := headings[i-1], headings[i]
		if _, _, ok := ElbowArc(in, out); !ok {
			return nil, errors.New(errors.ErrCodeInvalidRoute,
				"waypoint %v: %s→%s is not an elbow", points[i], in, out)
		}
		lenIn, lenOut := lengths[i-1], lengths[i]
		if radius <= 0 || lenIn < 2*radius || lenOut < 2*radius {
			continue
		}
		cut[i] = min(radius, lenIn/2, lenOut/2)
	}

	segs := make([]Segment, 0, 2*len(points))
	for i, h := range headings {
		from := h.step(points[i], cut[i])
		to := h.step(points[i+1], -cut[i+1])
		if from != to {
			segs = append(segs, Segment{Kind: SegmentLine, From: from, To: to})
		}
		if r := cut[i+1]; r > 0 {
			next := headings[i+1].step(points[i+1], r)
			segs = append(segs, corner(to, next, r, h, headings[i+1], mode))
		}
	}
	return segs, nil
}

func corner(from, to geom.Point, r int64, in, out Heading, mode Mode) Segment {
	if mode == ModeChamfer {
		return Segment{Kind: SegmentChamfer, From: from, To: to}
	}
	start, swing, _ := ElbowArc(in, out)
	return Segment{Kind: SegmentArc, From: from, To: to, Radius: r, StartAngle: start, SwingAngle: swing}
}

// Path is a proposed orthogonal polyline plus the point where its label
// belongs.
type Path struct {
	Points []geom.Point `json:"points"`
	Mid    geom.Point   `json:"mid"`
}

// DefaultRoute proposes an orthogonal path from src to dst. Aligned points
// get a straight segment. Otherwise the path runs horizontal-first with the
// bend at the horizontal midpoint when |dx| ≥ |dy|, and vertical-first with
// the bend at the vertical midpoint when not. Mid is the middle of the bend
// segment.
func DefaultRoute(src, dst geom.Point) Path {
	dx, dy := dst.X-src.X, dst.Y-src.Y
	if dx == 0 || dy == 0 {
		return Path{
			Points: simplify([]geom.Point{src, dst}),
			Mid:    geom.Point{X: src.X + dx/2, Y: src.Y + dy/2},
		}
	}
	if geom.Abs(dx) >= geom.Abs(dy) {
		midX := src.X + dx/2
		return Path{
			Points: simplify([]geom.Point{src, {X: midX, Y: src.Y}, {X: midX, Y: dst.Y}, dst}),
			Mid:    geom.Point{X: midX, Y: src.Y + dy/2},
		}
	}
	midY := src.Y + dy/2
	return Path{
		Points: simplify([]geom.Point{src, {X: src.X, Y: midY}, {X: dst.X, Y: midY}, dst}),
		Mid:    geom.Point{X: src.X + dx/2, Y: midY},
	}
}

// simplify drops repeated points and merges collinear runs so the result is
// a valid Route input.
func simplify(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		if n := len(out); n >= 2 {
			a, b := out[n-2], out[n-1]
			if (a.X == b.X && b.X == p.X) || (a.Y == b.Y && b.Y == p.Y) {
				out[n-1] = p
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
