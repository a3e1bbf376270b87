package layout

import (
	"github.com/matzehuels/slidekit/pkg/core/connector"
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/core/palette"
	"github.com/matzehuels/slidekit/pkg/core/textfit"
	"github.com/matzehuels/slidekit/pkg/diagram"
)

// Swim-lane geometry, in EMU.
const (
	LaneTitleHeight int64 = 500000
	laneTitleGap    int64 = 91440
	LaneMarginX     int64 = 137160
	laneMarginBot   int64 = 91440
	LaneGap         int64 = 45720
	laneMinHeight   int64 = 2 * LaneGap
	laneLabelW      int64 = 1188720
	lanePadY        int64 = 45720

	LaneShapeWidth  int64 = 1371600
	LaneShapeHeight int64 = 800100
	LaneShapeGap    int64 = 304800
)

// SwimLane places one full-width band per group, in the order groups first
// appear. Each band carries a left-aligned name and a centered row of its
// shapes.
//
// A connector leaves its source's bottom and enters its target's top when
// the vertical offset between their centers strictly exceeds the horizontal
// one; otherwise it runs from the source's right to the target's left. A connector running up or leftward keeps the
// same sides and carries the reversal in its flip flags.
type SwimLane struct {
	cfg config
}

// NewSwimLane returns the swim-lane strategy.
func NewSwimLane(opts ...Option) *SwimLane { return &SwimLane{cfg: newConfig(opts)} }

// Layout implements [Strategy].
func (sl *SwimLane) Layout(d *diagram.Diagram, ids *diagram.IDAllocator) (*diagram.LayoutResult, error) {
	b := newBuilder(d, ids, sl.cfg)
	c := sl.cfg.canvas

	top := c.Y + laneTitleGap
	b.title(geom.Rect{X: c.X, Y: c.Y, W: c.W, H: LaneTitleHeight})
	if b.res.HasTitle() {
		top = c.Y + LaneTitleHeight + laneTitleGap
	}

	groups := d.Groups()
	k := int64(len(groups))
	if k == 0 {
		return b.res, nil
	}
	areaH := c.Bottom() - laneMarginBot - top
	laneGap := LaneGap
	if areaH-(k-1)*laneGap < k*laneMinHeight {
		// Too many lanes for full gaps: shrink gaps along with the lanes.
		_, laneGap = fitRow(len(groups), laneMinHeight, LaneGap, areaH)
	}
	laneH := (areaH - (k-1)*laneGap) / k
	if laneH < 2 {
		return nil, tooDense("lanes", len(groups))
	}

	members := make(map[string][]diagram.Shape, len(groups))
	for _, s := range d.Shapes {
		members[s.Group] = append(members[s.Group], s)
	}

	laneX := c.X + LaneMarginX
	laneW := c.W - 2*LaneMarginX
	fill := palette.LaneFill(d.Palette)
	labelColor := palette.TitleColor(d.Palette)

	for i, g := range groups {
		lane := geom.Rect{X: laneX, Y: top + int64(i)*(laneH+laneGap), W: laneW, H: laneH}
		b.res.Lanes = append(b.res.Lanes, diagram.LaneBackground{
			ID:     ids.Take(),
			Name:   g,
			Rect:   lane,
			Fill:   fill,
			Border: palette.Shade(fill, 0.85),
			Z:      diagram.LayerLane,
		})
		if g != "" {
			lr := geom.Rect{X: lane.X + lanePadY, Y: lane.Y, W: laneLabelW - 2*lanePadY, H: lane.H}
			b.res.Labels = append(b.res.Labels, diagram.PlacedLabel{
				ID:        ids.Take(),
				Text:      g,
				Rect:      lr,
				TextColor: labelColor,
				FontSize:  textfit.Estimate(g, lr.W, lr.H),
				Align:     diagram.AlignLeft,
				Emphasis:  diagram.EmphasisBold,
				Z:         diagram.LayerLabel,
			})
		}

		row := members[g]
		contentX := lane.X + laneLabelW
		contentW := lane.Right() - lanePadY - contentX
		if int64(len(row)) > contentW {
			return nil, tooDense("shapes in one lane", len(row))
		}
		w, gap := fitRow(len(row), LaneShapeWidth, LaneShapeGap, contentW)
		left := centerStart(contentX, contentW, rowSpan(len(row), w, gap))
		h := min(LaneShapeHeight, lane.H*4/5)
		y := lane.Y + (lane.H-h)/2
		for j, s := range row {
			r := geom.Rect{X: left + int64(j)*(w+gap), Y: y, W: w, H: h}
			b.shape(s, r, b.styleFor(s), 0)
		}
	}

	if err := b.connectAll(laneDirection); err != nil {
		return nil, err
	}
	return b.res, nil
}

// laneDirection picks the attachment sides for a swim-lane connector.
func laneDirection(src, tgt geom.Rect) connector.Direction {
	sc, tc := src.Center(), tgt.Center()
	dx, dy := tc.X-sc.X, tc.Y-sc.Y
	if geom.Abs(dy) > geom.Abs(dx) {
		return connector.TopToBottom
	}
	return connector.RightToLeft
}
