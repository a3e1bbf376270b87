package layout

import (
	"github.com/matzehuels/slidekit/pkg/core/connector"
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/diagram"
)

// Flow geometry, in EMU.
const (
	FlowShapeWidth  int64 = 1371600
	FlowGap         int64 = 228600
	FlowRowHeight   int64 = 1143000
	flowRowOffset   int64 = 114300
	flowConnWidth   int64 = 25400
	flowConnRadius  int64 = 150000
	flowDecisionH   int64 = 1143000
	flowProcessH    int64 = 914400
	flowTerminatorH int64 = 685800
)

// Flow places every shape in one centered row, left to right in input
// order. Decisions are taller and terminators shorter than other shapes;
// each is centered vertically on the row. When the diagram has no
// connections, consecutive shapes are chained.
type Flow struct {
	cfg config
}

// NewFlow returns the horizontal-flow strategy.
func NewFlow(opts ...Option) *Flow { return &Flow{cfg: newConfig(opts)} }

// Layout implements [Strategy].
func (f *Flow) Layout(d *diagram.Diagram, ids *diagram.IDAllocator) (*diagram.LayoutResult, error) {
	b := newBuilder(d, ids, f.cfg)
	b.connWidth, b.connRadius = flowConnWidth, flowConnRadius
	b.centeredTitle()

	c := f.cfg.canvas
	n := len(d.Shapes)
	avail := c.W - 2*pageMarginX
	if int64(n) > avail {
		return nil, tooDense("shapes", n)
	}
	w, gap := fitRow(n, FlowShapeWidth, FlowGap, avail)
	left := centerStart(c.X, c.W, rowSpan(n, w, gap))
	rowTop := c.Y + (c.H-FlowRowHeight)/2 + flowRowOffset

	for i, s := range d.Shapes {
		h := flowHeight(s.Kind)
		r := geom.Rect{X: left + int64(i)*(w+gap), Y: rowTop + (FlowRowHeight-h)/2, W: w, H: h}
		b.shape(s, r, b.styleFor(s), 0)
	}

	pick := fixed(connector.RightToLeft)
	if len(d.Connections) == 0 {
		for i := 1; i < n; i++ {
			chain := diagram.Connection{From: d.Shapes[i-1].ID, To: d.Shapes[i].ID}
			if err := b.connect(chain, pick); err != nil {
				return nil, err
			}
		}
		return b.res, nil
	}
	if err := b.connectAll(pick); err != nil {
		return nil, err
	}
	return b.res, nil
}

func flowHeight(k diagram.ShapeKind) int64 {
	switch k {
	case diagram.KindDecision:
		return flowDecisionH
	case diagram.KindTerminator:
		return flowTerminatorH
	}
	return flowProcessH
}
