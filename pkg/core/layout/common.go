package layout

import (
	"github.com/matzehuels/slidekit/pkg/core/connector"
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/core/palette"
	"github.com/matzehuels/slidekit/pkg/core/textfit"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
)

// Shared page furniture, in EMU.
const (
	pageMarginX  int64 = 457200
	titleTop     int64 = 228600
	titleHeight  int64 = 457200
	titleMinFont       = 1400
	titleMaxFont       = 2400

	labelHeight  int64 = 228600
	labelMaxW    int64 = 1371600
	labelMaxFont       = 1000

	secondaryMaxFont = 1100

	connectorWidth  int64 = 19050
	connectorRadius int64 = 120000
)

// builder accumulates one LayoutResult.
type builder struct {
	d      *diagram.Diagram
	ids    *diagram.IDAllocator
	canvas geom.Rect
	res    *diagram.LayoutResult
	byKey  map[string]diagram.PlacedShape

	connWidth  int64
	connRadius int64
}

func newBuilder(d *diagram.Diagram, ids *diagram.IDAllocator, cfg config) *builder {
	b := &builder{
		d:          d,
		ids:        ids,
		canvas:     cfg.canvas,
		byKey:      make(map[string]diagram.PlacedShape, len(d.Shapes)),
		connWidth:  connectorWidth,
		connRadius: connectorRadius,
	}
	b.res = &diagram.LayoutResult{
		Strategy:   d.Strategy,
		Palette:    d.Palette,
		Canvas:     cfg.canvas,
		TitleStyle: d.TitleStyle,
		Background: diagram.Background{
			ID:     ids.Take(),
			Rect:   cfg.canvas,
			Top:    palette.BackgroundTop,
			Bottom: palette.BackgroundBottom,
			Z:      diagram.LayerBackground,
		},
		Shapes:     make([]diagram.PlacedShape, 0, len(d.Shapes)),
		Connectors: make([]diagram.PlacedConnector, 0, len(d.Connections)),
	}
	return b
}

// title places the slide title in r. A bar title gets a primary-colored
// band; a centered one is plain text.
func (b *builder) title(r geom.Rect) {
	b.res.TitleRect = r
	if b.d.Title == "" {
		return
	}
	lbl := diagram.PlacedLabel{
		ID:        b.ids.Take(),
		Text:      b.d.Title,
		Rect:      r,
		TextColor: palette.TitleColor(b.d.Palette),
		FontSize:  textfit.EstimateFontSize(b.d.Title, r.W, r.H, titleMinFont, titleMaxFont),
		Align:     diagram.AlignCenter,
		Emphasis:  diagram.EmphasisBold,
		Z:         diagram.LayerTitle,
	}
	if b.d.TitleStyle == diagram.TitleBar {
		st := palette.Resolve(b.d.Palette, palette.StylePrimary)
		lbl.Fill = st.Fill
		lbl.TextColor = st.Text
	}
	b.res.Title = lbl
}

// centeredTitle is the title box used by the flow and hierarchy layouts.
func (b *builder) centeredTitle() {
	b.title(geom.Rect{X: pageMarginX, Y: titleTop, W: b.canvas.W - 2*pageMarginX, H: titleHeight})
}

// shape places s in r with the given colors.
func (b *builder) shape(s diagram.Shape, r geom.Rect, st palette.Style, em diagram.Emphasis) {
	ps := diagram.PlacedShape{
		ID:            b.ids.Take(),
		Key:           s.ID,
		Text:          s.Text,
		SecondaryText: s.SecondaryText,
		Preset:        s.Preset,
		Kind:          s.Kind,
		Rect:          r,
		Fill:          st.Fill,
		Border:        st.Border,
		TextColor:     st.Text,
		Emphasis:      em,
		Z:             diagram.LayerShape,
	}
	if s.SecondaryText == "" {
		ps.FontSize = textfit.Estimate(s.Text, r.W, r.H)
	} else {
		primaryH := r.H * 3 / 5
		ps.FontSize = textfit.Estimate(s.Text, r.W, primaryH)
		ps.SecondaryFontSize = textfit.EstimateFontSize(s.SecondaryText, r.W, r.H-primaryH, textfit.MinSize, secondaryMaxFont)
	}
	b.res.Shapes = append(b.res.Shapes, ps)
	if _, dup := b.byKey[s.ID]; !dup {
		b.byKey[s.ID] = ps
	}
}

// styleFor resolves the style key of s, falling back to primary.
func (b *builder) styleFor(s diagram.Shape) palette.Style {
	return palette.Resolve(b.d.Palette, s.Style)
}

// connect joins two placed shapes. pick chooses the cardinal direction from
// the two rectangles.
func (b *builder) connect(c diagram.Connection, pick func(src, tgt geom.Rect) connector.Direction) error {
	src, ok := b.byKey[c.From]
	if !ok {
		return errors.New(errors.ErrCodeDanglingReference, "connection %s→%s: no shape %q", c.From, c.To, c.From)
	}
	tgt, ok := b.byKey[c.To]
	if !ok {
		return errors.New(errors.ErrCodeDanglingReference, "connection %s→%s: no shape %q", c.From, c.To, c.To)
	}

	p := connector.BBox(src.Rect, tgt.Rect, pick(src.Rect, tgt.Rect))
	path := connector.DefaultRoute(p.Start, p.End)

	pc := diagram.PlacedConnector{
		ID:           b.ids.Take(),
		SourceID:     src.ID,
		SourceAnchor: p.SourceAnchor,
		TargetID:     tgt.ID,
		TargetAnchor: p.TargetAnchor,
		Rect:         p.Rect,
		FlipH:        p.FlipH,
		FlipV:        p.FlipV,
		Color:        c.Color,
		Width:        b.connWidth,
		Routing:      diagram.RoutingElbow,
		Head:         diagram.ArrowNone,
		Tail:         diagram.ArrowTriangle,
		Corner:       diagram.CornerArc,
		CornerRadius: b.connRadius,
		Waypoints:    path.Points,
		Z:            diagram.LayerConnector,
	}
	if pc.Color == "" {
		pc.Color = palette.Get(b.d.Palette).Neutral
	}
	if len(path.Points) == 2 {
		pc.Routing = diagram.RoutingStraight
		pc.Corner = diagram.CornerSharp
		pc.CornerRadius = 0
	}
	b.res.Connectors = append(b.res.Connectors, pc)

	if c.Label != "" {
		b.floatingLabel(c.Label, path.Mid)
	}
	return nil
}

// floatingLabel centers a small white-backed label on at, kept inside the
// canvas.
func (b *builder) floatingLabel(text string, at geom.Point) {
	w := min(textfit.TextWidth(text, labelMaxFont)+2*textfit.InsetX, labelMaxW)
	r := geom.Rect{X: at.X - w/2, Y: at.Y - labelHeight/2, W: w, H: labelHeight}
	r.X = clamp(r.X, b.canvas.X, b.canvas.Right()-r.W)
	r.Y = clamp(r.Y, b.canvas.Y, b.canvas.Bottom()-r.H)
	b.res.Labels = append(b.res.Labels, diagram.PlacedLabel{
		ID:        b.ids.Take(),
		Text:      text,
		Rect:      r,
		TextColor: palette.TitleColor(b.d.Palette),
		Fill:      "FFFFFF",
		FontSize:  textfit.EstimateFontSize(text, r.W, r.H, textfit.MinSize, labelMaxFont),
		Align:     diagram.AlignCenter,
		Z:         diagram.LayerLabel,
	})
}

func (b *builder) connectAll(pick func(src, tgt geom.Rect) connector.Direction) error {
	for _, c := range b.d.Connections {
		if err := b.connect(c, pick); err != nil {
			return err
		}
	}
	return nil
}

func fixed(d connector.Direction) func(src, tgt geom.Rect) connector.Direction {
	return func(geom.Rect, geom.Rect) connector.Direction { return d }
}

// =============================================================================
// Row Geometry
// =============================================================================

// fitRow returns the item size and gap for n items in a row of at most
// avail. Rows that already fit are unchanged; wider rows are scaled down
// proportionally, gap included, so items never overlap.
func fitRow(n int, size, gap, avail int64) (int64, int64) {
	if n <= 0 {
		return size, gap
	}
	total := rowSpan(n, size, gap)
	if total <= avail {
		return size, gap
	}
	return size * avail / total, gap * avail / total
}

// rowSpan is the total extent of n items with gaps between them.
func rowSpan(n int, size, gap int64) int64 {
	if n <= 0 {
		return 0
	}
	return int64(n)*size + int64(n-1)*gap
}

// centerStart returns where a row of span must start to be centered in
// [from, from+extent).
func centerStart(from, extent, span int64) int64 {
	return from + (extent-span)/2
}

func clamp(v, lo, hi int64) int64 {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

func tooDense(what string, n int) error {
	return errors.New(errors.ErrCodeInvalidInput, "%d %s do not fit on one slide", n, what)
}
