package sink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/slidekit/pkg/core/connector"
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/core/textfit"
	"github.com/matzehuels/slidekit/pkg/diagram"
)

// EMUPerPixel converts EMU to CSS pixels at 96 dpi.
const EMUPerPixel = 9525

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	docID   uuid.UUID
	mode    connector.Mode
	width   int
	fontFam string
}

// WithDocumentID fixes the document id. By default it is derived from the
// layout content, so identical layouts render to identical bytes.
func WithDocumentID(id uuid.UUID) SVGOption { return func(r *svgRenderer) { r.docID = id } }

// WithChamfers draws rounded corners as 45° cuts instead of arcs.
func WithChamfers() SVGOption { return func(r *svgRenderer) { r.mode = connector.ModeChamfer } }

// WithPixelWidth sets the width attribute; the height keeps the canvas
// aspect ratio.
func WithPixelWidth(px int) SVGOption { return func(r *svgRenderer) { r.width = px } }

// WithFontFamily overrides the CSS font family.
func WithFontFamily(f string) SVGOption { return func(r *svgRenderer) { r.fontFam = f } }

// RenderSVG renders l as a standalone SVG document in EMU user units. Each
// element is a group carrying its identifier and kind; connector groups also
// carry the identifiers of their endpoints.
func RenderSVG(l *diagram.LayoutResult, opts ...SVGOption) ([]byte, error) {
	r := svgRenderer{mode: connector.ModeArc, fontFam: "Calibri, Helvetica, Arial, sans-serif"}
	for _, opt := range opts {
		opt(&r)
	}
	if r.docID == uuid.Nil {
		data, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("hash layout: %w", err)
		}
		r.docID = uuid.NewSHA1(uuid.NameSpaceOID, data)
	}

	canvas := canvasOf(l)
	w := r.width
	if w <= 0 {
		w = int(canvas.W / EMUPerPixel)
	}
	h := int(int64(w) * canvas.H / canvas.W)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%d %d %d %d" width="%d" height="%d" data-document="%s" data-strategy="%s">`+"\n",
		canvas.X, canvas.Y, canvas.W, canvas.H, w, h, r.docID, l.Strategy)
	r.renderDefs(&buf, l)

	ix := newIndex(l)
	for _, e := range l.Elements() {
		var err error
		switch e.Kind {
		case diagram.ElementBackground:
			r.renderBackground(&buf, l.Background)
		case diagram.ElementLane:
			r.renderLane(&buf, ix.lanes[e.ID])
		case diagram.ElementTitle:
			r.renderLabel(&buf, l.Title, diagram.ElementTitle)
		case diagram.ElementConnector:
			err = r.renderConnector(&buf, ix.connectors[e.ID])
		case diagram.ElementShape:
			r.renderShape(&buf, ix.shapes[e.ID])
		case diagram.ElementLabel:
			r.renderLabel(&buf, ix.labels[e.ID], diagram.ElementLabel)
		}
		if err != nil {
			return nil, err
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func (r *svgRenderer) gradientID() string { return "bg-" + r.docID.String()[:8] }

func markerID(color string) string { return "arrow-" + color }

func (r *svgRenderer) renderDefs(buf *bytes.Buffer, l *diagram.LayoutResult) {
	buf.WriteString("<defs>\n")
	fmt.Fprintf(buf, `  <linearGradient id="%s" x1="0" y1="0" x2="0" y2="1"><stop offset="0" stop-color="#%s"/><stop offset="1" stop-color="#%s"/></linearGradient>`+"\n",
		r.gradientID(), l.Background.Top, l.Background.Bottom)

	var colors []string
	for _, c := range l.Connectors {
		if !slices.Contains(colors, c.Color) {
			colors = append(colors, c.Color)
		}
	}
	for _, c := range colors {
		fmt.Fprintf(buf, `  <marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="4" markerHeight="4" orient="auto-start-reverse"><path d="M0,0 L10,5 L0,10 z" fill="#%s"/></marker>`+"\n",
			markerID(c), c)
	}
	buf.WriteString("</defs>\n")
}

func (r *svgRenderer) renderBackground(buf *bytes.Buffer, bg diagram.Background) {
	fmt.Fprintf(buf, `<g id="%s" data-kind="%s"><rect x="%d" y="%d" width="%d" height="%d" fill="url(#%s)"/></g>`+"\n",
		Ref(bg.ID), diagram.ElementBackground, bg.Rect.X, bg.Rect.Y, bg.Rect.W, bg.Rect.H, r.gradientID())
}

func (r *svgRenderer) renderLane(buf *bytes.Buffer, ln diagram.LaneBackground) {
	fmt.Fprintf(buf, `<g id="%s" data-kind="%s" data-name="%s"><rect x="%d" y="%d" width="%d" height="%d" fill="#%s" stroke="#%s" stroke-width="6350"/></g>`+"\n",
		Ref(ln.ID), diagram.ElementLane, html.EscapeString(ln.Name), ln.Rect.X, ln.Rect.Y, ln.Rect.W, ln.Rect.H, ln.Fill, ln.Border)
}

func (r *svgRenderer) renderLabel(buf *bytes.Buffer, lb diagram.PlacedLabel, kind diagram.ElementKind) {
	fmt.Fprintf(buf, `<g id="%s" data-kind="%s">`, Ref(lb.ID), kind)
	if lb.Fill != "" {
		fmt.Fprintf(buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="#%s"/>`, lb.Rect.X, lb.Rect.Y, lb.Rect.W, lb.Rect.H, lb.Fill)
	}
	x, anchor := lb.Rect.Center().X, "middle"
	if lb.Align == diagram.AlignLeft {
		x, anchor = lb.Rect.X+textfit.InsetX, "start"
	}
	r.text(buf, x, lb.Rect.Center().Y, anchor, lb.Text, lb.FontSize, lb.TextColor, lb.Emphasis)
	buf.WriteString("</g>\n")
}

func (r *svgRenderer) text(buf *bytes.Buffer, x, y int64, anchor, s string, size int, color string, em diagram.Emphasis) {
	if s == "" {
		return
	}
	fmt.Fprintf(buf, `<text x="%d" y="%d" text-anchor="%s" dominant-baseline="central" font-family="%s" font-size="%d" fill="#%s"`,
		x, y, anchor, r.fontFam, fontEMU(size), color)
	if em.Bold() {
		buf.WriteString(` font-weight="bold"`)
	}
	if em.Italic() {
		buf.WriteString(` font-style="italic"`)
	}
	fmt.Fprintf(buf, ">%s</text>", html.EscapeString(s))
}

// fontEMU converts a centipoint font size to EMU.
func fontEMU(size int) int64 { return int64(size) * geom.EMUPerPoint / 100 }

func (r *svgRenderer) renderShape(buf *bytes.Buffer, s diagram.PlacedShape) {
	fmt.Fprintf(buf, `<g id="%s" data-kind="%s" data-key="%s" data-preset="%s">`,
		Ref(s.ID), diagram.ElementShape, html.EscapeString(s.Key), html.EscapeString(s.Preset))
	fmt.Fprintf(buf, `<%s fill="#%s" stroke="#%s" stroke-width="12700"/>`, shapeOutline(s), s.Fill, s.Border)

	c := s.Rect.Center()
	if s.SecondaryText == "" {
		r.text(buf, c.X, c.Y, "middle", s.Text, s.FontSize, s.TextColor, s.Emphasis)
	} else {
		primary := s.Rect.H * 3 / 5
		r.text(buf, c.X, s.Rect.Y+primary/2, "middle", s.Text, s.FontSize, s.TextColor, s.Emphasis)
		r.text(buf, c.X, s.Rect.Y+primary+(s.Rect.H-primary)/2, "middle", s.SecondaryText, s.SecondaryFontSize, s.TextColor, 0)
	}
	buf.WriteString("</g>\n")
}

// shapeOutline returns the SVG element name and geometry attributes for s,
// without the closing slash.
func shapeOutline(s diagram.PlacedShape) string {
	x, y, w, h := s.Rect.X, s.Rect.Y, s.Rect.W, s.Rect.H
	switch s.Kind {
	case diagram.KindDecision:
		c := s.Rect.Center()
		return fmt.Sprintf(`polygon points="%d,%d %d,%d %d,%d %d,%d"`, c.X, y, x+w, c.Y, c.X, y+h, x, c.Y)
	case diagram.KindTerminator:
		return fmt.Sprintf(`rect x="%d" y="%d" width="%d" height="%d" rx="%d"`, x, y, w, h, h/2)
	case diagram.KindData:
		sk := w / 8
		return fmt.Sprintf(`polygon points="%d,%d %d,%d %d,%d %d,%d"`, x+sk, y, x+w, y, x+w-sk, y+h, x, y+h)
	case diagram.KindDatabase:
		rx, ry := w/2, h/8
		return fmt.Sprintf(`path d="M%d,%d A%d,%d 0 0 1 %d,%d V%d A%d,%d 0 0 1 %d,%d Z M%d,%d A%d,%d 0 0 0 %d,%d"`,
			x, y+ry, rx, ry, x+w, y+ry, y+h-ry, rx, ry, x, y+h-ry, x, y+ry, rx, ry, x+w, y+ry)
	case diagram.KindDocument:
		a := h / 10
		return fmt.Sprintf(`path d="M%d,%d H%d V%d C%d,%d %d,%d %d,%d Z"`,
			x, y, x+w, y+h-a, x+w*3/4, y+h-3*a, x+w/4, y+h+a, x, y+h-a)
	}
	rx := min(w, h) / 10
	if s.Preset == "rect" {
		rx = 0
	}
	return fmt.Sprintf(`rect x="%d" y="%d" width="%d" height="%d" rx="%d"`, x, y, w, h, rx)
}

func (r *svgRenderer) renderConnector(buf *bytes.Buffer, c diagram.PlacedConnector) error {
	segs, err := connectorSegments(c, r.mode)
	if err != nil {
		return fmt.Errorf("connector %s: %w", Ref(c.ID), err)
	}

	fmt.Fprintf(buf, `<g id="%s" data-kind="%s" data-start="%s" data-end="%s" data-start-anchor="%d" data-end-anchor="%d">`,
		Ref(c.ID), diagram.ElementConnector, Ref(c.SourceID), Ref(c.TargetID), c.SourceAnchor, c.TargetAnchor)
	fmt.Fprintf(buf, `<path d="%s" fill="none" stroke="#%s" stroke-width="%d"`, pathData(segs), c.Color, c.Width)
	if c.Tail == diagram.ArrowTriangle {
		fmt.Fprintf(buf, ` marker-end="url(#%s)"`, markerID(c.Color))
	}
	if c.Head == diagram.ArrowTriangle {
		fmt.Fprintf(buf, ` marker-start="url(#%s)"`, markerID(c.Color))
	}
	buf.WriteString("/></g>\n")
	return nil
}

// pathData converts routed segments to SVG path commands. A positive swing
// is clockwise on screen, which is SVG's sweep-flag 1.
func pathData(segs []connector.Segment) string {
	if len(segs) == 0 {
		return ""
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "M%d,%d", segs[0].From.X, segs[0].From.Y)
	for _, s := range segs {
		switch s.Kind {
		case connector.SegmentArc:
			sweep := 0
			if s.SwingAngle > 0 {
				sweep = 1
			}
			fmt.Fprintf(&b, " A%d,%d 0 0 %d %d,%d", s.Radius, s.Radius, sweep, s.To.X, s.To.Y)
		default:
			fmt.Fprintf(&b, " L%d,%d", s.To.X, s.To.Y)
		}
	}
	return b.String()
}
