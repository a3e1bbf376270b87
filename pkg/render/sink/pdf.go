package sink

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/slidekit/pkg/core/connector"
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/core/textfit"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/qc"
)

// PDFOption configures PDF rendering via [RenderPDF].
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	font    string
	created time.Time
	title   string
}

// WithPDFFont sets the core font family (Helvetica, Times or Courier).
func WithPDFFont(family string) PDFOption { return func(r *pdfRenderer) { r.font = family } }

// WithPDFDate sets the creation date recorded in the document. It defaults
// to the Unix epoch so output is reproducible.
func WithPDFDate(t time.Time) PDFOption { return func(r *pdfRenderer) { r.created = t } }

// WithPDFTitle sets the document title metadata.
func WithPDFTitle(s string) PDFOption { return func(r *pdfRenderer) { r.title = s } }

// pt converts EMU to PDF points.
func pt(v int64) float64 { return float64(v) / float64(geom.EMUPerPoint) }

// RenderPDF renders l as a single-page PDF sized to the canvas. PDF paths
// have no arcs at this level, so rounded connector corners are chamfered.
// The returned report lists elements in the order they were drawn.
func RenderPDF(l *diagram.LayoutResult, opts ...PDFOption) ([]byte, qc.RenderReport, error) {
	r := pdfRenderer{font: "Helvetica", created: time.Unix(0, 0).UTC(), title: l.Title.Text}
	for _, opt := range opts {
		opt(&r)
	}
	rep := qc.RenderReport{Format: string(FormatPDF)}

	canvas := canvasOf(l)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pt(canvas.W), Ht: pt(canvas.H)},
	})
	pdf.SetCreationDate(r.created)
	pdf.SetModificationDate(r.created)
	pdf.SetTitle(r.title, true)
	pdf.SetCreator("slidekit", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(pt(textfit.InsetX))
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.AddPage()

	d := pdfDoc{Fpdf: pdf, font: r.font, tr: pdf.UnicodeTranslatorFromDescriptor(""), origin: canvas}
	ix := newIndex(l)
	for _, e := range l.Elements() {
		re := qc.RenderedElement{ID: Ref(e.ID), Kind: e.Kind}
		switch e.Kind {
		case diagram.ElementBackground:
			d.background(l.Background)
		case diagram.ElementLane:
			d.lane(ix.lanes[e.ID])
		case diagram.ElementTitle:
			d.label(l.Title)
		case diagram.ElementConnector:
			c := ix.connectors[e.ID]
			if err := d.connector(c); err != nil {
				return nil, rep, fmt.Errorf("connector %s: %w", Ref(c.ID), err)
			}
			re.Start, re.End = Ref(c.SourceID), Ref(c.TargetID)
		case diagram.ElementShape:
			d.shape(ix.shapes[e.ID])
		case diagram.ElementLabel:
			d.label(ix.labels[e.ID])
		}
		rep.Elements = append(rep.Elements, re)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, rep, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), rep, nil
}

type pdfDoc struct {
	*fpdf.Fpdf
	font   string
	tr     func(string) string
	origin geom.Rect
}

func rgb(hex string) (int, int, int) {
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return 0, 0, 0
	}
	r, g, b := c.RGB255()
	return int(r), int(g), int(b)
}

// box converts r to page coordinates.
func (d pdfDoc) box(r geom.Rect) (x, y, w, h float64) {
	return pt(r.X - d.origin.X), pt(r.Y - d.origin.Y), pt(r.W), pt(r.H)
}

func (d pdfDoc) point(p geom.Point) fpdf.PointType {
	return fpdf.PointType{X: pt(p.X - d.origin.X), Y: pt(p.Y - d.origin.Y)}
}

func (d pdfDoc) fill(hex string) { d.SetFillColor(rgb(hex)) }
func (d pdfDoc) draw(hex string) { d.SetDrawColor(rgb(hex)) }

func (d pdfDoc) background(bg diagram.Background) {
	x, y, w, h := d.box(bg.Rect)
	r1, g1, b1 := rgb(bg.Top)
	r2, g2, b2 := rgb(bg.Bottom)
	d.LinearGradient(x, y, w, h, r1, g1, b1, r2, g2, b2, 0, 0, 0, 1)
}

func (d pdfDoc) lane(ln diagram.LaneBackground) {
	x, y, w, h := d.box(ln.Rect)
	d.fill(ln.Fill)
	d.draw(ln.Border)
	d.SetLineWidth(0.5)
	d.Rect(x, y, w, h, "FD")
}

func (d pdfDoc) label(lb diagram.PlacedLabel) {
	x, y, w, h := d.box(lb.Rect)
	if lb.Fill != "" {
		d.fill(lb.Fill)
		d.Rect(x, y, w, h, "F")
	}
	align := "CM"
	if lb.Align == diagram.AlignLeft {
		align = "LM"
	}
	d.text(x, y, w, h, lb.Text, lb.FontSize, lb.TextColor, lb.Emphasis, align)
}

func (d pdfDoc) text(x, y, w, h float64, s string, size int, color string, em diagram.Emphasis, align string) {
	if s == "" {
		return
	}
	style := ""
	if em.Bold() {
		style += "B"
	}
	if em.Italic() {
		style += "I"
	}
	d.SetFont(d.font, style, float64(size)/100)
	d.SetTextColor(rgb(color))
	d.SetXY(x, y)
	d.CellFormat(w, h, d.tr(s), "", 0, align, false, 0, "")
}

func (d pdfDoc) shape(s diagram.PlacedShape) {
	x, y, w, h := d.box(s.Rect)
	d.fill(s.Fill)
	d.draw(s.Border)
	d.SetLineWidth(1)

	switch s.Kind {
	case diagram.KindDecision:
		d.Polygon([]fpdf.PointType{{X: x + w/2, Y: y}, {X: x + w, Y: y + h/2}, {X: x + w/2, Y: y + h}, {X: x, Y: y + h/2}}, "FD")
	case diagram.KindTerminator:
		d.RoundedRect(x, y, w, h, h/2, "1234", "FD")
	case diagram.KindData:
		sk := w / 8
		d.Polygon([]fpdf.PointType{{X: x + sk, Y: y}, {X: x + w, Y: y}, {X: x + w - sk, Y: y + h}, {X: x, Y: y + h}}, "FD")
	case diagram.KindDatabase:
		ry := h / 8
		d.Rect(x, y+ry, w, h-2*ry, "F")
		d.Ellipse(x+w/2, y+h-ry, w/2, ry, 0, "FD")
		d.Rect(x, y+ry, w, h-2*ry, "F")
		d.Line(x, y+ry, x, y+h-ry)
		d.Line(x+w, y+ry, x+w, y+h-ry)
		d.Ellipse(x+w/2, y+ry, w/2, ry, 0, "FD")
	case diagram.KindDocument:
		a := h / 10
		d.Polygon([]fpdf.PointType{
			{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h - a},
			{X: x + w*3/4, Y: y + h - 2*a}, {X: x + w/2, Y: y + h - a},
			{X: x + w/4, Y: y + h}, {X: x, Y: y + h - a},
		}, "FD")
	default:
		if s.Preset == "rect" {
			d.Rect(x, y, w, h, "FD")
		} else {
			d.RoundedRect(x, y, w, h, math.Min(w, h)/10, "1234", "FD")
		}
	}

	if s.SecondaryText == "" {
		d.text(x, y, w, h, s.Text, s.FontSize, s.TextColor, s.Emphasis, "CM")
		return
	}
	primary := h * 3 / 5
	d.text(x, y, w, primary, s.Text, s.FontSize, s.TextColor, s.Emphasis, "CM")
	d.text(x, y+primary, w, h-primary, s.SecondaryText, s.SecondaryFontSize, s.TextColor, 0, "CM")
}

func (d pdfDoc) connector(c diagram.PlacedConnector) error {
	segs, err := connectorSegments(c, connector.ModeChamfer)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return nil
	}
	d.draw(c.Color)
	d.fill(c.Color)
	d.SetLineWidth(pt(c.Width))
	d.SetLineCapStyle("round")
	for _, s := range segs {
		a, b := d.point(s.From), d.point(s.To)
		d.Line(a.X, a.Y, b.X, b.Y)
	}

	lw := pt(c.Width)
	if c.Tail == diagram.ArrowTriangle {
		last := segs[len(segs)-1]
		d.arrow(d.point(last.From), d.point(last.To), lw)
	}
	if c.Head == diagram.ArrowTriangle {
		first := segs[0]
		d.arrow(d.point(first.To), d.point(first.From), lw)
	}
	return nil
}

// arrow draws a filled triangle with its tip at tip, pointing away from
// from.
func (d pdfDoc) arrow(from, tip fpdf.PointType, lineWidth float64) {
	dx, dy := tip.X-from.X, tip.Y-from.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		return
	}
	ux, uy := dx/n, dy/n
	size := math.Max(4, 4*lineWidth)
	bx, by := tip.X-ux*size, tip.Y-uy*size
	px, py := -uy*size/2, ux*size/2
	d.Polygon([]fpdf.PointType{{X: tip.X, Y: tip.Y}, {X: bx + px, Y: by + py}, {X: bx - px, Y: by - py}}, "F")
}
