package sink

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/slidekit/pkg/core/connector"
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
	"github.com/matzehuels/slidekit/pkg/qc"
	"github.com/matzehuels/slidekit/pkg/render/nodelink"
)

// Format names an output format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// Formats lists every format this package can write.
func Formats() []Format {
	return []Format{FormatSVG, FormatPDF, FormatXLSX, FormatJSON}
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Formats(), f) {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q (valid: svg, pdf, xlsx, json)", s)
}

// ParseFormats resolves a comma-separated format list, dropping repeats.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no output format given")
	}
	return out, nil
}

// Capabilities is the read-only result of [Probe].
type Capabilities struct {
	Formats  []Format `json:"formats"`
	Graphviz bool     `json:"graphviz"`
}

// Supports reports whether f can be rendered.
func (c Capabilities) Supports(f Format) bool { return slices.Contains(c.Formats, f) }

// Probe detects which renderers are usable. Call it once at start-up and
// share the result.
func Probe(ctx context.Context) Capabilities {
	return Capabilities{
		Formats:  Formats(),
		Graphviz: nodelink.Available(ctx),
	}
}

// Artifact is one rendered output and the structural report of its content.
type Artifact struct {
	Format Format          `json:"format"`
	Data   []byte          `json:"-"`
	Report qc.RenderReport `json:"report"`
}

// Options carries the per-format settings [Render] passes on.
type Options struct {
	// Chamfers draws SVG corners as 45° cuts.
	Chamfers bool `json:"chamfers,omitempty"`
	// PixelWidth is the SVG width attribute.
	PixelWidth int `json:"pixel_width,omitempty"`
	// Reports are earlier gate findings to include in the workbook.
	Reports []qc.Report `json:"-"`
}

// Render writes l in format f.
func Render(ctx context.Context, l *diagram.LayoutResult, f Format, caps Capabilities, o Options) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	if !caps.Supports(f) {
		return Artifact{}, errors.New(errors.ErrCodeUnsupported, "format %s is not available", f)
	}

	var (
		data []byte
		rep  qc.RenderReport
		err  error
	)
	switch f {
	case FormatSVG:
		var svgOpts []SVGOption
		if o.Chamfers {
			svgOpts = append(svgOpts, WithChamfers())
		}
		if o.PixelWidth > 0 {
			svgOpts = append(svgOpts, WithPixelWidth(o.PixelWidth))
		}
		data, err = RenderSVG(l, svgOpts...)
		if err == nil {
			rep, err = InspectSVG(data)
		}
	case FormatPDF:
		data, rep, err = RenderPDF(l)
	case FormatXLSX:
		data, err = RenderXLSX(l, WithQCReports(o.Reports...))
		if err == nil {
			rep, err = InspectXLSX(data)
		}
	case FormatJSON:
		data, rep, err = RenderJSON(l)
	}
	if err != nil {
		return Artifact{}, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", f)
	}
	return Artifact{Format: f, Data: data, Report: rep}, nil
}

// Ref is the rendered identifier of the element with numeric id.
func Ref(id int) string { return fmt.Sprintf("el-%d", id) }

// connectorPoints returns the waypoints of c, falling back to the
// endpoints implied by its box and flips.
func connectorPoints(c diagram.PlacedConnector) []geom.Point {
	if len(c.Waypoints) >= 2 {
		return c.Waypoints
	}
	start, end := connector.Endpoints(c.Rect, c.FlipH, c.FlipV)
	return []geom.Point{start, end}
}

// connectorSegments routes c with the given corner mode. Sharp corners and
// straight connectors become plain lines.
func connectorSegments(c diagram.PlacedConnector, mode connector.Mode) ([]connector.Segment, error) {
	radius := c.CornerRadius
	if c.Corner == diagram.CornerSharp {
		radius = 0
	}
	return connector.Route(connectorPoints(c), radius, mode)
}

// index groups the placed elements by numeric id.
type index struct {
	shapes     map[int]diagram.PlacedShape
	connectors map[int]diagram.PlacedConnector
	labels     map[int]diagram.PlacedLabel
	lanes      map[int]diagram.LaneBackground
}

func newIndex(l *diagram.LayoutResult) index {
	ix := index{
		shapes:     make(map[int]diagram.PlacedShape, len(l.Shapes)),
		connectors: make(map[int]diagram.PlacedConnector, len(l.Connectors)),
		labels:     make(map[int]diagram.PlacedLabel, len(l.Labels)),
		lanes:      make(map[int]diagram.LaneBackground, len(l.Lanes)),
	}
	for _, s := range l.Shapes {
		ix.shapes[s.ID] = s
	}
	for _, c := range l.Connectors {
		ix.connectors[c.ID] = c
	}
	for _, lb := range l.Labels {
		ix.labels[lb.ID] = lb
	}
	for _, ln := range l.Lanes {
		ix.lanes[ln.ID] = ln
	}
	return ix
}

func canvasOf(l *diagram.LayoutResult) geom.Rect {
	if l.Canvas.Empty() {
		return geom.Canvas()
	}
	return l.Canvas
}
