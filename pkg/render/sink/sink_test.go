package sink

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/slidekit/pkg/core/layout"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
	"github.com/matzehuels/slidekit/pkg/qc"
)

func laidOut(t *testing.T, s diagram.Spec) *diagram.LayoutResult {
	t.Helper()
	d, err := diagram.Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	l, err := layout.Run(d, diagram.NewIDAllocator())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return l
}

func flowSpec() diagram.Spec {
	return diagram.Spec{
		Title: "Order handling",
		Shapes: []diagram.ShapeSpec{
			{ID: "recv", Text: "Receive"},
			{ID: "check", Text: "Valid?", Preset: "diamond"},
			{ID: "store", Text: "Orders", Preset: "can"},
			{ID: "ship", Text: "Ship", Preset: "flowChartTerminator"},
		},
		Connections: []diagram.ConnectionSpec{
			{From: "recv", To: "check"},
			{From: "check", To: "store", Label: "yes"},
			{From: "store", To: "ship"},
		},
	}
}

func hierarchySpec() diagram.Spec {
	return diagram.Spec{
		Title:  "org",
		Layout: "hierarchy",
		Shapes: []diagram.ShapeSpec{
			{ID: "ceo", Text: "chief"},
			{ID: "cto", Text: "tech", Group: "1"},
			{ID: "cfo", Text: "money", Group: "1"},
		},
		Connections: []diagram.ConnectionSpec{
			{From: "ceo", To: "cto"},
			{From: "ceo", To: "cfo"},
		},
	}
}

func swimLaneSpec() diagram.Spec {
	return diagram.Spec{
		Title:  "Platform",
		Layout: "swimlane",
		Shapes: []diagram.ShapeSpec{
			{ID: "web", Text: "Web", Group: "Frontend"},
			{ID: "api", Text: "API", SecondaryText: "REST", Group: "Backend"},
			{ID: "db", Text: "Postgres", Preset: "can", Group: "Data"},
		},
		Connections: []diagram.ConnectionSpec{
			{From: "web", To: "api", Label: "https"},
			{From: "api", To: "db"},
		},
	}
}

// gateClean runs the render gate and fails on any finding.
func gateClean(t *testing.T, l *diagram.LayoutResult, rep qc.RenderReport) {
	t.Helper()
	r, err := qc.CheckRender(l, rep)
	if err != nil {
		t.Fatalf("CheckRender: %v", err)
	}
	if len(r.Warnings) > 0 {
		t.Errorf("CheckRender warnings: %v", r.Warnings)
	}
	if got, want := len(rep.Elements), len(l.Elements()); got != want {
		t.Errorf("report has %d elements, want %d", got, want)
	}
}

func TestRenderSVG_PassesRenderGate(t *testing.T) {
	for name, spec := range map[string]diagram.Spec{
		"flow":      flowSpec(),
		"hierarchy": hierarchySpec(),
		"swimlane":  swimLaneSpec(),
	} {
		t.Run(name, func(t *testing.T) {
			l := laidOut(t, spec)
			svg, err := RenderSVG(l)
			if err != nil {
				t.Fatalf("RenderSVG: %v", err)
			}
			rep, err := InspectSVG(svg)
			if err != nil {
				t.Fatalf("InspectSVG: %v", err)
			}
			if rep.Format != "svg" {
				t.Errorf("Format = %q", rep.Format)
			}
			gateClean(t, l, rep)
		})
	}
}

func TestRenderSVG_Deterministic(t *testing.T) {
	l := laidOut(t, swimLaneSpec())
	a, err := RenderSVG(l)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RenderSVG(laidOut(t, swimLaneSpec()))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical layouts rendered to different SVG")
	}
}

func TestRenderSVG_ConnectorReferences(t *testing.T) {
	l := laidOut(t, flowSpec())
	svg, err := RenderSVG(l)
	if err != nil {
		t.Fatal(err)
	}
	c := l.Connectors[0]
	want := `data-start="` + Ref(c.SourceID) + `" data-end="` + Ref(c.TargetID) + `"`
	if !strings.Contains(string(svg), want) {
		t.Errorf("SVG missing connector reference %s", want)
	}
	if !strings.Contains(string(svg), `marker-end="url(#arrow-`) {
		t.Error("connector tail arrow not drawn")
	}
}

func TestRenderSVG_ArcsAndChamfers(t *testing.T) {
	l := laidOut(t, hierarchySpec())
	if l.Connectors[0].Routing != diagram.RoutingElbow {
		t.Fatalf("expected an elbow connector, got %s", l.Connectors[0].Routing)
	}

	arcs, err := RenderSVG(l)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(arcs), "A120000,120000 0 0") {
		t.Error("arc mode should draw rounded corners with SVG arcs")
	}

	chamfered, err := RenderSVG(l, WithChamfers())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(chamfered), "A120000,120000") {
		t.Error("chamfer mode should not draw arcs")
	}
}

func TestRenderSVG_EscapesText(t *testing.T) {
	l := laidOut(t, diagram.Spec{Shapes: []diagram.ShapeSpec{{ID: "rd", Text: "R&D <core>"}}})
	svg, err := RenderSVG(l)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "R&amp;D &lt;core&gt;") {
		t.Error("shape text not escaped")
	}
	if _, err := InspectSVG(svg); err != nil {
		t.Errorf("escaped SVG should parse: %v", err)
	}
}

func TestRenderSVG_PixelWidth(t *testing.T) {
	svg, err := RenderSVG(laidOut(t, flowSpec()), WithPixelWidth(1920))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), `width="1920" height="1080"`) {
		t.Errorf("unexpected root size:\n%s", strings.SplitN(string(svg), "\n", 2)[0])
	}
}

func TestInspectSVG_Malformed(t *testing.T) {
	if _, err := InspectSVG([]byte(`<svg><g id="el-2" data-kind="shape">`)); err == nil {
		t.Error("expected error for truncated SVG")
	}
}

func TestInspectSVG_DetectsReordering(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg">
<g id="el-2" data-kind="background"></g>
<g id="el-4" data-kind="shape"></g>
<g id="el-5" data-kind="connector" data-start="el-4" data-end="el-9"></g>
<g><g id="el-4" data-kind="shape"></g></g>
</svg>`
	rep, err := InspectSVG([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Elements) != 4 {
		t.Fatalf("got %d elements, want 4", len(rep.Elements))
	}
	l := laidOut(t, flowSpec())
	r, err := qc.CheckRender(l, rep)
	if !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Errorf("CheckRender error = %v, want DUPLICATE_ID", err)
	}
	if len(r.Warnings) == 0 {
		t.Error("expected order and reference warnings")
	}
}

func TestRenderPDF(t *testing.T) {
	l := laidOut(t, swimLaneSpec())
	data, rep, err := RenderPDF(l)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
	gateClean(t, l, rep)
}

func TestRenderPDF_Deterministic(t *testing.T) {
	a, _, err := RenderPDF(laidOut(t, flowSpec()))
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := RenderPDF(laidOut(t, flowSpec()))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical layouts rendered to different PDF")
	}
}

func TestRenderXLSX(t *testing.T) {
	l := laidOut(t, flowSpec())
	data, err := RenderXLSX(l)
	if err != nil {
		t.Fatalf("RenderXLSX: %v", err)
	}
	rep, err := InspectXLSX(data)
	if err != nil {
		t.Fatalf("InspectXLSX: %v", err)
	}
	gateClean(t, l, rep)

	var connectors int
	for _, e := range rep.Elements {
		if e.Kind == diagram.ElementConnector {
			connectors++
			if e.Start == "" || e.End == "" {
				t.Errorf("connector %s lost its endpoints", e.ID)
			}
		}
	}
	if connectors != len(l.Connectors) {
		t.Errorf("read back %d connectors, want %d", connectors, len(l.Connectors))
	}
}

func TestRenderXLSX_QCSheet(t *testing.T) {
	l := laidOut(t, flowSpec())
	data, err := RenderXLSX(l, WithQCReports(qc.Report{Gate: qc.GateLayout, Warnings: []string{"too tight"}}))
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if !slices.Contains(f.GetSheetList(), SheetQC) {
		t.Fatalf("sheets = %v, want a %s sheet", f.GetSheetList(), SheetQC)
	}
	rows, err := f.GetRows(SheetQC)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "layout" || rows[1][2] != "too tight" {
		t.Errorf("QC rows = %v", rows)
	}
}

func TestInspectXLSX_NotAWorkbook(t *testing.T) {
	if _, err := InspectXLSX([]byte("plain text")); err == nil {
		t.Error("expected error")
	}
}

func TestRenderJSON(t *testing.T) {
	l := laidOut(t, hierarchySpec())
	data, rep, err := RenderJSON(l)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	gateClean(t, l, rep)
	if !bytes.Contains(data, []byte(`"strategy": "hierarchy"`)) {
		t.Error("layout missing from JSON output")
	}
}

func TestRender_Dispatch(t *testing.T) {
	l := laidOut(t, flowSpec())
	caps := Capabilities{Formats: Formats()}
	for _, f := range Formats() {
		art, err := Render(context.Background(), l, f, caps, Options{})
		if err != nil {
			t.Fatalf("Render(%s): %v", f, err)
		}
		if art.Format != f || len(art.Data) == 0 {
			t.Errorf("Render(%s) returned %s with %d bytes", f, art.Format, len(art.Data))
		}
		gateClean(t, l, art.Report)
	}
}

func TestRender_Unsupported(t *testing.T) {
	l := laidOut(t, flowSpec())
	_, err := Render(context.Background(), l, FormatPDF, Capabilities{Formats: []Format{FormatSVG}}, Options{})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("svg, PDF,svg,,json")
	if err != nil {
		t.Fatal(err)
	}
	want := []Format{FormatSVG, FormatPDF, FormatJSON}
	if len(got) != len(want) {
		t.Fatalf("ParseFormats = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseFormats[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := ParseFormats("svg,png"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("png: err = %v, want INVALID_FORMAT", err)
	}
	if _, err := ParseFormats(" , "); err == nil {
		t.Error("empty list should fail")
	}
}

func TestContentType(t *testing.T) {
	for f, want := range map[Format]string{
		FormatSVG:  "image/svg+xml",
		FormatPDF:  "application/pdf",
		FormatJSON: "application/json",
		"png":      "application/octet-stream",
	} {
		if got := f.ContentType(); got != want {
			t.Errorf("%s.ContentType() = %q, want %q", f, got, want)
		}
	}
}
