package sink

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/qc"
)

// Workbook sheet names.
const (
	SheetElements   = "Elements"
	SheetShapes     = "Shapes"
	SheetConnectors = "Connectors"
	SheetLabels     = "Labels"
	SheetQC         = "QC"
)

// XLSXOption configures workbook rendering via [RenderXLSX].
type XLSXOption func(*xlsxRenderer)

type xlsxRenderer struct {
	reports []qc.Report
}

// WithQCReports adds a QC sheet listing the findings of earlier gates.
func WithQCReports(reports ...qc.Report) XLSXOption {
	return func(r *xlsxRenderer) { r.reports = append(r.reports, reports...) }
}

// RenderXLSX writes l as a placement workbook. The Elements sheet lists
// every element in paint order and is what [InspectXLSX] reads back; the
// other sheets carry the geometry and styling of each element kind.
func RenderXLSX(l *diagram.LayoutResult, opts ...XLSXOption) ([]byte, error) {
	var r xlsxRenderer
	for _, opt := range opts {
		opt(&r)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetElements); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetShapes, SheetConnectors, SheetLabels} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	w := sheetWriter{f: f}
	w.row(SheetElements, "ID", "Kind", "Z", "Start", "End")
	for _, e := range l.Elements() {
		start, end := "", ""
		if e.Kind == diagram.ElementConnector {
			start, end = Ref(e.Start), Ref(e.End)
		}
		w.row(SheetElements, Ref(e.ID), string(e.Kind), e.Z, start, end)
	}

	w.row(SheetShapes, "ID", "Key", "Text", "Secondary", "Kind", "Preset", "X", "Y", "W", "H", "Fill", "Border", "Text Color", "Font")
	for _, s := range l.Shapes {
		n := w.row(SheetShapes, Ref(s.ID), s.Key, s.Text, s.SecondaryText, s.Kind.String(), s.Preset,
			s.Rect.X, s.Rect.Y, s.Rect.W, s.Rect.H, s.Fill, s.Border, s.TextColor, s.FontSize)
		w.swatch(SheetShapes, 11, n, s.Fill)
	}

	w.row(SheetConnectors, "ID", "Start", "Start Anchor", "End", "End Anchor", "X", "Y", "W", "H", "Flip H", "Flip V", "Routing", "Corner", "Color")
	for _, c := range l.Connectors {
		n := w.row(SheetConnectors, Ref(c.ID), Ref(c.SourceID), c.SourceAnchor.String(), Ref(c.TargetID), c.TargetAnchor.String(),
			c.Rect.X, c.Rect.Y, c.Rect.W, c.Rect.H, c.FlipH, c.FlipV, c.Routing, c.Corner, c.Color)
		w.swatch(SheetConnectors, 14, n, c.Color)
	}

	w.row(SheetLabels, "ID", "Kind", "Text", "X", "Y", "W", "H", "Font", "Align")
	if l.HasTitle() {
		t := l.Title
		w.row(SheetLabels, Ref(t.ID), string(diagram.ElementTitle), t.Text, t.Rect.X, t.Rect.Y, t.Rect.W, t.Rect.H, t.FontSize, t.Align)
	}
	for _, lb := range l.Labels {
		w.row(SheetLabels, Ref(lb.ID), string(diagram.ElementLabel), lb.Text, lb.Rect.X, lb.Rect.Y, lb.Rect.W, lb.Rect.H, lb.FontSize, lb.Align)
	}

	if len(r.reports) > 0 {
		if _, err := f.NewSheet(SheetQC); err != nil {
			return nil, err
		}
		w.row(SheetQC, "Gate", "Severity", "Message")
		for _, rep := range r.reports {
			if rep.Fatal != "" {
				w.row(SheetQC, rep.Gate.String(), "fatal", rep.Fatal)
			}
			for _, msg := range rep.Warnings {
				w.row(SheetQC, rep.Gate.String(), "warning", msg)
			}
		}
	}
	if w.err != nil {
		return nil, w.err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter appends rows and keeps the first error.
type sheetWriter struct {
	f      *excelize.File
	rows   map[string]int
	styles map[string]int
	err    error
}

// row appends values to sheet and returns the 1-based row number.
func (w *sheetWriter) row(sheet string, values ...any) int {
	if w.rows == nil {
		w.rows = make(map[string]int)
	}
	w.rows[sheet]++
	n := w.rows[sheet]
	if w.err != nil {
		return n
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return n
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
	return n
}

// swatch fills one cell with a hex color.
func (w *sheetWriter) swatch(sheet string, col, row int, hex string) {
	if w.err != nil || hex == "" {
		return
	}
	if w.styles == nil {
		w.styles = make(map[string]int)
	}
	id, ok := w.styles[hex]
	if !ok {
		var err error
		id, err = w.f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{"#" + hex}, Pattern: 1}})
		if err != nil {
			w.err = err
			return
		}
		w.styles[hex] = id
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, cell, cell, id)
}

// InspectXLSX reads the Elements sheet of a workbook written by
// [RenderXLSX].
func InspectXLSX(data []byte) (qc.RenderReport, error) {
	rep := qc.RenderReport{Format: string(FormatXLSX)}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return rep, fmt.Errorf("inspect xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetElements)
	if err != nil {
		return rep, fmt.Errorf("inspect xlsx: %w", err)
	}
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		e := qc.RenderedElement{ID: row[0], Kind: diagram.ElementKind(row[1])}
		if len(row) > 3 {
			e.Start = row[3]
		}
		if len(row) > 4 {
			e.End = row[4]
		}
		rep.Elements = append(rep.Elements, e)
	}
	return rep, nil
}
