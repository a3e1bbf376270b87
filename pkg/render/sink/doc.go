// Package sink provides reference renderers for slide layouts.
//
// # Overview
//
// A "sink" turns a computed [diagram.LayoutResult] into a concrete output
// format and reports, structurally, what it actually wrote. That report is
// what the render gate ([qc.CheckRender]) checks: element count, paint order
// and connector endpoint references.
//
//   - SVG: vector output with arc-rounded connectors
//   - PDF: print output via fpdf, connectors drawn with chamfered corners
//   - XLSX: a placement workbook, one row per element
//   - JSON: the layout itself plus its element list
//
// # Element Identifiers
//
// Every element is emitted under the identifier "el-N", where N is its
// numeric layout id. Connectors carry the identifiers of the shapes they
// join, so a consumer can resolve them without the layout.
//
// # Reports
//
// SVG and XLSX reports are parsed back from the produced bytes ([InspectSVG],
// [InspectXLSX]). The PDF sink records elements as it draws them, since a
// PDF content stream has no element structure to read back.
//
// # Capabilities
//
// [Probe] checks once which optional engines are available. The result is
// read-only and is handed to [Render]:
//
//	caps := sink.Probe(ctx)
//	art, err := sink.Render(ctx, l, sink.FormatSVG, caps)
//
// [diagram.LayoutResult]: github.com/matzehuels/slidekit/pkg/diagram.LayoutResult
// [qc.CheckRender]: github.com/matzehuels/slidekit/pkg/qc.CheckRender
package sink
