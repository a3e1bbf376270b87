// Package render groups the output side of slidekit.
//
//   - [sink] writes a placed layout as SVG, PDF, XLSX or JSON and reads
//     each output back into the structural report the render gate checks
//   - [nodelink] converts the logical diagram to Graphviz DOT for a quick
//     preview that ignores slide placement
package render
