// Package nodelink renders the logical structure of a diagram as a Graphviz
// node-link graph.
//
// # Overview
//
// The slide layouts in pkg/core/layout place shapes on fixed rows and lanes.
// This package ignores that geometry and lets Graphviz arrange the same
// shapes and connections freely, which makes it a quick way to eyeball the
// topology of an input before committing to a strategy.
//
// # Usage
//
//	dot := nodelink.ToDOT(d, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The generated DOT mirrors the diagram's strategy: flows run left to
// right, hierarchies top to bottom, and swim lanes become clusters. Node
// shapes follow the shape kind and fills come from the diagram's palette.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. [Available] reports whether that engine can start.
package nodelink
