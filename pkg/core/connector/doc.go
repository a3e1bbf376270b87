// Package connector computes connector geometry between placed shapes.
//
// Two independent tools live here:
//
//   - [BBox] turns a pair of shape rectangles and a cardinal [Direction]
//     into the stored bounding box, flip flags and anchor indices of an
//     elbow connector. Slide formats store a connector as a box plus
//     flipH/flipV; the flags say which corner of the box is the start of
//     the path, so the sign convention here is load-bearing.
//   - [Route] smooths the corners of an axis-aligned polyline with
//     quarter-circle arcs or diagonal chamfers, for renderers that draw
//     free paths instead of native connectors. [DefaultRoute] proposes such
//     a polyline for two points.
//
// Both are pure functions over [geom] values.
package connector
