// Package diagram defines the logical diagram description that layout
// strategies consume and the positioned [LayoutResult] they produce.
//
// # Input
//
// A [Spec] is the wire form, read from JSON or TOML:
//
//	{
//	  "title": "Request path",
//	  "layout": "flow",
//	  "palette": "corporate-blue",
//	  "shapes": [
//	    {"id": "client", "text": "Client"},
//	    {"id": "check", "text": "Cached?", "preset": "diamond"}
//	  ],
//	  "connections": [{"from": "client", "to": "check"}]
//	}
//
// [Build] resolves a Spec into a [Diagram]: preset names become a closed
// [ShapeKind], the layout name becomes a [Strategy] and the palette name is
// checked against the built-in set. Unknown layouts and palettes fail here.
// Duplicate ids and dangling connection ends do not; the definition gate
// reports those so that every problem in the input is listed at once.
//
// # Output
//
// A [LayoutResult] holds every positioned element of one slide in EMU, each
// with a numeric id from an [IDAllocator] and a z-layer:
//
//	LayerBackground < LayerLane < LayerTitle < LayerConnector < LayerShape < LayerLabel
//
// Renderers paint in that order. Use [MarshalLayout] and [WriteLayoutFile]
// to persist a result.
package diagram
