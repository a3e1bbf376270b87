package diagram

import (
	"cmp"
	"slices"

	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/core/palette"
)

// =============================================================================
// Paint Order
// =============================================================================

// Z-layers, painted low to high.
const (
	LayerBackground = iota
	LayerLane
	LayerTitle
	LayerConnector
	LayerShape
	LayerLabel
)

// Emphasis is a set of text emphasis flags.
type Emphasis uint8

const (
	EmphasisBold Emphasis = 1 << iota
	EmphasisItalic
)

func (e Emphasis) Bold() bool   { return e&EmphasisBold != 0 }
func (e Emphasis) Italic() bool { return e&EmphasisItalic != 0 }

// Text alignment of labels.
const (
	AlignCenter = "center"
	AlignLeft   = "left"
)

// Connector styling values.
const (
	RoutingElbow    = "elbow"
	RoutingStraight = "straight"

	ArrowNone     = "none"
	ArrowTriangle = "triangle"

	CornerSharp   = "sharp"
	CornerArc     = "arc"
	CornerChamfer = "chamfer"
)

// =============================================================================
// Placed Elements
// =============================================================================

// PlacedShape is a positioned shape, derived 1:1 from a [Shape].
type PlacedShape struct {
	ID                int       `json:"id"`
	Key               string    `json:"key"`
	Text              string    `json:"text"`
	SecondaryText     string    `json:"secondary_text,omitempty"`
	Preset            string    `json:"preset"`
	Kind              ShapeKind `json:"kind"`
	Rect              geom.Rect `json:"rect"`
	Fill              string    `json:"fill"`
	Border            string    `json:"border"`
	TextColor         string    `json:"text_color"`
	FontSize          int       `json:"font_size"`
	SecondaryFontSize int       `json:"secondary_font_size,omitempty"`
	Emphasis          Emphasis  `json:"emphasis,omitempty"`
	Z                 int       `json:"z"`
}

// PlacedConnector is a positioned shape-to-shape connector. SourceID and
// TargetID are numeric shape ids; the anchors use the 0..3 numbering of
// [geom.Anchor]. FlipH and FlipV tell which corner of Rect the path starts
// at.
type PlacedConnector struct {
	ID           int          `json:"id"`
	SourceID     int          `json:"source_id"`
	SourceAnchor geom.Anchor  `json:"source_anchor"`
	TargetID     int          `json:"target_id"`
	TargetAnchor geom.Anchor  `json:"target_anchor"`
	Rect         geom.Rect    `json:"rect"`
	FlipH        bool         `json:"flip_h,omitempty"`
	FlipV        bool         `json:"flip_v,omitempty"`
	Color        string       `json:"color"`
	Width        int64        `json:"width"`
	Routing      string       `json:"routing"`
	Head         string       `json:"head"`
	Tail         string       `json:"tail"`
	Corner       string       `json:"corner"`
	CornerRadius int64        `json:"corner_radius,omitempty"`
	Waypoints    []geom.Point `json:"waypoints,omitempty"`
	Z            int          `json:"z"`
}

// PlacedLabel is floating text: the slide title, a lane name or a
// connection label.
type PlacedLabel struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Rect      geom.Rect `json:"rect"`
	TextColor string    `json:"text_color"`
	Fill      string    `json:"fill,omitempty"`
	FontSize  int       `json:"font_size"`
	Align     string    `json:"align"`
	Emphasis  Emphasis  `json:"emphasis,omitempty"`
	Z         int       `json:"z"`
}

// LaneBackground is the band behind one swim lane.
type LaneBackground struct {
	ID     int       `json:"id"`
	Name   string    `json:"name"`
	Rect   geom.Rect `json:"rect"`
	Fill   string    `json:"fill"`
	Border string    `json:"border"`
	Z      int       `json:"z"`
}

// Background is the full-slide gradient.
type Background struct {
	ID     int       `json:"id"`
	Rect   geom.Rect `json:"rect"`
	Top    string    `json:"top"`
	Bottom string    `json:"bottom"`
	Z      int       `json:"z"`
}

// =============================================================================
// LayoutResult
// =============================================================================

// LayoutResult is every positioned element of one slide, produced by a
// single layout pass.
type LayoutResult struct {
	Strategy   Strategy          `json:"strategy"`
	Palette    palette.Name      `json:"palette"`
	Canvas     geom.Rect         `json:"canvas"`
	Background Background        `json:"background"`
	Title      PlacedLabel       `json:"title"`
	TitleStyle TitleStyle        `json:"title_style"`
	TitleRect  geom.Rect         `json:"title_rect"`
	Shapes     []PlacedShape     `json:"shapes"`
	Connectors []PlacedConnector `json:"connectors"`
	Labels     []PlacedLabel     `json:"labels,omitempty"`
	Lanes      []LaneBackground  `json:"lanes,omitempty"`
}

// HasTitle reports whether the slide has a title element.
func (l *LayoutResult) HasTitle() bool { return l.Title.Text != "" }

// ElementKind tags a rendered element.
type ElementKind string

const (
	ElementBackground ElementKind = "background"
	ElementLane       ElementKind = "lane"
	ElementTitle      ElementKind = "title"
	ElementConnector  ElementKind = "connector"
	ElementShape      ElementKind = "shape"
	ElementLabel      ElementKind = "label"
)

// Element is the structural view of one placed element: what a renderer is
// expected to emit for it.
type Element struct {
	ID    int         `json:"id"`
	Kind  ElementKind `json:"kind"`
	Z     int         `json:"z"`
	Start int         `json:"start,omitempty"` // connectors only
	End   int         `json:"end,omitempty"`   // connectors only
}

// Elements lists every element in paint order. Ties within a layer keep
// placement order.
func (l *LayoutResult) Elements() []Element {
	out := make([]Element, 0, 2+len(l.Lanes)+len(l.Connectors)+len(l.Shapes)+len(l.Labels))
	out = append(out, Element{ID: l.Background.ID, Kind: ElementBackground, Z: l.Background.Z})
	for _, ln := range l.Lanes {
		out = append(out, Element{ID: ln.ID, Kind: ElementLane, Z: ln.Z})
	}
	if l.HasTitle() {
		out = append(out, Element{ID: l.Title.ID, Kind: ElementTitle, Z: l.Title.Z})
	}
	for _, c := range l.Connectors {
		out = append(out, Element{ID: c.ID, Kind: ElementConnector, Z: c.Z, Start: c.SourceID, End: c.TargetID})
	}
	for _, s := range l.Shapes {
		out = append(out, Element{ID: s.ID, Kind: ElementShape, Z: s.Z})
	}
	for _, lb := range l.Labels {
		out = append(out, Element{ID: lb.ID, Kind: ElementLabel, Z: lb.Z})
	}
	slices.SortStableFunc(out, func(a, b Element) int { return cmp.Compare(a.Z, b.Z) })
	return out
}

// ShapeIndex maps numeric shape ids to their position in l.Shapes.
func (l *LayoutResult) ShapeIndex() map[int]int {
	idx := make(map[int]int, len(l.Shapes))
	for i, s := range l.Shapes {
		idx[s.ID] = i
	}
	return idx
}

// ShapeByKey returns the placed shape for a logical id.
func (l *LayoutResult) ShapeByKey(key string) (PlacedShape, bool) {
	for _, s := range l.Shapes {
		if s.Key == key {
			return s, true
		}
	}
	return PlacedShape{}, false
}
