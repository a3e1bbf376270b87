package diagram

import (
	"fmt"

	"github.com/matzehuels/slidekit/pkg/core/palette"
	"github.com/matzehuels/slidekit/pkg/errors"
)

// Spec is the wire form of a diagram description.
type Spec struct {
	Title       string           `json:"title,omitempty" toml:"title"`
	Layout      string           `json:"layout,omitempty" toml:"layout"`
	Palette     string           `json:"palette,omitempty" toml:"palette"`
	TitleStyle  string           `json:"title_style,omitempty" toml:"title_style"`
	Shapes      []ShapeSpec      `json:"shapes" toml:"shapes"`
	Connections []ConnectionSpec `json:"connections,omitempty" toml:"connections"`
}

// ShapeSpec is one node of a [Spec].
type ShapeSpec struct {
	ID            string `json:"id" toml:"id"`
	Text          string `json:"text" toml:"text"`
	SecondaryText string `json:"secondary_text,omitempty" toml:"secondary_text"`
	Preset        string `json:"preset,omitempty" toml:"preset"`
	Style         string `json:"style,omitempty" toml:"style"`
	Group         string `json:"group,omitempty" toml:"group"`
}

// ConnectionSpec is one edge of a [Spec].
type ConnectionSpec struct {
	From  string `json:"from" toml:"from"`
	To    string `json:"to" toml:"to"`
	Label string `json:"label,omitempty" toml:"label"`
	Color string `json:"color,omitempty" toml:"color"`
}

// Shape is a resolved logical node.
type Shape struct {
	ID            string
	Text          string
	SecondaryText string
	Preset        string
	Kind          ShapeKind
	Style         palette.StyleKey
	StyleName     string // as written in the input, for diagnostics
	Group         string
}

// Connection is a resolved logical edge.
type Connection struct {
	From  string
	To    string
	Label string
	Color string
}

// Diagram is the validated-at-construction input to a layout strategy.
// It is not modified after [Build] returns.
type Diagram struct {
	Title       string
	Strategy    Strategy
	Palette     palette.Name
	TitleStyle  TitleStyle
	Shapes      []Shape
	Connections []Connection
}

// Build resolves a wire [Spec] into a [Diagram].
//
// It fails on an unknown layout, palette or title style, on an empty or
// malformed shape id, and on a malformed color override. Duplicate ids and
// dangling references are left for the definition gate.
func Build(s Spec) (*Diagram, error) {
	st, err := ParseStrategy(s.Layout)
	if err != nil {
		return nil, err
	}
	pal, err := palette.ParseName(s.Palette)
	if err != nil {
		return nil, err
	}
	ts, err := ParseTitleStyle(s.TitleStyle, st)
	if err != nil {
		return nil, err
	}

	d := &Diagram{
		Title:       s.Title,
		Strategy:    st,
		Palette:     pal,
		TitleStyle:  ts,
		Shapes:      make([]Shape, 0, len(s.Shapes)),
		Connections: make([]Connection, 0, len(s.Connections)),
	}

	for i, sh := range s.Shapes {
		if err := errors.ValidateShapeID(sh.ID); err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		kind := KindOf(sh.Preset)
		preset := sh.Preset
		if preset == "" {
			preset = kind.DefaultPreset()
		}
		d.Shapes = append(d.Shapes, Shape{
			ID:            sh.ID,
			Text:          sh.Text,
			SecondaryText: sh.SecondaryText,
			Preset:        preset,
			Kind:          kind,
			Style:         palette.ParseStyle(sh.Style),
			StyleName:     sh.Style,
			Group:         sh.Group,
		})
	}

	for i, c := range s.Connections {
		if err := errors.ValidateColor(c.Color); err != nil {
			return nil, fmt.Errorf("connection %d (%s→%s): %w", i, c.From, c.To, err)
		}
		d.Connections = append(d.Connections, Connection(c))
	}

	return d, nil
}

// Shape returns the first shape with the given id.
func (d *Diagram) Shape(id string) (Shape, bool) {
	for _, s := range d.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return Shape{}, false
}

// Index maps shape ids to their position in d.Shapes. For duplicated ids the
// first occurrence wins.
func (d *Diagram) Index() map[string]int {
	idx := make(map[string]int, len(d.Shapes))
	for i, s := range d.Shapes {
		if _, ok := idx[s.ID]; !ok {
			idx[s.ID] = i
		}
	}
	return idx
}

// Groups returns the distinct shape groups in first-seen order.
func (d *Diagram) Groups() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range d.Shapes {
		if !seen[s.Group] {
			seen[s.Group] = true
			out = append(out, s.Group)
		}
	}
	return out
}

// ToSpec converts d back to its wire form.
func (d *Diagram) ToSpec() Spec {
	s := Spec{
		Title:      d.Title,
		Layout:     string(d.Strategy),
		Palette:    string(d.Palette),
		TitleStyle: string(d.TitleStyle),
		Shapes:     make([]ShapeSpec, len(d.Shapes)),
	}
	for i, sh := range d.Shapes {
		s.Shapes[i] = ShapeSpec{
			ID:            sh.ID,
			Text:          sh.Text,
			SecondaryText: sh.SecondaryText,
			Preset:        sh.Preset,
			Style:         sh.StyleName,
			Group:         sh.Group,
		}
	}
	for _, c := range d.Connections {
		s.Connections = append(s.Connections, ConnectionSpec(c))
	}
	return s
}
