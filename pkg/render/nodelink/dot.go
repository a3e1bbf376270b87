package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/slidekit/pkg/core/palette"
	"github.com/matzehuels/slidekit/pkg/diagram"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the shape kind and group to node labels.
	Detailed bool
}

// ToDOT converts a diagram to Graphviz DOT.
func ToDOT(d *diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankDir(d.Strategy))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	if d.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", d.Title)
	}
	buf.WriteString("\n")

	if d.Strategy == diagram.StrategySwimLane {
		for i, g := range d.Groups() {
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
			fmt.Fprintf(&buf, "    label=%q;\n    style=filled;\n    color=\"#%s\";\n", g, palette.LaneFill(d.Palette))
			for _, s := range d.Shapes {
				if s.Group == g {
					writeNode(&buf, "    ", d, s, opts)
				}
			}
			buf.WriteString("  }\n")
		}
	} else {
		for _, s := range d.Shapes {
			writeNode(&buf, "  ", d, s, opts)
		}
	}

	buf.WriteString("\n")
	for _, c := range d.Connections {
		attrs := []string{}
		if c.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", c.Label))
		}
		if c.Color != "" {
			attrs = append(attrs, fmt.Sprintf("color=\"#%s\"", c.Color))
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.From, c.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.From, c.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func rankDir(st diagram.Strategy) string {
	if st == diagram.StrategyHierarchy {
		return "TB"
	}
	return "LR"
}

func writeNode(buf *bytes.Buffer, indent string, d *diagram.Diagram, s diagram.Shape, opts Options) {
	st := palette.Resolve(d.Palette, s.Style)
	label := s.Text
	if s.SecondaryText != "" {
		label += "\n" + s.SecondaryText
	}
	if opts.Detailed {
		label += fmt.Sprintf("\n[%s", s.Kind)
		if s.Group != "" {
			label += " · " + s.Group
		}
		label += "]"
	}
	fmt.Fprintf(buf, "%s%q [label=%q, shape=%s, fillcolor=\"#%s\", color=\"#%s\", fontcolor=\"#%s\"];\n",
		indent, s.ID, label, nodeShape(s.Kind), st.Fill, st.Border, st.Text)
}

func nodeShape(k diagram.ShapeKind) string {
	switch k {
	case diagram.KindDecision:
		return "diamond"
	case diagram.KindTerminator:
		return "ellipse"
	case diagram.KindData:
		return "parallelogram"
	case diagram.KindDatabase:
		return "cylinder"
	case diagram.KindDocument:
		return "note"
	}
	return "box"
}

// Available reports whether the embedded Graphviz engine starts.
func Available(ctx context.Context) bool {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return false
	}
	gv.Close()
	return true
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
