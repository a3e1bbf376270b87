package qc

import (
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
)

// RenderedElement is one element found in a renderer's output, in document
// order. Start and End are set for connectors and hold the identifiers of
// the elements they claim to join.
type RenderedElement struct {
	ID    string              `json:"id"`
	Kind  diagram.ElementKind `json:"kind"`
	Start string              `json:"start,omitempty"`
	End   string              `json:"end,omitempty"`
}

// RenderReport is the structural view of one rendered artifact.
type RenderReport struct {
	Format   string            `json:"format"`
	Elements []RenderedElement `json:"elements"`
}

// CheckRender validates what a renderer actually wrote against the layout
// it was given.
//
// Fatal: two rendered elements sharing an identifier. Warnings: an element
// count that differs from the layout, a shape painted before the last
// connector, and connector endpoints that name no rendered element.
func CheckRender(expected *diagram.LayoutResult, rep RenderReport) (Report, error) {
	r := Report{Gate: GateRender}
	var f fatals

	ids := make(map[string]bool, len(rep.Elements))
	for _, e := range rep.Elements {
		if ids[e.ID] {
			f.add(errors.ErrCodeDuplicateID, "%s output repeats element id %q", rep.Format, e.ID)
			continue
		}
		ids[e.ID] = true
	}

	if want, got := len(expected.Elements()), len(rep.Elements); want != got {
		r.warnf("%s output has %d elements, layout has %d", rep.Format, got, want)
	}

	lastConnector := -1
	for i, e := range rep.Elements {
		if e.Kind == diagram.ElementConnector {
			lastConnector = i
		}
	}
	for i, e := range rep.Elements[:lastConnector+1] {
		if e.Kind == diagram.ElementShape {
			r.warnf("%s output paints shape %q (position %d) before the last connector (position %d)",
				rep.Format, e.ID, i, lastConnector)
		}
	}

	for _, e := range rep.Elements {
		if e.Kind != diagram.ElementConnector {
			continue
		}
		if !ids[e.Start] {
			r.warnf("%s output: connector %q starts at unknown element %q", rep.Format, e.ID, e.Start)
		}
		if !ids[e.End] {
			r.warnf("%s output: connector %q ends at unknown element %q", rep.Format, e.ID, e.End)
		}
	}

	return r, f.err(&r)
}
