package qc

import (
	"strconv"
	"strings"

	"github.com/matzehuels/slidekit/pkg/core/palette"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
)

// CheckDefinition validates a diagram before layout.
//
// Fatal: a shape id used more than once, or a connection naming a shape
// that does not exist. Warnings: an empty diagram, empty shape text, an
// unrecognized preset or style, a self-loop, and groups the chosen strategy
// cannot interpret.
func CheckDefinition(d *diagram.Diagram) (Report, error) {
	r := Report{Gate: GateDefinition}
	var f fatals

	if len(d.Shapes) == 0 {
		r.warnf("diagram has no shapes")
	}

	seen := make(map[string]int, len(d.Shapes))
	for _, s := range d.Shapes {
		seen[s.ID]++
		if seen[s.ID] == 2 {
			f.add(errors.ErrCodeDuplicateID, "shape id %q is used more than once", s.ID)
		}
	}

	for _, s := range d.Shapes {
		if strings.TrimSpace(s.Text) == "" {
			r.warnf("shape %q has no text", s.ID)
		}
		if s.Kind == diagram.KindUnknown {
			r.warnf("shape %q: unrecognized preset %q, laid out as a process shape", s.ID, s.Preset)
		}
		if s.Style == palette.StyleUnknown {
			r.warnf("shape %q: unknown style %q, using primary", s.ID, s.StyleName)
		}
		switch d.Strategy {
		case diagram.StrategyHierarchy:
			if g := strings.TrimSpace(s.Group); g != "" {
				if _, err := strconv.Atoi(g); err != nil {
					r.warnf("shape %q: level %q is not a number, placed below numeric levels", s.ID, s.Group)
				}
			}
		case diagram.StrategySwimLane:
			if s.Group == "" {
				r.warnf("shape %q has no group, placed in an unnamed lane", s.ID)
			}
		}
	}

	for i, c := range d.Connections {
		if seen[c.From] == 0 {
			f.add(errors.ErrCodeDanglingReference, "connection %d: source %q does not exist", i, c.From)
		}
		if seen[c.To] == 0 {
			f.add(errors.ErrCodeDanglingReference, "connection %d: target %q does not exist", i, c.To)
		}
		if c.From == c.To {
			r.warnf("connection %d: %q connects to itself", i, c.From)
		}
	}

	return r, f.err(&r)
}
