package qc

import (
	"github.com/matzehuels/slidekit/pkg/core/connector"
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/core/textfit"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
)

// anchorTolerance absorbs the 1-unit floor of collapsed connector boxes.
const anchorTolerance = 1

// CheckLayout validates a positioned layout.
//
// Fatal: a numeric id used twice, or a connector naming a shape id that was
// not placed. Warnings cover text fit, font floors, shape overlap and
// canvas bounds, and connector boxes that disagree with the anchors of the
// shapes they join.
func CheckLayout(l *diagram.LayoutResult) (Report, error) {
	r := Report{Gate: GateLayout}
	var f fatals

	seen := make(map[int]diagram.ElementKind)
	for _, e := range l.Elements() {
		if prev, dup := seen[e.ID]; dup {
			f.add(errors.ErrCodeDuplicateID, "id %d is used by a %s and a %s", e.ID, prev, e.Kind)
			continue
		}
		seen[e.ID] = e.Kind
	}

	canvas := l.Canvas
	if canvas.Empty() {
		canvas = geom.Canvas()
	}

	for i, s := range l.Shapes {
		checkText(&r, "shape "+s.Key, s.Text, s.Rect, s.FontSize)
		if s.SecondaryText != "" {
			checkText(&r, "shape "+s.Key+" secondary text", s.SecondaryText, s.Rect, s.SecondaryFontSize)
		}
		if s.Rect.Empty() {
			r.warnf("shape %s has an empty box %v", s.Key, s.Rect)
		}
		if !geom.Contains(canvas, s.Rect) {
			r.warnf("shape %s at %v lies outside the canvas", s.Key, s.Rect)
		}
		for _, o := range l.Shapes[i+1:] {
			if geom.Overlaps(s.Rect, o.Rect) {
				r.warnf("shapes %s and %s overlap", s.Key, o.Key)
			}
		}
	}
	for _, lb := range l.Labels {
		checkText(&r, "label "+quote(lb.Text), lb.Text, lb.Rect, lb.FontSize)
	}
	if l.HasTitle() {
		checkFont(&r, "title", l.Title.Text, l.Title.FontSize)
	}

	shapes := l.ShapeIndex()
	for _, c := range l.Connectors {
		si, okS := shapes[c.SourceID]
		ti, okT := shapes[c.TargetID]
		if !okS {
			f.add(errors.ErrCodeDanglingReference, "connector %d: source shape %d does not exist", c.ID, c.SourceID)
		}
		if !okT {
			f.add(errors.ErrCodeDanglingReference, "connector %d: target shape %d does not exist", c.ID, c.TargetID)
		}
		if c.Rect.W == 0 || c.Rect.H == 0 {
			r.warnf("connector %d has a zero-sized box %v", c.ID, c.Rect)
		}
		if !c.SourceAnchor.Valid() || !c.TargetAnchor.Valid() {
			r.warnf("connector %d uses anchor indices %d→%d outside 0..3", c.ID, c.SourceAnchor, c.TargetAnchor)
			continue
		}
		if !okS || !okT {
			continue
		}
		checkConnector(&r, c, l.Shapes[si].Rect, l.Shapes[ti].Rect)
	}

	return r, f.err(&r)
}

func checkConnector(r *Report, c diagram.PlacedConnector, src, tgt geom.Rect) {
	sp := geom.AnchorPoint(src, c.SourceAnchor)
	tp := geom.AnchorPoint(tgt, c.TargetAnchor)

	if c.FlipH != (tp.X < sp.X) || c.FlipV != (tp.Y < sp.Y) {
		r.warnf("connector %d: flips (h=%v, v=%v) do not match anchors %v→%v", c.ID, c.FlipH, c.FlipV, sp, tp)
		return
	}
	start, end := connector.Endpoints(c.Rect, c.FlipH, c.FlipV)
	if !connector.Near(start, sp, anchorTolerance) || !connector.Near(end, tp, anchorTolerance) {
		r.warnf("connector %d: box %v runs %v→%v, anchors are %v→%v", c.ID, c.Rect, start, end, sp, tp)
	}
}

func checkText(r *Report, what, text string, box geom.Rect, size int) {
	if text == "" {
		return
	}
	if !checkFont(r, what, text, size) {
		return
	}
	if !textfit.Fits(text, box.W, box.H, size) {
		r.warnf("%s: text overflows its box at %dpt", what, size/100)
	}
}

// checkFont warns on a missing or illegible font size and reports whether
// the size is usable for a fit check.
func checkFont(r *Report, what, text string, size int) bool {
	switch {
	case text == "":
		return false
	case size == 0:
		r.warnf("%s has text but no font size", what)
		return false
	case size < textfit.MinSize:
		r.warnf("%s: font size %d is below the %dpt floor", what, size, textfit.MinSize/100)
	}
	return true
}

func quote(s string) string {
	if rs := []rune(s); len(rs) > 24 {
		s = string(rs[:21]) + "..."
	}
	return `"` + s + `"`
}
