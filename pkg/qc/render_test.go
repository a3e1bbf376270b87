package qc

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
)

// faithful builds the report a correct renderer would produce.
func faithful(l *diagram.LayoutResult) RenderReport {
	rep := RenderReport{Format: "test"}
	for _, e := range l.Elements() {
		re := RenderedElement{ID: strconv.Itoa(e.ID), Kind: e.Kind}
		if e.Kind == diagram.ElementConnector {
			re.Start, re.End = strconv.Itoa(e.Start), strconv.Itoa(e.End)
		}
		rep.Elements = append(rep.Elements, re)
	}
	return rep
}

func TestCheckRenderClean(t *testing.T) {
	l := laidOut(t)
	r, err := CheckRender(l, faithful(l))
	require.NoError(t, err)
	assert.True(t, r.Clean(), "warnings: %v", r.Warnings)
	assert.Equal(t, GateRender, r.Gate)
}

func TestCheckRenderDuplicateIsFatal(t *testing.T) {
	l := laidOut(t)
	rep := faithful(l)
	rep.Elements[2].ID = rep.Elements[1].ID
	_, err := CheckRender(l, rep)
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateID), "err = %v", err)
}

func TestCheckRenderCountMismatch(t *testing.T) {
	l := laidOut(t)
	rep := faithful(l)
	rep.Elements = rep.Elements[:len(rep.Elements)-1]
	r, err := CheckRender(l, rep)
	require.NoError(t, err)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "elements")
}

func TestCheckRenderPaintOrder(t *testing.T) {
	l := laidOut(t)
	rep := faithful(l)

	// Move the first shape in front of every connector.
	shapeIdx, firstConn := -1, -1
	for i, e := range rep.Elements {
		if e.Kind == diagram.ElementConnector && firstConn < 0 {
			firstConn = i
		}
		if e.Kind == diagram.ElementShape && shapeIdx < 0 {
			shapeIdx = i
		}
	}
	require.True(t, firstConn >= 0 && shapeIdx > firstConn)
	shape := rep.Elements[shapeIdx]
	reordered := append([]RenderedElement{}, rep.Elements[:firstConn]...)
	reordered = append(reordered, shape)
	for i, e := range rep.Elements[firstConn:] {
		if firstConn+i != shapeIdx {
			reordered = append(reordered, e)
		}
	}
	rep.Elements = reordered

	r, err := CheckRender(l, rep)
	require.NoError(t, err, "paint order is a warning")
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "before the last connector")
}

func TestCheckRenderUnknownEndpoint(t *testing.T) {
	l := laidOut(t)
	rep := faithful(l)
	for i, e := range rep.Elements {
		if e.Kind == diagram.ElementConnector {
			rep.Elements[i].End = "missing"
			break
		}
	}
	r, err := CheckRender(l, rep)
	require.NoError(t, err, "a dangling rendered reference is a warning")
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "unknown element")
}
