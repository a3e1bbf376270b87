package layout

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/slidekit/pkg/core/connector"
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/core/palette"
	"github.com/matzehuels/slidekit/pkg/diagram"
)

// Hierarchy geometry, in EMU.
const (
	HierarchyShapeHeight int64 = 571500
	HierarchyLevelGap    int64 = 685800
	HierarchyMarginTop   int64 = 685800
	hierarchyMarginBot   int64 = 228600

	hierarchyWideW   int64 = 1600200
	hierarchyWideGap int64 = 304800
	hierarchyDeepW   int64 = 1280160
	hierarchyDeepGap int64 = 182880
)

// Hierarchy places one centered row per level, top to bottom. A shape's
// level is its group parsed as an integer; an empty group is level 0 and
// non-numeric groups form extra levels below the numeric ones in the order
// they first appear. Levels are packed, so groups 0, 2 and 7 become three
// consecutive rows.
//
// Fill comes from the palette's level ramp, darkest at the root; a shape's
// own style key is not consulted.
//
// Each connection leaves its source's bottom anchor and enters its target's
// top anchor. Edges are never inferred from levels.
type Hierarchy struct {
	cfg config
}

// NewHierarchy returns the hierarchy strategy.
func NewHierarchy(opts ...Option) *Hierarchy { return &Hierarchy{cfg: newConfig(opts)} }

// Levels groups shape indices by level, shallowest first.
func Levels(d *diagram.Diagram) [][]int {
	numeric := make(map[int][]int)
	var named []string
	byName := make(map[string][]int)

	for i, s := range d.Shapes {
		g := strings.TrimSpace(s.Group)
		if g == "" {
			numeric[0] = append(numeric[0], i)
			continue
		}
		if lv, err := strconv.Atoi(g); err == nil {
			numeric[lv] = append(numeric[lv], i)
			continue
		}
		if _, ok := byName[g]; !ok {
			named = append(named, g)
		}
		byName[g] = append(byName[g], i)
	}

	keys := make([]int, 0, len(numeric))
	for k := range numeric {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([][]int, 0, len(keys)+len(named))
	for _, k := range keys {
		out = append(out, numeric[k])
	}
	for _, g := range named {
		out = append(out, byName[g])
	}
	return out
}

// Layout implements [Strategy].
func (h *Hierarchy) Layout(d *diagram.Diagram, ids *diagram.IDAllocator) (*diagram.LayoutResult, error) {
	b := newBuilder(d, ids, h.cfg)
	b.centeredTitle()

	c := h.cfg.canvas
	levels := Levels(d)
	availH := c.H - HierarchyMarginTop - hierarchyMarginBot
	if int64(len(levels)) > availH {
		return nil, tooDense("levels", len(levels))
	}
	shapeH, levelGap := fitRow(len(levels), HierarchyShapeHeight, HierarchyLevelGap, availH)

	availW := c.W - 2*pageMarginX
	for depth, row := range levels {
		if int64(len(row)) > availW {
			return nil, tooDense("shapes in one level", len(row))
		}
		w, gap := hierarchyWideW, hierarchyWideGap
		if depth >= 2 {
			w, gap = hierarchyDeepW, hierarchyDeepGap
		}
		w, gap = fitRow(len(row), w, gap, availW)
		left := centerStart(c.X, c.W, rowSpan(len(row), w, gap))
		y := c.Y + HierarchyMarginTop + int64(depth)*(shapeH+levelGap)

		var em diagram.Emphasis
		if depth == 0 {
			em = diagram.EmphasisBold
		}
		st := palette.LevelStyle(d.Palette, depth)
		for i, idx := range row {
			r := geom.Rect{X: left + int64(i)*(w+gap), Y: y, W: w, H: shapeH}
			b.shape(d.Shapes[idx], r, st, em)
		}
	}

	if err := b.connectAll(fixed(connector.TopToBottom)); err != nil {
		return nil, err
	}
	return b.res, nil
}
