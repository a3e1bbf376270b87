// Package layout places the shapes, connectors and labels of a diagram on
// a 16:9 slide.
//
// Three fixed strategies are supported:
//
//   - [Flow]: one centered row, for process flows
//   - [Hierarchy]: one centered row per level, for org charts and trees
//   - [SwimLane]: one horizontal band per group, for architecture views
//
// Every strategy is a pure function of the diagram and the canvas. Numeric
// ids come from the [diagram.IDAllocator] passed in, so two passes over the
// same diagram with fresh allocators give identical geometry.
//
// Strategies never repair their input: a dangling connection is an error
// here and a definition-gate failure upstream.
//
//	ids := diagram.NewIDAllocator()
//	res, err := layout.Run(d, ids)
package layout
