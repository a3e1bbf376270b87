package pipeline

import (
	"github.com/matzehuels/slidekit/pkg/core/layout"
	"github.com/matzehuels/slidekit/pkg/diagram"
)

// GenerateLayout places d with its own strategy on the configured canvas.
// Every call uses a fresh id allocator, so equal inputs give equal ids.
func GenerateLayout(d *diagram.Diagram, opts Options) (*diagram.LayoutResult, error) {
	opts.SetLayoutDefaults()
	return layout.Run(d, diagram.NewIDAllocator(), layout.WithCanvas(opts.CanvasWidth, opts.CanvasHeight))
}
