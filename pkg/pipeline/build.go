package pipeline

import (
	"github.com/matzehuels/slidekit/pkg/diagram"
)

// Build resolves spec into a diagram, applying the option overrides first.
func Build(spec diagram.Spec, opts Options) (*diagram.Diagram, error) {
	if opts.Strategy != "" {
		spec.Layout = opts.Strategy
	}
	if opts.Palette != "" {
		spec.Palette = opts.Palette
	}
	if opts.TitleStyle != "" {
		spec.TitleStyle = opts.TitleStyle
	}
	return diagram.Build(spec)
}
