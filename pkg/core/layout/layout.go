package layout

import (
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
)

// Strategy lays out a diagram using ids from one allocator.
type Strategy interface {
	Layout(d *diagram.Diagram, ids *diagram.IDAllocator) (*diagram.LayoutResult, error)
}

// Option configures a strategy.
type Option func(*config)

type config struct {
	canvas geom.Rect
}

// WithCanvas overrides the slide size. Non-positive sizes are ignored.
func WithCanvas(w, h int64) Option {
	return func(c *config) {
		if w > 0 && h > 0 {
			c.canvas = geom.Rect{W: w, H: h}
		}
	}
}

func newConfig(opts []Option) config {
	c := config{canvas: geom.Canvas()}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// For returns the strategy registered under name.
func For(name diagram.Strategy, opts ...Option) (Strategy, error) {
	cfg := newConfig(opts)
	switch name {
	case diagram.StrategyFlow:
		return &Flow{cfg: cfg}, nil
	case diagram.StrategyHierarchy:
		return &Hierarchy{cfg: cfg}, nil
	case diagram.StrategySwimLane:
		return &SwimLane{cfg: cfg}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStrategy, "no layout strategy %q", name)
}

// Run lays out d with the strategy it names.
func Run(d *diagram.Diagram, ids *diagram.IDAllocator, opts ...Option) (*diagram.LayoutResult, error) {
	s, err := For(d.Strategy, opts...)
	if err != nil {
		return nil, err
	}
	return s.Layout(d, ids)
}
