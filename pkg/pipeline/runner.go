package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/slidekit/pkg/cache"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
	"github.com/matzehuels/slidekit/pkg/observability"
	"github.com/matzehuels/slidekit/pkg/qc"
	"github.com/matzehuels/slidekit/pkg/render/sink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating the gate and cache logic.
//
// The Runner holds no per-run state, so one Runner may serve concurrent
// runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	capsOnce sync.Once
	caps     sink.Capabilities
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Capabilities returns the renderer capabilities, probing them on first
// use only.
func (r *Runner) Capabilities(ctx context.Context) sink.Capabilities {
	r.capsOnce.Do(func() { r.caps = sink.Probe(ctx) })
	return r.caps
}

// SetCapabilities fixes the capabilities instead of probing. It has no
// effect once capabilities were probed.
func (r *Runner) SetCapabilities(c sink.Capabilities) {
	r.capsOnce.Do(func() { r.caps = c })
}

// Execute runs build → Gate 1 → layout → Gate 2 → render → Gate 3.
//
// When a gate stops the run, the partial result is returned with the error
// so callers can still show the reports gathered so far.
func (r *Runner) Execute(ctx context.Context, spec diagram.Spec, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result, err := r.Layout(ctx, spec, opts)
	if err != nil {
		return result, err
	}

	if err := r.render(ctx, result, opts); err != nil {
		return result, err
	}
	return result, nil
}

// RenderLayout renders a layout produced earlier, for example one read
// back from a .layout.json file. Gate 2 runs again since the layout may
// have been edited.
func (r *Runner) RenderLayout(ctx context.Context, l *diagram.LayoutResult, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString(), Layout: l}
	result.Stats.ShapeCount = len(l.Shapes)
	result.Stats.ConnectorCount = len(l.Connectors)
	result.Stats.ElementCount = len(l.Elements())

	layRep, err := qc.CheckLayout(l)
	result.Reports.Layout = &layRep
	result.Stats.Warnings = result.Reports.Warnings()
	if err := r.gate(ctx, opts, layRep, err); err != nil {
		return result, err
	}

	if err := r.render(ctx, result, opts); err != nil {
		return result, err
	}
	return result, nil
}

// render runs the render stage and Gate 3 on result.Layout.
func (r *Runner) render(ctx context.Context, result *Result, opts Options) error {
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result.Layout, opts, result.Reports.All()...)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	result.Artifacts = make(map[string][]byte, len(artifacts))
	result.Reports.Render = make(map[string]qc.Report, len(artifacts))
	for _, f := range opts.Formats {
		art := artifacts[f]
		result.Artifacts[f] = art.Data
		rep, err := qc.CheckRender(result.Layout, art.Report)
		result.Reports.Render[f] = rep
		if err := r.gate(ctx, opts, rep, err); err != nil {
			result.Stats.Warnings = result.Reports.Warnings()
			return fmt.Errorf("%s: %w", f, err)
		}
	}
	result.Stats.Warnings = result.Reports.Warnings()

	opts.Logger.Info("rendered outputs",
		"run", result.RunID,
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)
	return nil
}

// Layout runs build → Gate 1 → layout → Gate 2. It is Execute without the
// render stage.
func (r *Runner) Layout(ctx context.Context, spec diagram.Spec, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}

	d, err := Build(spec, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	if result.DiagramHash, err = cache.HashJSON(d.ToSpec()); err != nil {
		return nil, err
	}

	defRep, err := qc.CheckDefinition(d)
	result.Reports.Definition = &defRep
	result.Stats.Warnings = result.Reports.Warnings()
	if err := r.gate(ctx, opts, defRep, err); err != nil {
		return result, err
	}

	layoutStart := time.Now()
	l, hit, err := r.LayoutWithCacheInfo(ctx, d, result.DiagramHash, opts)
	if err != nil {
		return result, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.ShapeCount = len(l.Shapes)
	result.Stats.ConnectorCount = len(l.Connectors)
	result.Stats.ElementCount = len(l.Elements())
	result.CacheInfo.LayoutHit = hit

	opts.Logger.Info("computed layout",
		"run", result.RunID,
		"strategy", d.Strategy,
		"shapes", result.Stats.ShapeCount,
		"connectors", result.Stats.ConnectorCount,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	layRep, err := qc.CheckLayout(l)
	result.Reports.Layout = &layRep
	result.Stats.Warnings = result.Reports.Warnings()
	if err := r.gate(ctx, opts, layRep, err); err != nil {
		return result, err
	}
	return result, nil
}

// LayoutWithCacheInfo places d, reusing a cached layout when one exists.
// diagramHash is the content hash of d.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, d *diagram.Diagram, diagramHash string, opts Options) (*diagram.LayoutResult, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	key := r.Keyer.LayoutKey(diagramHash, opts.LayoutKeyOpts(d))
	if !opts.Refresh {
		if data, hit := r.cacheGet(ctx, key, "layout"); hit {
			if l, err := diagram.UnmarshalLayout(data); err == nil {
				return l, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached layout", "key", key)
		}
	}

	observability.Pipeline().OnLayoutStart(ctx, string(d.Strategy), len(d.Shapes))
	start := time.Now()
	l, err := GenerateLayout(d, opts)
	observability.Pipeline().OnLayoutComplete(ctx, string(d.Strategy), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := diagram.MarshalLayout(l); err == nil {
		r.cacheSet(ctx, key, "layout", data, cache.LayoutTTL)
	}
	return l, false, nil
}

// RenderWithCacheInfo renders every requested format, reusing cached
// artifacts when all of them are present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *diagram.LayoutResult, opts Options, reports ...qc.Report) (map[string]sink.Artifact, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := diagram.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string]sink.Artifact, len(opts.Formats))
	if !opts.Refresh {
		for _, f := range opts.Formats {
			data, hit := r.cacheGet(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(f, reports)), "artifact")
			if !hit {
				break
			}
			var c cachedArtifact
			if err := json.Unmarshal(data, &c); err != nil {
				break
			}
			art, err := c.artifact(f)
			if err != nil {
				break
			}
			artifacts[f] = art
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderFromLayout(ctx, l, opts, r.Capabilities(ctx), reports...)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for f, art := range rendered {
		data, err := json.Marshal(cachedArtifact{Data: art.Data, Report: art.Report})
		if err != nil {
			continue
		}
		r.cacheSet(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(f, reports)), "artifact", data, cache.ArtifactTTL)
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// gate reports one gate outcome and decides whether the run continues.
func (r *Runner) gate(ctx context.Context, opts Options, rep qc.Report, err error) error {
	observability.Pipeline().OnGate(ctx, rep.Gate.String(), len(rep.Warnings), err)
	if err != nil {
		opts.Logger.Error("gate failed", "gate", rep.Gate, "err", errors.UserMessage(err))
		return err
	}
	for _, w := range rep.Warnings {
		opts.Logger.Warn(w, "gate", rep.Gate)
	}
	if opts.Strict {
		return rep.Strict()
	}
	return nil
}

// cacheGet reads key, retrying transient backend failures. Read errors are
// logged and treated as misses.
func (r *Runner) cacheGet(ctx context.Context, key, keyType string) ([]byte, bool) {
	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

func (r *Runner) cacheSet(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
