// Package pipeline provides the diagram pipeline shared by the CLI and the
// HTTP API.
//
// # Architecture
//
// One run is a fixed sequence of stages, each followed by its quality gate:
//
//  1. Build: resolve the wire spec into a [diagram.Diagram]; Gate 1 checks
//     the definition
//  2. Layout: place every element with the diagram's strategy; Gate 2 checks
//     the placement
//  3. Render: write each requested format; Gate 3 checks what each renderer
//     actually wrote
//
// Gate fatals stop the run. Warnings are collected in the result, or fail
// the run when [Options.Strict] is set.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, spec, pipeline.Options{
//	    Formats: []string{"svg", "pdf"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Layouts and artifacts are cached by content hash, so repeated runs over
// an unchanged diagram skip straight to the gates.
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slidekit/pkg/cache"
	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
	"github.com/matzehuels/slidekit/pkg/qc"
	"github.com/matzehuels/slidekit/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = string(sink.FormatSVG)

// LayoutVersion is mixed into cache keys; bump it when placement rules
// change so stale layouts are not reused.
const LayoutVersion = "1"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. Empty fields keep the diagram's own
// settings or the defaults. It supports JSON for API requests.
type Options struct {
	// Overrides applied to the diagram spec
	Strategy   string `json:"layout,omitempty"`
	Palette    string `json:"palette,omitempty"`
	TitleStyle string `json:"title_style,omitempty"`

	// Layout options
	CanvasWidth  int64 `json:"canvas_width,omitempty"`
	CanvasHeight int64 `json:"canvas_height,omitempty"`

	// Strict turns every gate warning into a QUALITY_GATE failure.
	Strict bool `json:"strict,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Chamfers   bool     `json:"chamfers,omitempty"`
	PixelWidth int      `json:"pixel_width,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetLayoutDefaults fills in the canvas and logger.
func (o *Options) SetLayoutDefaults() {
	if o.CanvasWidth == 0 {
		o.CanvasWidth = geom.CanvasWidth
	}
	if o.CanvasHeight == 0 {
		o.CanvasHeight = geom.CanvasHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout applies layout defaults and checks the canvas.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.CanvasWidth < 0 || o.CanvasHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %d×%d", o.CanvasWidth, o.CanvasHeight)
	}
	return nil
}

// SetRenderDefaults fills in the format list.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies all defaults, checks the formats and rewrites
// them to their canonical names without repeats.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	formats, err := sink.ParseFormats(strings.Join(o.Formats, ","))
	if err != nil {
		return err
	}
	o.Formats = make([]string, len(formats))
	for i, f := range formats {
		o.Formats[i] = string(f)
	}
	return nil
}

// ValidateFormats checks that every format is known.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := sink.ParseFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(d *diagram.Diagram) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy: string(d.Strategy),
		Palette:  string(d.Palette),
		CanvasW:  o.CanvasWidth,
		CanvasH:  o.CanvasHeight,
		Version:  LayoutVersion,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format. The
// workbook embeds the earlier gate reports, so its key covers them too.
func (o *Options) ArtifactKeyOpts(format string, reports []qc.Report) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:   format,
		Chamfers: o.Chamfers,
		Width:    o.PixelWidth,
		Version:  LayoutVersion,
	}
	if format == string(sink.FormatXLSX) && len(reports) > 0 {
		if h, err := cache.HashJSON(reports); err == nil {
			k.Reports = h
		}
	}
	return k
}

func (o *Options) sinkOptions(reports []qc.Report) sink.Options {
	return sink.Options{Chamfers: o.Chamfers, PixelWidth: o.PixelWidth, Reports: reports}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string `json:"run_id"`

	// Diagram is the resolved input.
	Diagram *diagram.Diagram `json:"-"`

	// DiagramHash is the content hash of the resolved input.
	DiagramHash string `json:"diagram_hash"`

	// Layout is the placed slide; nil if the run stopped at Gate 1.
	Layout *diagram.LayoutResult `json:"layout,omitempty"`

	// Reports holds every gate report produced, in gate order.
	Reports Reports `json:"reports"`

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte `json:"-"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Reports groups the gate reports of one run.
type Reports struct {
	Definition *qc.Report           `json:"definition,omitempty"`
	Layout     *qc.Report           `json:"layout,omitempty"`
	Render     map[string]qc.Report `json:"render,omitempty"`
}

// All lists the reports in gate order; render reports follow format order.
func (r Reports) All(formats ...string) []qc.Report {
	var out []qc.Report
	if r.Definition != nil {
		out = append(out, *r.Definition)
	}
	if r.Layout != nil {
		out = append(out, *r.Layout)
	}
	keys := formats
	if len(keys) == 0 {
		for f := range r.Render {
			keys = append(keys, f)
		}
		slices.Sort(keys)
	}
	for _, f := range keys {
		if rep, ok := r.Render[f]; ok {
			out = append(out, rep)
		}
	}
	return out
}

// Warnings counts warnings across all reports.
func (r Reports) Warnings() int {
	n := 0
	for _, rep := range r.All() {
		n += len(rep.Warnings)
	}
	return n
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ShapeCount     int           `json:"shapes"`
	ConnectorCount int           `json:"connectors"`
	ElementCount   int           `json:"elements"`
	Warnings       int           `json:"warnings"`
	LayoutTime     time.Duration `json:"layout_ns"`
	RenderTime     time.Duration `json:"render_ns"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
	RenderHit bool `json:"render_hit"` // all artifacts came from cache
}
