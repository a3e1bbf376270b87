// Package cli implements the slidekit command-line interface.
//
// Commands:
//   - layout: place a diagram and write <name>.layout.json
//   - validate: run the definition and layout gates and print their findings
//   - render: write SVG, PDF, XLSX or JSON output through all three gates
//   - dot: print a Graphviz preview of the logical diagram
//   - serve: run the HTTP API
//   - cache: inspect or clear the layout and artifact cache
//
// Settings come from slidekit.toml, .env and SLIDEKIT_* variables (see
// package config); flags win over all of them.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slidekit/pkg/buildinfo"
	"github.com/matzehuels/slidekit/pkg/cache"
	"github.com/matzehuels/slidekit/pkg/config"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
	"github.com/matzehuels/slidekit/pkg/observability"
	"github.com/matzehuels/slidekit/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "slidekit"

	// redisPrefix namespaces cache keys in a shared Redis.
	redisPrefix = "slidekit:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level pipeline and
// cache events are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetServerHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Slidekit lays out diagrams on a 16:9 slide",
		Long:         `Slidekit places shapes and connectors of a flow, hierarchy or swim-lane diagram on a slide canvas, checks the result with three quality gates and renders it to SVG, PDF, XLSX or JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+config.FileName+" when present)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	return c.newScopedRunner(ctx, noCache, "")
}

// newScopedRunner is newRunner with cache keys under scope. An empty scope
// shares keys with the other commands.
func (c *CLI) newScopedRunner(ctx context.Context, noCache bool, scope string) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if scope != "" {
		keyer = cache.NewScopedKeyer(nil, scope)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

// newCache picks the configured backend. An unreachable Redis falls back
// to the file cache so a local run never fails on caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if url := c.Config.Cache.RedisURL; url != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: url, Prefix: redisPrefix})
		if err == nil {
			return rc, nil
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "err", err)
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/slidekit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputBase strips the diagram extension: "deck/flow.json" → "deck/flow".
// A layout file also loses its ".layout" part.
func outputBase(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".layout")
}

// =============================================================================
// Input
// =============================================================================

// readSpec reads a diagram file; "-" reads JSON from stdin.
func readSpec(path string, stdin io.Reader) (diagram.Spec, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return diagram.Spec{}, err
		}
		return diagram.ParseSpec(data, diagram.FormatJSON)
	}
	if err := errors.ValidatePath(path); err != nil {
		return diagram.Spec{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return diagram.Spec{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram %s", path)
		}
		return diagram.Spec{}, err
	}
	return diagram.ParseSpec(data, diagram.FormatFromPath(path))
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the diagram overrides shared by every pipeline command.
type layoutFlags struct {
	opts    pipeline.Options
	noCache bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.opts.Strategy, "layout", "l", "", "layout strategy override: flow, hierarchy, swimlane")
	cmd.Flags().StringVar(&f.opts.Palette, "palette", "", "palette override: corporate-blue, warm-professional, modern-slate, forest-green")
	cmd.Flags().StringVar(&f.opts.TitleStyle, "title-style", "", "title style override: centered, bar")
	cmd.Flags().BoolVar(&f.opts.Strict, "strict", false, "fail on any quality gate warning")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options merges config defaults into the flags.
func (c *CLI) options(f layoutFlags) pipeline.Options {
	o := f.opts
	if o.Palette == "" {
		o.Palette = c.Config.Palette
	}
	if len(o.Formats) == 0 {
		o.Formats = c.Config.Formats
	}
	o.Strict = o.Strict || c.Config.Strict
	o.Logger = c.Logger
	return o
}
