package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slidekit/pkg/config"
	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/errors"
	"github.com/matzehuels/slidekit/pkg/pipeline"
	"github.com/matzehuels/slidekit/pkg/qc"
)

const flowDiagram = `{
  "title": "Order handling",
  "layout": "flow",
  "shapes": [
    {"id": "recv", "text": "Receive"},
    {"id": "check", "text": "Valid?", "preset": "diamond"},
    {"id": "ship", "text": "Ship"}
  ],
  "connections": [
    {"from": "recv", "to": "check"},
    {"from": "check", "to": "ship", "label": "yes"}
  ]
}`

const flowDiagramTOML = `
title = "Order handling"
layout = "flow"

[[shapes]]
id = "recv"
text = "Receive"

[[shapes]]
id = "ship"
text = "Ship"

[[connections]]
from = "recv"
to = "ship"
`

// sandbox isolates a test from the user's config, environment and cache.
func sandbox(t *testing.T) string {
	t.Helper()
	for _, k := range []string{config.EnvCacheDir, config.EnvRedisURL, config.EnvPalette, config.EnvStrict, config.EnvAddr} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Chdir(dir)
	return dir
}

func writeDiagram(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// run executes the root command and returns what it wrote through cobra.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestOutputBase(t *testing.T) {
	tests := map[string]string{
		"flow.json":             "flow",
		"deck/flow.toml":        "deck/flow",
		"deck/flow.layout.json": "deck/flow",
		"noext":                 "noext",
		"dir.v2/org-chart.json": "dir.v2/org-chart",
		"dir/org.chart.json":    "dir/org.chart",
	}
	for in, want := range tests {
		assert.Equal(t, want, outputBase(in), in)
	}
}

func TestOutputPaths(t *testing.T) {
	assert.Equal(t, map[string]string{"svg": "flow.svg"}, outputPaths("flow.json", "", []string{"svg"}))
	assert.Equal(t, map[string]string{"svg": "out/slide.svg"}, outputPaths("flow.json", "out/slide.svg", []string{"svg"}))
	assert.Equal(t,
		map[string]string{"svg": "out/slide.svg", "pdf": "out/slide.pdf"},
		outputPaths("flow.json", "out/slide.svg", []string{"svg", "pdf"}))
	assert.Equal(t, map[string]string{"json": "diagram.json"}, outputPaths("-", "", []string{"json"}))
}

func TestReadSpec(t *testing.T) {
	dir := t.TempDir()

	spec, err := readSpec(writeDiagram(t, dir, "a.json", flowDiagram), nil)
	require.NoError(t, err)
	assert.Len(t, spec.Shapes, 3)

	spec, err = readSpec(writeDiagram(t, dir, "b.toml", flowDiagramTOML), nil)
	require.NoError(t, err)
	assert.Len(t, spec.Shapes, 2)
	assert.Equal(t, "flow", spec.Layout)

	spec, err = readSpec("-", strings.NewReader(flowDiagram))
	require.NoError(t, err)
	assert.Equal(t, "Order handling", spec.Title)

	_, err = readSpec(filepath.Join(dir, "missing.json"), nil)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	_, err = readSpec("../escape.json", nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))
}

func TestFindings(t *testing.T) {
	reps := pipeline.Reports{
		Definition: &qc.Report{Gate: qc.GateDefinition, Warnings: []string{"shape a: unknown style"}},
		Layout:     &qc.Report{Gate: qc.GateLayout, Fatal: "id 3 is used twice"},
		Render: map[string]qc.Report{
			"svg": {Gate: qc.GateRender, Warnings: []string{"paint order"}},
			"pdf": {Gate: qc.GateRender},
		},
	}
	got := findings(reps, []string{"pdf", "svg"})
	require.Len(t, got, 3)
	assert.Equal(t, finding{"definition", levelWarning, "shape a: unknown style"}, got[0])
	assert.Equal(t, finding{"layout", levelFatal, "id 3 is used twice"}, got[1])
	assert.Equal(t, finding{"render (svg)", levelWarning, "paint order"}, got[2])

	table := reportTable(got)
	assert.Contains(t, table, "Finding")
	assert.Contains(t, table, "id 3 is used twice")
	assert.Contains(t, table, "render (svg)")
	assert.Empty(t, reportTable(nil))

	assert.Equal(t, "1 fatal finding, 2 warnings", summarize(got))
}

func TestStatsLine(t *testing.T) {
	line := statsLine(pipeline.Stats{ShapeCount: 3, ConnectorCount: 1}, true)
	assert.Contains(t, line, "3 shapes")
	assert.Contains(t, line, "1 connector")
	assert.Contains(t, line, "cached")
	assert.NotContains(t, line, "warning")
}

func TestLayoutCommand(t *testing.T) {
	dir := sandbox(t)
	in := writeDiagram(t, dir, "orders.json", flowDiagram)

	_, err := run(t, "layout", in)
	require.NoError(t, err)

	l, err := diagram.ReadLayoutFile(filepath.Join(dir, "orders.layout.json"))
	require.NoError(t, err)
	assert.Equal(t, diagram.StrategyFlow, l.Strategy)
	assert.Len(t, l.Shapes, 3)

	entries, err := os.ReadDir(filepath.Join(dir, "cache", appName))
	require.NoError(t, err, "layout should be cached under XDG_CACHE_HOME")
	assert.NotEmpty(t, entries)
}

func TestLayoutCommandOverrides(t *testing.T) {
	dir := sandbox(t)
	in := writeDiagram(t, dir, "orders.json", flowDiagram)
	out := filepath.Join(dir, "org.json")

	_, err := run(t, "layout", in, "-l", "hierarchy", "--palette", "forest-green", "-o", out, "--no-cache")
	require.NoError(t, err)

	l, err := diagram.ReadLayoutFile(out)
	require.NoError(t, err)
	assert.Equal(t, diagram.StrategyHierarchy, l.Strategy)
	assert.EqualValues(t, "forest-green", l.Palette)
}

func TestValidateCommand(t *testing.T) {
	dir := sandbox(t)

	_, err := run(t, "validate", writeDiagram(t, dir, "ok.json", flowDiagram), "--no-cache")
	require.NoError(t, err)

	dup := strings.Replace(flowDiagram, `"id": "ship"`, `"id": "recv"`, 1)
	_, err = run(t, "validate", writeDiagram(t, dir, "dup.json", dup), "--no-cache")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateID))
}

func TestValidateCommandStrict(t *testing.T) {
	dir := sandbox(t)
	warned := strings.Replace(flowDiagram, `"preset": "diamond"`, `"preset": "hexagon"`, 1)
	in := writeDiagram(t, dir, "warn.json", warned)

	_, err := run(t, "validate", in, "--no-cache")
	require.NoError(t, err, "warnings alone pass")

	_, err = run(t, "validate", in, "--no-cache", "--strict")
	assert.True(t, errors.Is(err, errors.ErrCodeQualityGate))

	// strict from the config file
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("strict = true\n"), 0o644))
	_, err = run(t, "validate", in, "--no-cache")
	assert.True(t, errors.Is(err, errors.ErrCodeQualityGate))
}

func TestRenderCommand(t *testing.T) {
	dir := sandbox(t)
	in := writeDiagram(t, dir, "orders.toml", flowDiagramTOML)

	_, err := run(t, "render", in, "-f", "svg,json,pdf,xlsx")
	require.NoError(t, err)

	for _, ext := range []string{"svg", "json", "pdf", "xlsx"} {
		data, err := os.ReadFile(filepath.Join(dir, "orders."+ext))
		require.NoError(t, err, ext)
		assert.NotEmpty(t, data, ext)
	}
	svg, err := os.ReadFile(filepath.Join(dir, "orders.svg"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(svg, []byte("<svg")))
}

func TestRenderCommandFromLayout(t *testing.T) {
	dir := sandbox(t)
	in := writeDiagram(t, dir, "orders.json", flowDiagram)

	_, err := run(t, "layout", in, "--no-cache")
	require.NoError(t, err)

	out := filepath.Join(dir, "slide.svg")
	_, err = run(t, "render", filepath.Join(dir, "orders.layout.json"), "-o", out, "--chamfers", "--no-cache")
	require.NoError(t, err)

	svg, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(svg), `data-strategy="flow"`)
}

func TestRenderCommandBadFormat(t *testing.T) {
	dir := sandbox(t)
	in := writeDiagram(t, dir, "orders.json", flowDiagram)

	_, err := run(t, "render", in, "-f", "png")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestDotCommand(t *testing.T) {
	dir := sandbox(t)
	in := writeDiagram(t, dir, "orders.json", flowDiagram)

	out, err := run(t, "dot", in, "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph G {")
	assert.Contains(t, out, "rankdir=LR")
	assert.Contains(t, out, `"recv" -> "check"`)

	out, err = run(t, "dot", in, "-l", "hierarchy")
	require.NoError(t, err)
	assert.Contains(t, out, "rankdir=TB")
}

func TestCachePathCommand(t *testing.T) {
	dir := sandbox(t)

	out, err := run(t, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache", appName), strings.TrimSpace(out))

	cfg := writeDiagram(t, dir, "custom.toml", "[cache]\ndir = \"/srv/slidekit-cache\"\n")
	out, err = run(t, "--config", cfg, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, "/srv/slidekit-cache", strings.TrimSpace(out))
}

func TestCacheClearCommand(t *testing.T) {
	dir := sandbox(t)
	in := writeDiagram(t, dir, "orders.json", flowDiagram)
	_, err := run(t, "render", in)
	require.NoError(t, err)

	cacheRoot := filepath.Join(dir, "cache", appName)
	before, err := os.ReadDir(cacheRoot)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	_, err = run(t, "cache", "clear")
	require.NoError(t, err)

	after, err := os.ReadDir(cacheRoot)
	if err == nil {
		assert.Empty(t, after)
	}
}

func TestMissingConfigFile(t *testing.T) {
	sandbox(t)
	_, err := run(t, "--config", "nope.toml", "cache", "path")
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestCompletionCommand(t *testing.T) {
	sandbox(t)
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, appName)

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}
