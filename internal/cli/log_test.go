package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slidekit/pkg/pipeline"
	"github.com/matzehuels/slidekit/pkg/qc"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Debug("hidden")
	assert.Zero(t, buf.Len(), "debug output at info level")

	logger.SetLevel(log.DebugLevel)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestProgressRendered(t *testing.T) {
	var buf bytes.Buffer
	res := &pipeline.Result{
		RunID: "run-42",
		Reports: pipeline.Reports{
			Definition: &qc.Report{Gate: qc.GateDefinition, Warnings: []string{"shape a: empty text"}},
		},
		CacheInfo: pipeline.CacheInfo{RenderHit: true},
	}

	newProgress(newLogger(&buf, log.InfoLevel)).rendered(res, []string{"svg", "pdf"})

	out := buf.String()
	assert.Contains(t, out, "Rendered 2 formats (")
	assert.Contains(t, out, "run=run-42")
	assert.Contains(t, out, "warnings=1")
	assert.Contains(t, out, "cached=true")
}

func TestProgressSingular(t *testing.T) {
	var buf bytes.Buffer
	res := &pipeline.Result{RunID: "r", Stats: pipeline.Stats{ShapeCount: 1}}

	newProgress(newLogger(&buf, log.InfoLevel)).laidOut(res)

	assert.Contains(t, buf.String(), "Laid out 1 shape (")
	assert.Contains(t, buf.String(), "cached=false")
}

func TestLayoutCommandLogsProgress(t *testing.T) {
	dir := sandbox(t)
	in := writeDiagram(t, dir, "flow.json", flowDiagram)

	var logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"layout", "--no-cache", in})
	require.NoError(t, root.Execute())

	assert.Contains(t, logs.String(), "Laid out 3 shapes (")
	assert.Contains(t, logs.String(), "cached=false")
}
