package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slidekit/pkg/pipeline"
)

// newLogger creates a logger writing to w with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one command and logs its outcome against the run that
// produced it.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// rendered logs "Rendered N formats (12ms)" with the run id, warning count
// and whether every artifact came from the cache.
func (p *progress) rendered(res *pipeline.Result, formats []string) {
	p.done(res, fmt.Sprintf("Rendered %s", plural(len(formats), "format")), "cached", res.CacheInfo.RenderHit)
}

// laidOut logs "Laid out N shapes (12ms)".
func (p *progress) laidOut(res *pipeline.Result) {
	p.done(res, fmt.Sprintf("Laid out %s", plural(res.Stats.ShapeCount, "shape")), "cached", res.CacheInfo.LayoutHit)
}

func (p *progress) done(res *pipeline.Result, msg string, keyvals ...any) {
	kv := []any{"run", res.RunID, "warnings", res.Reports.Warnings()}
	p.logger.Info(fmt.Sprintf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond)), append(kv, keyvals...)...)
}
