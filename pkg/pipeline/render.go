package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/qc"
	"github.com/matzehuels/slidekit/pkg/render/sink"
)

// RenderFromLayout writes l in every format of opts. reports are earlier
// gate findings some formats embed.
func RenderFromLayout(ctx context.Context, l *diagram.LayoutResult, opts Options, caps sink.Capabilities, reports ...qc.Report) (map[string]sink.Artifact, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	out := make(map[string]sink.Artifact, len(opts.Formats))
	for _, name := range opts.Formats {
		f, err := sink.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		art, err := sink.Render(ctx, l, f, caps, opts.sinkOptions(reports))
		if err != nil {
			return nil, err
		}
		out[name] = art
	}
	return out, nil
}

// cachedArtifact is the cache encoding of a [sink.Artifact]. The report is
// kept with the bytes since PDF output cannot be inspected again.
type cachedArtifact struct {
	Data   []byte          `json:"data"`
	Report qc.RenderReport `json:"report"`
}

func (c cachedArtifact) artifact(format string) (sink.Artifact, error) {
	if len(c.Data) == 0 {
		return sink.Artifact{}, fmt.Errorf("cached %s artifact is empty", format)
	}
	return sink.Artifact{Format: sink.Format(format), Data: c.Data, Report: c.Report}, nil
}
