package sink

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/qc"
)

type jsonOutput struct {
	Layout   *diagram.LayoutResult `json:"layout"`
	Elements []jsonElement         `json:"elements"`
}

type jsonElement struct {
	ID    string              `json:"id"`
	Kind  diagram.ElementKind `json:"kind"`
	Z     int                 `json:"z"`
	Start string              `json:"start,omitempty"`
	End   string              `json:"end,omitempty"`
}

// RenderJSON exports l together with its paint-ordered element list, for
// external renderers and round-tripping. The report is read back from the
// element list of the produced document.
func RenderJSON(l *diagram.LayoutResult) ([]byte, qc.RenderReport, error) {
	out := jsonOutput{Layout: l}
	for _, e := range l.Elements() {
		je := jsonElement{ID: Ref(e.ID), Kind: e.Kind, Z: e.Z}
		if e.Kind == diagram.ElementConnector {
			je.Start, je.End = Ref(e.Start), Ref(e.End)
		}
		out.Elements = append(out.Elements, je)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, qc.RenderReport{}, fmt.Errorf("marshal json: %w", err)
	}
	rep, err := InspectJSON(data)
	return data, rep, err
}

// InspectJSON reads the element list of a document written by [RenderJSON].
func InspectJSON(data []byte) (qc.RenderReport, error) {
	rep := qc.RenderReport{Format: string(FormatJSON)}
	var doc struct {
		Elements []jsonElement `json:"elements"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return rep, fmt.Errorf("inspect json: %w", err)
	}
	for _, e := range doc.Elements {
		rep.Elements = append(rep.Elements, qc.RenderedElement{ID: e.ID, Kind: e.Kind, Start: e.Start, End: e.End})
	}
	return rep, nil
}
