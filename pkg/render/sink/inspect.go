package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/matzehuels/slidekit/pkg/diagram"
	"github.com/matzehuels/slidekit/pkg/qc"
)

// InspectSVG reads back the element groups of an SVG document, in document
// order. Any group carrying a data-kind attribute is an element.
func InspectSVG(data []byte) (qc.RenderReport, error) {
	rep := qc.RenderReport{Format: string(FormatSVG)}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rep, fmt.Errorf("inspect svg: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "g" {
			continue
		}
		var e qc.RenderedElement
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "id":
				e.ID = a.Value
			case "data-kind":
				e.Kind = diagram.ElementKind(a.Value)
			case "data-start":
				e.Start = a.Value
			case "data-end":
				e.End = a.Value
			}
		}
		if e.Kind != "" {
			rep.Elements = append(rep.Elements, e)
		}
	}
	return rep, nil
}
