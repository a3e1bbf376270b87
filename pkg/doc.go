// Package pkg holds the slidekit libraries.
//
// # Overview
//
// Slidekit turns a logical diagram (shapes, connections, optional lanes)
// into a placed 16:9 slide. Every coordinate is an integer EMU so the
// same input always yields byte-identical output. The tree is organized as:
//
//  1. [core] - geometry, text fitting, palettes, connector routing and the
//     three layout strategies
//  2. [diagram] - the input model and the placed LayoutResult
//  3. [qc] - the definition, layout and render quality gates
//  4. [render] - SVG, PDF, XLSX and JSON renderers plus a Graphviz preview
//  5. [pipeline] - build → gate → layout → gate → render → gate, cached
//  6. [api], [config], [cache], [observability] - the service around it
//
// # Architecture
//
//	diagram spec (JSON / TOML)
//	        ↓  diagram.Build, qc.CheckDefinition
//	[diagram] Diagram
//	        ↓  layout.Run (flow | hierarchy | swimlane), qc.CheckLayout
//	[diagram] LayoutResult
//	        ↓  sink.Render, qc.CheckRender
//	SVG / PDF / XLSX / JSON
//
// # Quick Start
//
//	spec, _ := diagram.ParseSpec(data, diagram.FormatJSON)
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, spec, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    // res still carries the gate reports gathered so far
//	}
//	os.WriteFile("slide.svg", res.Artifacts["svg"], 0o644)
package pkg
