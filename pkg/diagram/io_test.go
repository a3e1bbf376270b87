package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/slidekit/pkg/core/geom"
	"github.com/matzehuels/slidekit/pkg/errors"
)

const tomlSpec = `
title = "Platform"
layout = "swimlane"
palette = "Modern Slate"

[[shapes]]
id = "web"
text = "Web App"
group = "Frontend"

[[shapes]]
id = "api"
text = "API"
group = "Backend"

[[connections]]
from = "web"
to = "api"
label = "HTTPS"
`

func TestParseSpecTOML(t *testing.T) {
	s, err := ParseSpec([]byte(tomlSpec), FormatTOML)
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}
	d, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Strategy != StrategySwimLane || d.Palette != "modern-slate" || d.TitleStyle != TitleBar {
		t.Errorf("got strategy=%q palette=%q title=%q", d.Strategy, d.Palette, d.TitleStyle)
	}
	if len(d.Shapes) != 2 || d.Shapes[1].Group != "Backend" {
		t.Errorf("shapes = %+v", d.Shapes)
	}
	if d.Connections[0].Label != "HTTPS" {
		t.Errorf("label = %q", d.Connections[0].Label)
	}
}

func TestParseSpecRejectsUnknownFields(t *testing.T) {
	if _, err := ParseSpec([]byte(`{"shapes": [], "colour": "red"}`), FormatJSON); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("JSON unknown field err = %v", err)
	}
	if _, err := ParseSpec([]byte("colour = \"red\"\n"), FormatTOML); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("TOML unknown key err = %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d.toml")
	if err := os.WriteFile(path, []byte(tomlSpec), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if d.Title != "Platform" {
		t.Errorf("Title = %q", d.Title)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRead(t *testing.T) {
	d, err := Read(strings.NewReader(`{"layout":"tree","shapes":[{"id":"ceo","text":"CEO","group":"0"}]}`), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if d.Strategy != StrategyHierarchy {
		t.Errorf("Strategy = %q", d.Strategy)
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l := &LayoutResult{
		Strategy: StrategyFlow,
		Canvas:   geom.Canvas(),
		Shapes: []PlacedShape{{
			ID: 3, Key: "a", Text: "A", Kind: KindDecision,
			Rect: geom.Rect{X: 1, Y: 2, W: 3, H: 4}, FontSize: 1400, Z: LayerShape,
		}},
	}
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Shapes[0].Kind != KindDecision || got.Shapes[0].Rect != l.Shapes[0].Rect {
		t.Errorf("round trip lost data: %+v", got.Shapes[0])
	}

	if _, err := UnmarshalLayout([]byte(`{}`)); err == nil {
		t.Error("layout without strategy should be rejected")
	}
}

func TestElementsPaintOrder(t *testing.T) {
	l := &LayoutResult{
		Background: Background{ID: 2, Z: LayerBackground},
		Title:      PlacedLabel{ID: 3, Text: "T", Z: LayerTitle},
		Labels:     []PlacedLabel{{ID: 9, Z: LayerLabel}},
		Shapes:     []PlacedShape{{ID: 4, Z: LayerShape}, {ID: 5, Z: LayerShape}},
		Connectors: []PlacedConnector{{ID: 6, SourceID: 4, TargetID: 5, Z: LayerConnector}},
		Lanes:      []LaneBackground{{ID: 7, Z: LayerLane}},
	}
	got := l.Elements()
	wantKinds := []ElementKind{ElementBackground, ElementLane, ElementTitle, ElementConnector, ElementShape, ElementShape, ElementLabel}
	if len(got) != len(wantKinds) {
		t.Fatalf("got %d elements, want %d", len(got), len(wantKinds))
	}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("element %d kind = %s, want %s", i, got[i].Kind, k)
		}
	}
	if got[3].Start != 4 || got[3].End != 5 {
		t.Errorf("connector refs = %d→%d", got[3].Start, got[3].End)
	}

	l.Title.Text = ""
	if len(l.Elements()) != len(wantKinds)-1 {
		t.Error("an empty title should not be an element")
	}
}
