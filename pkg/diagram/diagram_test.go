package diagram

import (
	"testing"

	"github.com/matzehuels/slidekit/pkg/core/palette"
	"github.com/matzehuels/slidekit/pkg/errors"
)

func sampleSpec() Spec {
	return Spec{
		Title:  "Checkout",
		Layout: "horizontal_flow",
		Shapes: []ShapeSpec{
			{ID: "start", Text: "Start", Preset: "flowChartTerminator"},
			{ID: "pay", Text: "Pay", Style: "accent"},
			{ID: "ok", Text: "Paid?", Preset: "diamond"},
			{ID: "db", Text: "Orders", Preset: "can", Style: "glitter"},
		},
		Connections: []ConnectionSpec{
			{From: "start", To: "pay"},
			{From: "pay", To: "ok", Label: "submit", Color: "ED7D31"},
		},
	}
}

func TestBuild(t *testing.T) {
	d, err := Build(sampleSpec())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if d.Strategy != StrategyFlow {
		t.Errorf("Strategy = %q, want %q", d.Strategy, StrategyFlow)
	}
	if d.Palette != palette.DefaultName {
		t.Errorf("Palette = %q, want default", d.Palette)
	}
	if d.TitleStyle != TitleCentered {
		t.Errorf("TitleStyle = %q, want centered", d.TitleStyle)
	}

	wantKinds := []ShapeKind{KindTerminator, KindProcess, KindDecision, KindDatabase}
	for i, k := range wantKinds {
		if d.Shapes[i].Kind != k {
			t.Errorf("shape %s kind = %v, want %v", d.Shapes[i].ID, d.Shapes[i].Kind, k)
		}
	}
	if d.Shapes[1].Preset != "roundRect" {
		t.Errorf("default preset = %q, want roundRect", d.Shapes[1].Preset)
	}
	if d.Shapes[2].Preset != "diamond" {
		t.Errorf("named preset = %q, want diamond", d.Shapes[2].Preset)
	}
	if d.Shapes[1].Style != palette.StyleAccent {
		t.Errorf("style = %v, want accent", d.Shapes[1].Style)
	}
	if d.Shapes[3].Style != palette.StyleUnknown || d.Shapes[3].StyleName != "glitter" {
		t.Errorf("unknown style should be kept as written, got %v %q", d.Shapes[3].Style, d.Shapes[3].StyleName)
	}
	if len(d.Connections) != 2 || d.Connections[1].Label != "submit" {
		t.Errorf("connections = %+v", d.Connections)
	}
}

func TestBuildKeepsDuplicatesForTheGate(t *testing.T) {
	s := sampleSpec()
	s.Shapes = append(s.Shapes, ShapeSpec{ID: "pay", Text: "again"})
	s.Connections = append(s.Connections, ConnectionSpec{From: "pay", To: "nowhere"})
	d, err := Build(s)
	if err != nil {
		t.Fatalf("Build should not reject duplicates or dangling refs: %v", err)
	}
	if len(d.Shapes) != 5 {
		t.Errorf("got %d shapes, want 5", len(d.Shapes))
	}
	if d.Index()["pay"] != 1 {
		t.Errorf("Index should keep the first occurrence")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		code   errors.Code
	}{
		{"unknown layout", func(s *Spec) { s.Layout = "radial" }, errors.ErrCodeInvalidStrategy},
		{"unknown palette", func(s *Spec) { s.Palette = "neon" }, errors.ErrCodeInvalidPalette},
		{"unknown title style", func(s *Spec) { s.TitleStyle = "banner" }, errors.ErrCodeInvalidInput},
		{"empty id", func(s *Spec) { s.Shapes[0].ID = "" }, errors.ErrCodeInvalidInput},
		{"bad color", func(s *Spec) { s.Connections[0].Color = "red" }, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSpec()
			tt.mutate(&s)
			_, err := Build(s)
			if !errors.Is(err, tt.code) {
				t.Errorf("Build err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := map[string]Strategy{
		"":             StrategyFlow,
		"flow":         StrategyFlow,
		"flowchart":    StrategyFlow,
		"org-chart":    StrategyHierarchy,
		"Hierarchy":    StrategyHierarchy,
		"swim-lane":    StrategySwimLane,
		"architecture": StrategySwimLane,
	}
	for in, want := range tests {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}

func TestTitleStyleDefaults(t *testing.T) {
	ts, _ := ParseTitleStyle("", StrategySwimLane)
	if ts != TitleBar {
		t.Errorf("swim-lane default = %q, want bar", ts)
	}
	ts, _ = ParseTitleStyle("", StrategyHierarchy)
	if ts != TitleCentered {
		t.Errorf("hierarchy default = %q, want centered", ts)
	}
}

func TestKindOf(t *testing.T) {
	tests := map[string]ShapeKind{
		"":                      KindProcess,
		"roundRect":             KindProcess,
		"flowChartDecision":     KindDecision,
		"ELLIPSE":               KindTerminator,
		"flowChartMagneticDisk": KindDatabase,
		"parallelogram":         KindData,
		"star5":                 KindUnknown,
		"decisionish":           KindUnknown,
	}
	for in, want := range tests {
		if got := KindOf(in); got != want {
			t.Errorf("KindOf(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestShapeKindText(t *testing.T) {
	b, _ := KindDatabase.MarshalText()
	var k ShapeKind
	if err := k.UnmarshalText(b); err != nil || k != KindDatabase {
		t.Errorf("UnmarshalText(%s) = %v, %v", b, k, err)
	}
	if err := k.UnmarshalText([]byte("blob")); err == nil {
		t.Error("UnmarshalText(blob) should fail")
	}
}

func TestGroupsFirstSeenOrder(t *testing.T) {
	d := &Diagram{Shapes: []Shape{{ID: "a", Group: "web"}, {ID: "b", Group: "data"}, {ID: "c", Group: "web"}}}
	got := d.Groups()
	if len(got) != 2 || got[0] != "web" || got[1] != "data" {
		t.Errorf("Groups() = %v, want [web data]", got)
	}
}

func TestToSpecRebuilds(t *testing.T) {
	d, err := Build(sampleSpec())
	if err != nil {
		t.Fatal(err)
	}
	again, err := Build(d.ToSpec())
	if err != nil {
		t.Fatalf("Build(ToSpec()) = %v", err)
	}
	if len(again.Shapes) != len(d.Shapes) || again.Shapes[2].Kind != KindDecision {
		t.Errorf("rebuilt diagram differs: %+v", again.Shapes)
	}
}

func TestIDAllocator(t *testing.T) {
	a := NewIDAllocator()
	if a.Peek() != FirstID {
		t.Errorf("Peek() = %d, want %d", a.Peek(), FirstID)
	}
	seen := map[int]bool{}
	for range 100 {
		id := a.Take()
		if seen[id] {
			t.Fatalf("id %d handed out twice", id)
		}
		seen[id] = true
	}

	var zero IDAllocator
	if got := zero.Take(); got != FirstID {
		t.Errorf("zero allocator Take() = %d, want %d", got, FirstID)
	}
}

func TestBuildKeepsUnknownPreset(t *testing.T) {
	d, err := Build(Spec{Shapes: []ShapeSpec{{ID: "a", Text: "A", Preset: "star5"}}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := d.Shapes[0]; got.Kind != KindUnknown || got.Preset != "star5" {
		t.Errorf("shape = kind %v preset %q, want unknown with preset star5 kept", got.Kind, got.Preset)
	}
	if got := d.ToSpec().Shapes[0].Preset; got != "star5" {
		t.Errorf("ToSpec preset = %q, want star5", got)
	}
}
