package diagram

import (
	"fmt"
	"strings"

	"github.com/matzehuels/slidekit/pkg/errors"
)

// ShapeKind is the closed set of shape roles the layout strategies care
// about. It is resolved once from the preset name.
type ShapeKind int

const (
	KindUnknown ShapeKind = iota
	KindProcess
	KindDecision
	KindTerminator
	KindData
	KindDatabase
	KindDocument
)

var kindNames = [...]string{"unknown", "process", "decision", "terminator", "data", "database", "document"}

func (k ShapeKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// presetKinds maps lower-cased slide geometry presets and plain role names
// to a kind.
var presetKinds = map[string]ShapeKind{
	"":                      KindProcess,
	"rect":                  KindProcess,
	"roundrect":             KindProcess,
	"process":               KindProcess,
	"flowchartprocess":      KindProcess,
	"diamond":               KindDecision,
	"decision":              KindDecision,
	"flowchartdecision":     KindDecision,
	"terminator":            KindTerminator,
	"flowchartterminator":   KindTerminator,
	"ellipse":               KindTerminator,
	"stadium":               KindTerminator,
	"parallelogram":         KindData,
	"data":                  KindData,
	"flowchartinputoutput":  KindData,
	"can":                   KindDatabase,
	"cylinder":              KindDatabase,
	"database":              KindDatabase,
	"flowchartmagneticdisk": KindDatabase,
	"document":              KindDocument,
	"flowchartdocument":     KindDocument,
}

// KindOf resolves a preset name. Unrecognized presets are [KindUnknown].
func KindOf(preset string) ShapeKind {
	if k, ok := presetKinds[strings.ToLower(strings.TrimSpace(preset))]; ok {
		return k
	}
	return KindUnknown
}

// DefaultPreset is the preset Build assigns when the input names none. A
// preset it does not know is kept as written and laid out like a process.
func (k ShapeKind) DefaultPreset() string {
	switch k {
	case KindDecision:
		return "diamond"
	case KindTerminator:
		return "flowChartTerminator"
	case KindData:
		return "parallelogram"
	case KindDatabase:
		return "can"
	case KindDocument:
		return "flowChartDocument"
	}
	return "roundRect"
}

// Strategy names a layout algorithm.
type Strategy string

const (
	StrategyFlow      Strategy = "flow"
	StrategyHierarchy Strategy = "hierarchy"
	StrategySwimLane  Strategy = "swimlane"
)

var strategyAliases = map[string]Strategy{
	"":                StrategyFlow,
	"flow":            StrategyFlow,
	"horizontal_flow": StrategyFlow,
	"flowchart":       StrategyFlow,
	"hierarchy":       StrategyHierarchy,
	"org_chart":       StrategyHierarchy,
	"tree":            StrategyHierarchy,
	"swimlane":        StrategySwimLane,
	"swim_lane":       StrategySwimLane,
	"architecture":    StrategySwimLane,
}

// Strategies lists the canonical strategy names.
func Strategies() []Strategy {
	return []Strategy{StrategyFlow, StrategyHierarchy, StrategySwimLane}
}

// ParseStrategy resolves a layout name or one of its aliases. Dashes and
// underscores are interchangeable.
func ParseStrategy(s string) (Strategy, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if st, ok := strategyAliases[norm]; ok {
		return st, nil
	}
	return "", errors.New(errors.ErrCodeInvalidStrategy, "unknown layout %q (valid: flow, hierarchy, swimlane)", s)
}

// TitleStyle selects how the slide title is drawn.
type TitleStyle string

const (
	TitleCentered TitleStyle = "centered"
	TitleBar      TitleStyle = "bar"
)

// ParseTitleStyle resolves s; empty input yields the strategy's default.
func ParseTitleStyle(s string, st Strategy) (TitleStyle, error) {
	switch TitleStyle(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		if st == StrategySwimLane {
			return TitleBar, nil
		}
		return TitleCentered, nil
	case TitleCentered:
		return TitleCentered, nil
	case TitleBar:
		return TitleBar, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown title style %q (valid: centered, bar)", s)
}

// MarshalText encodes k by name.
func (k ShapeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a name produced by MarshalText.
func (k *ShapeKind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = ShapeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown shape kind %q", b)
}
