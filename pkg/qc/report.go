package qc

import (
	"fmt"
	"strings"

	"github.com/matzehuels/slidekit/pkg/errors"
)

// Gate identifies one of the three quality gates.
type Gate int

const (
	GateDefinition Gate = iota + 1
	GateLayout
	GateRender
)

func (g Gate) String() string {
	switch g {
	case GateDefinition:
		return "definition"
	case GateLayout:
		return "layout"
	case GateRender:
		return "render"
	}
	return fmt.Sprintf("gate(%d)", int(g))
}

// MarshalText encodes g by name.
func (g Gate) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText decodes a name produced by MarshalText.
func (g *Gate) UnmarshalText(b []byte) error {
	for _, c := range []Gate{GateDefinition, GateLayout, GateRender} {
		if c.String() == string(b) {
			*g = c
			return nil
		}
	}
	return fmt.Errorf("unknown gate %q", b)
}

// Report collects the warnings of one gate run.
type Report struct {
	Gate     Gate     `json:"gate"`
	Warnings []string `json:"warnings,omitempty"`
	Fatal    string   `json:"fatal,omitempty"`
}

// Clean reports whether the gate found nothing at all.
func (r Report) Clean() bool { return len(r.Warnings) == 0 && r.Fatal == "" }

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Strict converts warnings into a QUALITY_GATE error, for callers that
// treat any warning as a failure.
func (r Report) Strict() error {
	if len(r.Warnings) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeQualityGate, "%s gate: %d warning(s): %s",
		r.Gate, len(r.Warnings), strings.Join(r.Warnings, "; "))
}

// fatals accumulates fatal findings; the first one's code wins.
type fatals struct {
	code errors.Code
	msgs []string
}

func (f *fatals) add(code errors.Code, format string, args ...any) {
	if f.code == "" {
		f.code = code
	}
	f.msgs = append(f.msgs, fmt.Sprintf(format, args...))
}

func (f *fatals) err(r *Report) error {
	if len(f.msgs) == 0 {
		return nil
	}
	e := errors.New(f.code, "%s", strings.Join(f.msgs, "; "))
	r.Fatal = e.Error()
	return e
}
