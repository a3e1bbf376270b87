package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/slidekit/pkg/errors"
)

// Format is an input encoding for diagram specs.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format from a file extension. Anything that is
// not .toml is treated as JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// =============================================================================
// Spec Input
// =============================================================================

// ParseSpec decodes a spec. Unknown fields are rejected so typos surface.
func ParseSpec(data []byte, f Format) (Spec, error) {
	var s Spec
	switch f {
	case FormatTOML:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return Spec{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return Spec{}, errors.New(errors.ErrCodeInvalidFormat, "unknown key %q", undec[0].String())
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Spec{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	}
	return s, nil
}

// Read decodes and builds a diagram from r.
func Read(r io.Reader, f Format) (*Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	s, err := ParseSpec(data, f)
	if err != nil {
		return nil, err
	}
	return Build(s)
}

// ReadFile reads a JSON or TOML diagram file.
func ReadFile(path string) (*Diagram, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, FormatFromPath(path))
}

// MarshalSpec encodes a spec as indented JSON.
func MarshalSpec(s Spec) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// =============================================================================
// Layout Output
// =============================================================================

// MarshalLayout serializes a LayoutResult to pretty-printed JSON bytes.
func MarshalLayout(l *LayoutResult) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a LayoutResult.
func UnmarshalLayout(data []byte) (*LayoutResult, error) {
	var l LayoutResult
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Strategy == "" {
		return nil, fmt.Errorf("layout has no strategy")
	}
	return &l, nil
}

// WriteLayoutFile writes a LayoutResult to a JSON file.
func WriteLayoutFile(l *LayoutResult, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a LayoutResult from a JSON file.
func ReadLayoutFile(path string) (*LayoutResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
