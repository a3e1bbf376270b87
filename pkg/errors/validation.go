package errors

import (
	"strings"
	"unicode"
)

// ValidateShapeID validates a logical shape id from a diagram description.
// Ids are used verbatim as lookup keys and as rendered element references,
// so they must be non-empty, short and free of whitespace and control runes.
func ValidateShapeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "shape id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "shape id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "shape id %q contains whitespace or control characters", id)
		}
	}

	return nil
}

// ValidateColor validates a 6-digit hex color without the leading '#'.
// An empty string is accepted and means "use the palette".
func ValidateColor(c string) error {
	if c == "" {
		return nil
	}
	if len(c) != 6 {
		return New(ErrCodeInvalidInput, "color %q must be 6 hex digits", c)
	}
	for _, r := range c {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return New(ErrCodeInvalidInput, "color %q must be 6 hex digits", c)
		}
	}
	return nil
}

// ValidatePath validates an output or input file path supplied by a caller.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path traversal not allowed")
		}
	}

	return nil
}
