// Package textfit estimates the largest font size at which a label fits a
// shape, using an average-glyph-width model.
//
// Sizes are in hundredths of a point (1400 = 14pt), the unit slide formats
// store font sizes in. The estimate is deterministic and cheap; the renderer
// still owns final text layout, so this only has to be close.
package textfit

import (
	"unicode/utf8"

	"github.com/matzehuels/slidekit/pkg/core/geom"
)

// Size limits in hundredths of a point.
const (
	MinSize  = 800
	MaxSize  = 1400
	SizeStep = 100
)

// Container insets in EMU: 0.1in left/right and 0.05in top/bottom.
const (
	InsetX int64 = 91440
	InsetY int64 = 45720
)

const (
	// average glyph advance as a fraction of the em, in ten-thousandths
	glyphWidthRatio = 5500
	// line height as a multiple of the font size, in tenths
	lineHeightRatio = 12
)

// GlyphWidth returns the average glyph advance in EMU at size.
func GlyphWidth(size int) int64 {
	return int64(size) * geom.EMUPerPoint * glyphWidthRatio / (100 * 10000)
}

// LineHeight returns the line height in EMU at size.
func LineHeight(size int) int64 {
	return int64(size) * geom.EMUPerPoint * lineHeightRatio / (100 * 10)
}

// TextWidth returns the estimated single-line width of text in EMU at size.
func TextWidth(text string, size int) int64 {
	return int64(utf8.RuneCountInString(text)) * GlyphWidth(size)
}

// Estimate is EstimateFontSize with the default 8pt..14pt range.
func Estimate(text string, w, h int64) int {
	return EstimateFontSize(text, w, h, MinSize, MaxSize)
}

// EstimateFontSize returns the largest size in [minSize, maxSize], stepping
// down one point at a time, at which text fits the w×h container after insets.
// Empty text returns maxSize. When nothing fits, minSize is returned:
// overflow is tolerated, illegibility is not.
func EstimateFontSize(text string, w, h int64, minSize, maxSize int) int {
	if text == "" {
		return maxSize
	}
	usableW := w - 2*InsetX
	usableH := h - 2*InsetY
	for size := maxSize; size >= minSize; size -= SizeStep {
		if TextWidth(text, size) <= usableW && LineHeight(size) <= usableH {
			return size
		}
	}
	return minSize
}

// Fits reports whether text fits the container width at size. Height is not
// checked.
func Fits(text string, w, h int64, size int) bool {
	if text == "" {
		return true
	}
	return TextWidth(text, size) <= w-2*InsetX
}
