// Package palette maps style keys to concrete colors for a named palette.
//
// Palettes form a closed set. An unknown palette name is rejected by
// [ParseName] so the error surfaces when a diagram is built, never as a
// silent substitution during layout. Style keys are more forgiving: an
// unknown key resolves to the primary color and the definition gate reports
// it as a warning.
//
// Colors are 6-digit uppercase hex strings without a leading '#'.
package palette

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/slidekit/pkg/errors"
)

// Name identifies one of the built-in palettes.
type Name string

const (
	CorporateBlue    Name = "corporate-blue"
	WarmProfessional Name = "warm-professional"
	ModernSlate      Name = "modern-slate"
	ForestGreen      Name = "forest-green"
)

// DefaultName is used when a diagram names no palette.
const DefaultName = CorporateBlue

// Palette is the fixed five-color record every style key resolves against.
type Palette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
	Neutral   string `json:"neutral"`
	Light     string `json:"light"`
}

var palettes = map[Name]Palette{
	CorporateBlue:    {Primary: "2E5090", Secondary: "5B8DB8", Accent: "C4A35A", Neutral: "6B7280", Light: "F1F5F9"},
	WarmProfessional: {Primary: "7C3A2D", Secondary: "C4734F", Accent: "D4A847", Neutral: "6B7280", Light: "FDF6F0"},
	ModernSlate:      {Primary: "334155", Secondary: "64748B", Accent: "0EA5E9", Neutral: "94A3B8", Light: "F1F5F9"},
	ForestGreen:      {Primary: "1B5E42", Secondary: "3D8B6E", Accent: "D4A847", Neutral: "6B7280", Light: "F0F9F4"},
}

// Names lists the built-in palettes in a stable order.
func Names() []Name {
	return []Name{CorporateBlue, WarmProfessional, ModernSlate, ForestGreen}
}

// ParseName normalizes s ("Forest Green", "forest_green", "forest-green")
// and returns the matching palette name. Empty input selects [DefaultName].
func ParseName(s string) (Name, error) {
	if s == "" {
		return DefaultName, nil
	}
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	n := Name(norm)
	if _, ok := palettes[n]; !ok {
		return "", errors.New(errors.ErrCodeInvalidPalette, "unknown palette %q (valid: %s)", s, joinNames())
	}
	return n, nil
}

func joinNames() string {
	names := Names()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}

// Get returns the palette for n. Names that did not come from [ParseName]
// resolve to the default palette.
func Get(n Name) Palette {
	if p, ok := palettes[n]; ok {
		return p
	}
	return palettes[DefaultName]
}

// StyleKey selects a palette slot for a shape.
type StyleKey int

const (
	StyleUnknown StyleKey = iota
	StylePrimary
	StyleSecondary
	StyleAccent
	StyleNeutral
	StyleLight
)

var styleNames = map[string]StyleKey{
	"primary":   StylePrimary,
	"secondary": StyleSecondary,
	"accent":    StyleAccent,
	"neutral":   StyleNeutral,
	"light":     StyleLight,
}

// ParseStyle maps a style name to its key. Empty input is primary; anything
// else unrecognized is [StyleUnknown].
func ParseStyle(s string) StyleKey {
	if s == "" {
		return StylePrimary
	}
	if k, ok := styleNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k
	}
	return StyleUnknown
}

func (k StyleKey) String() string {
	for name, v := range styleNames {
		if v == k {
			return name
		}
	}
	return "unknown"
}

// Style is the resolved color triple for one element.
type Style struct {
	Fill   string `json:"fill"`
	Border string `json:"border"`
	Text   string `json:"text"`
}

// Text colors for dark and light fills.
const (
	TextOnDark  = "FFFFFF"
	TextOnLight = "1E293B"
)

// Resolve returns the fill, border and text colors of key in palette n.
// Unknown keys fall back to primary.
func Resolve(n Name, key StyleKey) Style {
	p := Get(n)
	var fill string
	switch key {
	case StyleSecondary:
		fill = p.Secondary
	case StyleAccent:
		fill = p.Accent
	case StyleNeutral:
		fill = p.Neutral
	case StyleLight:
		fill = p.Light
	default:
		fill = p.Primary
	}
	return FromFill(fill)
}

// FromFill derives a border and text color for an arbitrary fill.
func FromFill(fill string) Style {
	s := Style{Fill: strings.ToUpper(fill), Border: Shade(fill, 0.78), Text: TextOnDark}
	if IsLight(fill) {
		s.Text = TextOnLight
		s.Border = Shade(fill, 0.85)
	}
	return s
}

// LevelStyle returns the fill ramp used by the hierarchy strategy: the
// root level is the darkest, deeper levels get lighter.
func LevelStyle(n Name, level int) Style {
	p := Get(n)
	switch {
	case level <= 0:
		return FromFill(Shade(p.Primary, 0.7))
	case level == 1:
		return FromFill(p.Primary)
	case level == 2:
		return FromFill(p.Secondary)
	default:
		return FromFill(p.Neutral)
	}
}

// TitleColor is the color of the slide title text.
func TitleColor(n Name) string { return Shade(Get(n).Primary, 0.7) }

// LaneFill is the band color of swim lanes.
func LaneFill(n Name) string { return Get(n).Light }

// Background gradient stops for the slide.
const (
	BackgroundTop    = "F8FAFF"
	BackgroundBottom = "EEF2FA"
)

// Shade scales the perceptual lightness of hex by factor (0..1 darkens).
// Invalid input is returned unchanged.
func Shade(hex string, factor float64) string {
	c, err := colorful.Hex("#" + strings.TrimPrefix(hex, "#"))
	if err != nil {
		return strings.ToUpper(hex)
	}
	h, ch, l := c.Hcl()
	return toHex(colorful.Hcl(h, ch, l*factor).Clamped())
}

// IsLight reports whether hex is light enough to need dark text.
func IsLight(hex string) bool {
	c, err := colorful.Hex("#" + strings.TrimPrefix(hex, "#"))
	if err != nil {
		return false
	}
	l, _, _ := c.Lab()
	return l > 0.7
}

func toHex(c colorful.Color) string {
	return strings.ToUpper(strings.TrimPrefix(c.Hex(), "#"))
}
