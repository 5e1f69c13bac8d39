package geo

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Style defaults for lines and polygons
const (
	DefaultStrokeColor   = "#555"
	DefaultStrokeWeight  = 2
	DefaultStrokeOpacity = 0.8
	DefaultFillColor     = "#333"
	DefaultFillOpacity   = 0.5
)

// Style is the resolved rendering style of a line or polygon
type Style struct {
	Color       string
	Weight      int
	Opacity     float64
	FillColor   string
	FillOpacity float64
}

// StyleFor resolves the simplestyle keys of a feature. Missing, empty, zero
// or unparseable values fall back to the defaults.
func StyleFor(props geojson.Properties) Style {
	style := Style{
		Color:       DefaultStrokeColor,
		Weight:      DefaultStrokeWeight,
		Opacity:     DefaultStrokeOpacity,
		FillColor:   DefaultFillColor,
		FillOpacity: DefaultFillOpacity,
	}

	if c := FormatValue(props["stroke"]); c != "" {
		style.Color = c
	}
	if w, ok := parseIntPrefix(FormatValue(props["stroke-width"])); ok && w != 0 {
		style.Weight = w
	}
	if o, ok := parseFloatPrefix(FormatValue(props["stroke-opacity"])); ok && o != 0 {
		style.Opacity = o
	}
	if c := FormatValue(props["fill"]); c != "" {
		style.FillColor = c
	}
	if o, ok := parseFloatPrefix(FormatValue(props["fill-opacity"])); ok && o != 0 {
		style.FillOpacity = o
	}

	return style
}

// StrokeRGBA returns the stroke colour with its opacity applied
func (s Style) StrokeRGBA() color.NRGBA {
	return withOpacity(ParseHexColor(s.Color, DefaultStrokeColor), s.Opacity)
}

// FillRGBA returns the fill colour with its opacity applied
func (s Style) FillRGBA() color.NRGBA {
	return withOpacity(ParseHexColor(s.FillColor, DefaultFillColor), s.FillOpacity)
}

func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	opacity = math.Max(0, math.Min(1, opacity))
	c.A = uint8(math.Round(opacity * 255))
	return c
}

// ParseHexColor parses #rgb or #rrggbb. Anything else parses fallback.
func ParseHexColor(s, fallback string) color.NRGBA {
	if c, ok := parseHex(s); ok {
		return c
	}
	c, _ := parseHex(fallback)
	return c
}

func parseHex(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// parseIntPrefix parses the leading integer of s the way a lenient web
// parser would: "3px" is 3, "2.9" is 2, "abc" fails
func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseFloatPrefix parses the longest leading decimal number of s
func parseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for end := len(s); end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if err == nil && !strings.ContainsAny(s[:end], "xXpP_") && !isWord(s[:end]) {
			return v, true
		}
	}
	return 0, false
}

// isWord rejects Inf/NaN spellings that ParseFloat accepts
func isWord(s string) bool {
	t := strings.TrimLeft(s, "+-")
	return len(t) > 0 && (t[0] == 'i' || t[0] == 'I' || t[0] == 'n' || t[0] == 'N')
}

// FormatValue renders a property value for display. JSON null, false, 0 and
// the empty string render as an empty string.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if !val {
			return ""
		}
		return "true"
	case float64:
		if val == 0 || math.IsNaN(val) {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		if val == 0 {
			return ""
		}
		return strconv.Itoa(val)
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			if item != nil {
				parts[i] = fmt.Sprint(item)
			}
		}
		return strings.Join(parts, ",")
	case map[string]interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
