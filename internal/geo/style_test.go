package geo

import (
	"image/color"
	"testing"

	"github.com/paulmach/orb/geojson"
)

func TestStyleFor(t *testing.T) {
	defaults := Style{
		Color:       DefaultStrokeColor,
		Weight:      DefaultStrokeWeight,
		Opacity:     DefaultStrokeOpacity,
		FillColor:   DefaultFillColor,
		FillOpacity: DefaultFillOpacity,
	}

	tests := []struct {
		name     string
		props    geojson.Properties
		expected Style
	}{
		{"nil properties", nil, defaults},
		{"empty properties", geojson.Properties{}, defaults},
		{
			name: "all keys",
			props: geojson.Properties{
				"stroke":         "#ff0000",
				"stroke-width":   float64(4),
				"stroke-opacity": 0.3,
				"fill":           "#00ff00",
				"fill-opacity":   0.9,
			},
			expected: Style{Color: "#ff0000", Weight: 4, Opacity: 0.3, FillColor: "#00ff00", FillOpacity: 0.9},
		},
		{
			name:     "string numbers",
			props:    geojson.Properties{"stroke-width": "3px", "fill-opacity": "0.25"},
			expected: Style{Color: DefaultStrokeColor, Weight: 3, Opacity: DefaultStrokeOpacity, FillColor: DefaultFillColor, FillOpacity: 0.25},
		},
		{
			name:     "zero falls back",
			props:    geojson.Properties{"stroke-width": float64(0), "stroke-opacity": float64(0), "fill-opacity": "0"},
			expected: defaults,
		},
		{
			name:     "garbage falls back",
			props:    geojson.Properties{"stroke-width": "wide", "stroke-opacity": "NaN", "stroke": ""},
			expected: defaults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StyleFor(tt.props); got != tt.expected {
				t.Errorf("StyleFor() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input    string
		expected color.NRGBA
	}{
		{"#555", color.NRGBA{0x55, 0x55, 0x55, 0xff}},
		{"#a1b2c3", color.NRGBA{0xa1, 0xb2, 0xc3, 0xff}},
		{"red", color.NRGBA{0x33, 0x33, 0x33, 0xff}},
		{"", color.NRGBA{0x33, 0x33, 0x33, 0xff}},
	}

	for _, test := range tests {
		if got := ParseHexColor(test.input, "#333"); got != test.expected {
			t.Errorf("ParseHexColor(%q) = %v, expected %v", test.input, got, test.expected)
		}
	}
}

func TestStyle_RGBA(t *testing.T) {
	s := Style{Color: "#ff0000", Opacity: 1, FillColor: "#0000ff", FillOpacity: 0.5}

	if got := s.StrokeRGBA(); got != (color.NRGBA{0xff, 0, 0, 0xff}) {
		t.Errorf("StrokeRGBA() = %v", got)
	}
	if got := s.FillRGBA(); got != (color.NRGBA{0, 0, 0xff, 128}) {
		t.Errorf("FillRGBA() = %v", got)
	}
}

func TestParseIntPrefix(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"3", 3, true},
		{"3px", 3, true},
		{"2.9", 2, true},
		{" -4", -4, true},
		{"px", 0, false},
		{"", 0, false},
		{"+", 0, false},
	}

	for _, test := range tests {
		got, ok := parseIntPrefix(test.input)
		if got != test.expected || ok != test.ok {
			t.Errorf("parseIntPrefix(%q) = %d, %v, expected %d, %v", test.input, got, ok, test.expected, test.ok)
		}
	}
}

func TestParseFloatPrefix(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"0.5", 0.5, true},
		{".75", 0.75, true},
		{"0.5abc", 0.5, true},
		{"1e", 1, true},
		{"Infinity", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, test := range tests {
		got, ok := parseFloatPrefix(test.input)
		if got != test.expected || ok != test.ok {
			t.Errorf("parseFloatPrefix(%q) = %v, %v, expected %v, %v", test.input, got, ok, test.expected, test.ok)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"empty string", "", ""},
		{"string", "Тбилиси", "Тбилиси"},
		{"false", false, ""},
		{"true", true, "true"},
		{"zero", float64(0), ""},
		{"float", 1.5, "1.5"},
		{"whole float", float64(1200000), "1200000"},
		{"array", []interface{}{"a", float64(2), nil}, "a,2,"},
		{"object", map[string]interface{}{"k": "v"}, `{"k":"v"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.value); got != tt.expected {
				t.Errorf("FormatValue(%v) = %q, expected %q", tt.value, got, tt.expected)
			}
		})
	}
}
