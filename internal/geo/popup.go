package geo

import (
	"sort"

	"github.com/paulmach/orb/geojson"
	"github.com/samber/lo"
)

// Popup size limits in pixels
const (
	PopupMaxWidth     = 300
	PopupMinWidth     = 150
	PopupContentWidth = 250
)

// HiddenKeys are styling and structural properties never listed in popups
var HiddenKeys = []string{
	"stroke", "stroke-width", "stroke-opacity",
	"fill", "fill-opacity",
	"flag", "z-index", "capital", "name",
}

// PropertyRow is one label/value line of a point popup
type PropertyRow struct {
	Key   string
	Value string
}

// Popup is the content shown when a marker or shape is tapped
type Popup struct {
	FlagURL string
	Title   string // bold heading, shapes only
	Rows    []PropertyRow

	NoData bool // feature has no properties at all
	NoName bool // shape without a name
}

// IsCapital reports whether a point is marked as a capital
func IsCapital(props geojson.Properties) bool {
	switch v := props["capital"].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// PointPopup lists every visible property of a point feature in key order
func PointPopup(props geojson.Properties) Popup {
	if props == nil {
		return Popup{NoData: true}
	}

	popup := Popup{FlagURL: FormatValue(props["flag"])}

	keys := lo.Filter(lo.Keys(props), func(k string, _ int) bool {
		return !lo.Contains(HiddenKeys, k)
	})
	sort.Strings(keys)

	popup.Rows = lo.Map(keys, func(k string, _ int) PropertyRow {
		return PropertyRow{Key: k, Value: FormatValue(props[k])}
	})
	return popup
}

// ShapePopup shows only the flag and the name of a line or polygon
func ShapePopup(props geojson.Properties) Popup {
	if props == nil {
		return Popup{NoData: true}
	}

	popup := Popup{
		FlagURL: FormatValue(props["flag"]),
		Title:   FormatValue(props["name"]),
	}
	popup.NoName = popup.Title == ""
	return popup
}
