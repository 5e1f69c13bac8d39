package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MarkerKind selects the marker icon of a point
type MarkerKind int

const (
	MarkerGeneric MarkerKind = iota
	MarkerCapital
)

// Marker icon geometry in pixels
const (
	MarkerSize   = 20
	MarkerAnchor = 10
)

// String returns the marker class name
func (k MarkerKind) String() string {
	if k == MarkerCapital {
		return "capital"
	}
	return "generic"
}

// Marker is a point feature ready to be drawn
type Marker struct {
	Position orb.Point
	Kind     MarkerKind
	Popup    Popup
}

// Shape is a line or polygon feature ready to be drawn
type Shape struct {
	Geometry orb.Geometry
	Style    Style
	Popup    Popup
}

// Layer is the drawable content of a feature collection
type Layer struct {
	Markers []Marker
	Shapes  []Shape
}

// BuildLayer classifies every feature. Points (including each point of a
// MultiPoint) become markers; everything else becomes a styled shape.
// Features without geometry are skipped.
func BuildLayer(fc *geojson.FeatureCollection) *Layer {
	layer := &Layer{}
	if fc == nil {
		return layer
	}

	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Point:
			layer.Markers = append(layer.Markers, newMarker(g, f.Properties))
		case orb.MultiPoint:
			for _, p := range g {
				layer.Markers = append(layer.Markers, newMarker(p, f.Properties))
			}
		default:
			layer.Shapes = append(layer.Shapes, Shape{
				Geometry: g,
				Style:    StyleFor(f.Properties),
				Popup:    ShapePopup(f.Properties),
			})
		}
	}
	return layer
}

func newMarker(p orb.Point, props geojson.Properties) Marker {
	kind := MarkerGeneric
	if IsCapital(props) {
		kind = MarkerCapital
	}
	return Marker{
		Position: p,
		Kind:     kind,
		Popup:    PointPopup(props),
	}
}

// Len returns the number of drawable items
func (l *Layer) Len() int {
	return len(l.Markers) + len(l.Shapes)
}
