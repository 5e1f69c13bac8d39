package ui

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/tnoatlas/atlas/internal/geo"
)

var square = orb.Polygon{{{10, 10}, {50, 10}, {50, 50}, {10, 50}, {10, 10}}}

func TestHitShape(t *testing.T) {
	line := orb.LineString{{0, 100}, {100, 100}}

	tests := []struct {
		name     string
		g        orb.Geometry
		p        orb.Point
		expected bool
	}{
		{"inside polygon", square, orb.Point{30, 30}, true},
		{"outside polygon", square, orb.Point{60, 30}, false},
		{"inside multipolygon", orb.MultiPolygon{square}, orb.Point{20, 20}, true},
		{"near line", line, orb.Point{50, 103}, true},
		{"far from line", line, orb.Point{50, 110}, false},
		{"collection", orb.Collection{line, square}, orb.Point{30, 30}, true},
		{"point never hit", orb.Point{30, 30}, orb.Point{30, 30}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hitShape(tt.g, tt.p, 5); got != tt.expected {
				t.Errorf("hitShape() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 1}}
	polygons, lines := flatten(orb.Collection{square, orb.MultiLineString{line, line}, orb.Point{0, 0}})

	if len(polygons) != 1 {
		t.Errorf("Expected 1 polygon, got %d", len(polygons))
	}
	if len(lines) != 2 {
		t.Errorf("Expected 2 lines, got %d", len(lines))
	}
}

func TestProjectShapes_KeepsLayerGeometry(t *testing.T) {
	original := orb.Polygon{{{43, 42.5}, {45, 42.5}, {45, 44}, {43, 44}, {43, 42.5}}}
	shapes := []geo.Shape{{Geometry: original}, {}}

	projected := projectShapes(shapes, geo.NewRegionViewport(), 800, 600)

	if original[0][0] != (orb.Point{43, 42.5}) {
		t.Errorf("Layer geometry was modified: %v", original[0][0])
	}
	if projected[1] != nil {
		t.Errorf("Expected nil projection for missing geometry")
	}

	poly, ok := projected[0].(orb.Polygon)
	if !ok {
		t.Fatalf("Expected orb.Polygon, got %T", projected[0])
	}
	vp := geo.NewRegionViewport()
	x, y := vp.ToScreen(orb.Point{43, 42.5}, 800, 600)
	if poly[0][0] != (orb.Point{x, y}) {
		t.Errorf("Expected first vertex at %v,%v, got %v", x, y, poly[0][0])
	}
}

func TestRenderOverlay(t *testing.T) {
	shapes := []geo.Shape{{Geometry: square, Style: geo.StyleFor(nil)}}
	projected := []orb.Geometry{square}

	img := renderOverlay(shapes, projected, 100, 100, 1)

	if _, _, _, a := img.At(30, 30).RGBA(); a == 0 {
		t.Error("Expected filled pixel inside polygon")
	}
	if _, _, _, a := img.At(80, 80).RGBA(); a != 0 {
		t.Error("Expected transparent pixel outside polygon")
	}
	if _, _, _, a := img.At(10, 30).RGBA(); a == 0 {
		t.Error("Expected stroke on polygon edge")
	}
}

func TestRenderOverlay_Scale(t *testing.T) {
	shapes := []geo.Shape{{Geometry: square, Style: geo.StyleFor(nil)}}
	img := renderOverlay(shapes, []orb.Geometry{square}, 200, 200, 2)

	if _, _, _, a := img.At(90, 90).RGBA(); a == 0 {
		t.Error("Expected scaled polygon to cover (90,90)")
	}
	if _, _, _, a := img.At(150, 150).RGBA(); a != 0 {
		t.Error("Expected (150,150) outside scaled polygon")
	}
}

func TestRenderOverlay_Empty(t *testing.T) {
	img := renderOverlay(nil, nil, 0, 0, 1)
	if !img.Bounds().Empty() {
		t.Errorf("Expected empty image, got %v", img.Bounds())
	}
}
