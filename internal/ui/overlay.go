package ui

import (
	"image"
	"image/color"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
	"golang.org/x/image/vector"

	"github.com/tnoatlas/atlas/internal/geo"
)

// projectShapes converts shape geometries to screen coordinates of a
// width x height view. The layer geometry is not modified.
func projectShapes(shapes []geo.Shape, vp geo.Viewport, width, height float64) []orb.Geometry {
	toScreen := func(p orb.Point) orb.Point {
		x, y := vp.ToScreen(p, width, height)
		return orb.Point{x, y}
	}

	projected := make([]orb.Geometry, len(shapes))
	for i, s := range shapes {
		if s.Geometry == nil {
			continue
		}
		projected[i] = project.Geometry(orb.Clone(s.Geometry), toScreen)
	}
	return projected
}

// renderOverlay rasterizes projected shapes into a w x h image. scale maps
// screen coordinates to image pixels.
func renderOverlay(shapes []geo.Shape, projected []orb.Geometry, w, h int, scale float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return img
	}

	z := vector.NewRasterizer(w, h)
	for i, g := range projected {
		if g == nil || i >= len(shapes) {
			continue
		}
		style := shapes[i].Style
		polygons, lines := flatten(g)

		if len(polygons) > 0 {
			z.Reset(w, h)
			for _, poly := range polygons {
				for _, ring := range poly {
					addRing(z, ring, scale)
				}
			}
			z.Draw(img, img.Bounds(), image.NewUniform(style.FillRGBA()), image.Point{})

			for _, poly := range polygons {
				for _, ring := range poly {
					lines = append(lines, orb.LineString(ring))
				}
			}
		}

		if len(lines) > 0 {
			z.Reset(w, h)
			half := float64(style.Weight) * scale / 2
			for _, ls := range lines {
				addStroke(z, ls, half, scale)
			}
			z.Draw(img, img.Bounds(), image.NewUniform(style.StrokeRGBA()), image.Point{})
		}
	}
	return img
}

// flatten splits a geometry into fillable polygons and stroked lines
func flatten(g orb.Geometry) ([]orb.Polygon, []orb.LineString) {
	switch g := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}, nil
	case orb.MultiPolygon:
		return g, nil
	case orb.Ring:
		return []orb.Polygon{{g}}, nil
	case orb.LineString:
		return nil, []orb.LineString{g}
	case orb.MultiLineString:
		return nil, g
	case orb.Collection:
		var polygons []orb.Polygon
		var lines []orb.LineString
		for _, child := range g {
			p, l := flatten(child)
			polygons = append(polygons, p...)
			lines = append(lines, l...)
		}
		return polygons, lines
	}
	return nil, nil
}

func addRing(z *vector.Rasterizer, ring orb.Ring, scale float64) {
	if len(ring) < 3 {
		return
	}
	z.MoveTo(float32(ring[0][0]*scale), float32(ring[0][1]*scale))
	for _, p := range ring[1:] {
		z.LineTo(float32(p[0]*scale), float32(p[1]*scale))
	}
	z.ClosePath()
}

// addStroke adds one quad per segment. All quads share the same winding so
// overlaps at the joints do not cancel out.
func addStroke(z *vector.Rasterizer, ls orb.LineString, half, scale float64) {
	for i := 1; i < len(ls); i++ {
		x0, y0 := ls[i-1][0]*scale, ls[i-1][1]*scale
		x1, y1 := ls[i][0]*scale, ls[i][1]*scale
		dx, dy := x1-x0, y1-y0
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// unit normal times half the stroke width, plus a square cap
		nx, ny := -dy/length*half, dx/length*half
		cx, cy := dx/length*half, dy/length*half

		z.MoveTo(float32(x0+nx-cx), float32(y0+ny-cy))
		z.LineTo(float32(x1+nx+cx), float32(y1+ny+cy))
		z.LineTo(float32(x1-nx+cx), float32(y1-ny+cy))
		z.LineTo(float32(x0-nx-cx), float32(y0-ny-cy))
		z.ClosePath()
	}
}

// hitShape reports whether screen point p touches the projected geometry.
// Polygons are hit inside; lines within tolerance pixels of the stroke.
func hitShape(g orb.Geometry, p orb.Point, tolerance float64) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Ring:
		return planar.RingContains(g, p)
	case orb.LineString, orb.MultiLineString:
		return planar.DistanceFrom(g, p) <= tolerance
	case orb.Collection:
		for _, child := range g {
			if hitShape(child, p, tolerance) {
				return true
			}
		}
	}
	return false
}

// markerColors returns the fill of a marker icon
func markerColors(kind geo.MarkerKind) (fill, border color.Color) {
	if kind == geo.MarkerCapital {
		return ColorCapital, ColorMarkerBorder
	}
	return ColorMarkerFill, ColorMarkerBorder
}
