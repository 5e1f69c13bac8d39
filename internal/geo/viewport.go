package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"
	"github.com/samber/lo"
)

// TileSize is the edge of a raster tile in pixels
const TileSize = 256

// Caucasus region: roughly from the Georgian-Turkish border in the south-west
// to Stavropol, Dagestan and a strip of the Caspian in the north-east.
var (
	RegionBounds = orb.Bound{
		Min: orb.Point{37.0, 42.0},
		Max: orb.Point{49.0, 47.0},
	}
	RegionCenter = orb.Point{44.0, 43.0}
)

// Zoom limits
const (
	MinZoom     = 7
	MaxZoom     = 18
	InitialZoom = 7
)

// Viewport is the bounded, zoom-limited camera over the map
type Viewport struct {
	Bounds  orb.Bound
	MinZoom int
	MaxZoom int
	Center  orb.Point
	Zoom    int
}

// NewRegionViewport returns the viewport for the Caucasus map
func NewRegionViewport() Viewport {
	return Viewport{
		Bounds:  RegionBounds,
		MinZoom: MinZoom,
		MaxZoom: MaxZoom,
		Center:  RegionCenter,
		Zoom:    InitialZoom,
	}
}

// ClampZoom limits z to the viewport zoom range
func (v Viewport) ClampZoom(z int) int {
	return lo.Clamp(z, v.MinZoom, v.MaxZoom)
}

// Contains reports whether p lies inside the viewport bounds
func (v Viewport) Contains(p orb.Point) bool {
	return v.Bounds.Contains(p)
}

// ClampCenter moves center so that a view of width x height pixels at zoom
// stays inside the bounds. When the view is larger than the bounds on an
// axis, the bounds are centred on that axis.
func (v Viewport) ClampCenter(center orb.Point, zoom int, width, height float64) orb.Point {
	cx, cy := Project(center, zoom)
	minX, maxY := Project(v.Bounds.Min, zoom)
	maxX, minY := Project(v.Bounds.Max, zoom)

	cx = clampAxis(cx, minX, maxX, width/2)
	cy = clampAxis(cy, minY, maxY, height/2)

	return Unproject(cx, cy, zoom)
}

// Pan moves the viewport by dx, dy screen pixels and clamps it
func (v Viewport) Pan(dx, dy, width, height float64) Viewport {
	cx, cy := Project(v.Center, v.Zoom)
	v.Center = v.ClampCenter(Unproject(cx-dx, cy-dy, v.Zoom), v.Zoom, width, height)
	return v
}

// ZoomBy changes zoom by delta, keeping the centre inside the bounds
func (v Viewport) ZoomBy(delta int, width, height float64) Viewport {
	v.Zoom = v.ClampZoom(v.Zoom + delta)
	v.Center = v.ClampCenter(v.Center, v.Zoom, width, height)
	return v
}

// ZoomAround changes zoom by delta while keeping the map point under the
// screen position x, y fixed, then clamps the centre
func (v Viewport) ZoomAround(delta int, x, y, width, height float64) Viewport {
	zoom := v.ClampZoom(v.Zoom + delta)
	if zoom == v.Zoom {
		return v
	}

	anchor := v.FromScreen(x, y, width, height)
	ax, ay := Project(anchor, zoom)
	v.Zoom = zoom
	v.Center = v.ClampCenter(Unproject(ax-(x-width/2), ay-(y-height/2), zoom), zoom, width, height)
	return v
}

func clampAxis(c, lower, upper, half float64) float64 {
	if upper-lower <= 2*half {
		return (lower + upper) / 2
	}
	return math.Min(math.Max(c, lower+half), upper-half)
}

// Project converts a lon/lat point to global pixel coordinates at zoom
func Project(p orb.Point, zoom int) (x, y float64) {
	f := maptile.Fraction(p, maptile.Zoom(zoom))
	return f[0] * TileSize, f[1] * TileSize
}

// Unproject converts global pixel coordinates at zoom back to lon/lat
func Unproject(x, y float64, zoom int) orb.Point {
	n := math.Exp2(float64(zoom)) * TileSize
	half := orb.EarthRadius * math.Pi // half the Mercator world width in metres
	return project.Mercator.ToWGS84(orb.Point{(2*x/n - 1) * half, (1 - 2*y/n) * half})
}

// Placement is a tile and the screen position of its top-left corner
type Placement struct {
	Tile maptile.Tile
	X, Y float64
}

// VisibleTiles lists the tiles covering a width x height view centred on the
// viewport centre. Tiles outside the world are skipped; the map does not wrap.
func (v Viewport) VisibleTiles(width, height float64) []Placement {
	cx, cy := Project(v.Center, v.Zoom)
	left, top := cx-width/2, cy-height/2

	n := int(math.Exp2(float64(v.Zoom)))
	minTX := int(math.Floor(left / TileSize))
	maxTX := int(math.Floor((left + width) / TileSize))
	minTY := int(math.Floor(top / TileSize))
	maxTY := int(math.Floor((top + height) / TileSize))

	var placements []Placement
	for ty := minTY; ty <= maxTY; ty++ {
		if ty < 0 || ty >= n {
			continue
		}
		for tx := minTX; tx <= maxTX; tx++ {
			if tx < 0 || tx >= n {
				continue
			}
			placements = append(placements, Placement{
				Tile: maptile.New(uint32(tx), uint32(ty), maptile.Zoom(v.Zoom)),
				X:    float64(tx*TileSize) - left,
				Y:    float64(ty*TileSize) - top,
			})
		}
	}
	return placements
}

// FromScreen converts screen coordinates of a width x height view to lon/lat
func (v Viewport) FromScreen(x, y, width, height float64) orb.Point {
	cx, cy := Project(v.Center, v.Zoom)
	return Unproject(cx+x-width/2, cy+y-height/2, v.Zoom)
}

// ToScreen converts p to screen coordinates for a width x height view
func (v Viewport) ToScreen(p orb.Point, width, height float64) (x, y float64) {
	cx, cy := Project(v.Center, v.Zoom)
	px, py := Project(p, v.Zoom)
	return px - cx + width/2, py - cy + height/2
}
