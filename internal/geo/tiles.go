package geo

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// Dark basemap without labels
const (
	DefaultTileURL     = "https://{s}.basemaps.cartocdn.com/dark_nolabels/{z}/{x}/{y}{r}.png"
	DefaultSubdomains  = "abcd"
	DefaultAttribution = "© OpenStreetMap"
	AttributionURL     = "https://www.openstreetmap.org/copyright"
	RetinaSuffix       = "@2x"
)

// TileSource describes a raster tile endpoint
type TileSource struct {
	URLTemplate string
	Subdomains  string
	Attribution string
	Retina      bool
}

// DefaultTileSource returns the basemap used by the app
func DefaultTileSource() TileSource {
	return TileSource{
		URLTemplate: DefaultTileURL,
		Subdomains:  DefaultSubdomains,
		Attribution: DefaultAttribution,
	}
}

// URL fills the template for tile t. The subdomain is picked from the tile
// coordinates so the same tile always maps to the same host.
func (s TileSource) URL(t maptile.Tile) string {
	sub := ""
	if len(s.Subdomains) > 0 {
		idx := int((t.X + t.Y) % uint32(len(s.Subdomains)))
		sub = s.Subdomains[idx : idx+1]
	}

	r := ""
	if s.Retina {
		r = RetinaSuffix
	}

	return strings.NewReplacer(
		"{s}", sub,
		"{z}", strconv.Itoa(int(t.Z)),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
		"{r}", r,
	).Replace(s.URLTemplate)
}
