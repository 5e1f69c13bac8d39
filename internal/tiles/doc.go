// Package tiles downloads basemap raster tiles and keeps them in a two-level
// cache: a bounded in-memory cache in front of an optional on-disk store.
package tiles
