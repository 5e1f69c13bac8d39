package geo

// Package geo holds the map side of the app that does not depend on a UI
// toolkit: the bounded viewport and Web-Mercator math, the raster tile
// source, GeoJSON loading, and the marker/style/popup rules applied to
// every feature.
