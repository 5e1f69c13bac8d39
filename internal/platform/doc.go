// Package platform contains OS and filesystem integration: the playlist
// manifest, media file lookup, cache locations and file watching.
package platform
