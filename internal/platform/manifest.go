package platform

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tnoatlas/atlas/internal/logger"
	"github.com/tnoatlas/atlas/internal/model"
)

//go:embed default_playlist.toml
var defaultManifest []byte

// DefaultPlaylistTitle is used when a manifest has no title
const DefaultPlaylistTitle = "Playlist"

// ErrTrackFileMissing is returned for a manifest entry without a file
var ErrTrackFileMissing = errors.New("track has no file")

type manifest struct {
	Title  string          `toml:"title"`
	Tracks []manifestTrack `toml:"track"`
}

type manifestTrack struct {
	Title string `toml:"title"`
	File  string `toml:"file"`
}

// LoadPlaylist reads the manifest at path, or the built-in playlist when path
// is empty. Relative track files are resolved against mediaDir.
func LoadPlaylist(path, mediaDir string) (*model.Playlist, error) {
	data := defaultManifest
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read playlist manifest: %w", err)
		}
	}

	playlist, err := ParsePlaylist(data, mediaDir)
	if err != nil {
		return nil, fmt.Errorf("parse playlist manifest %q: %w", path, err)
	}
	return playlist, nil
}

// ParsePlaylist decodes a TOML manifest into a playlist
func ParsePlaylist(data []byte, mediaDir string) (*model.Playlist, error) {
	var m manifest
	meta, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}

	for _, key := range meta.Undecoded() {
		logger.Warn("Unknown playlist manifest key", logger.String("key", key.String()))
	}

	tracks := make([]*model.Track, 0, len(m.Tracks))
	for i, entry := range m.Tracks {
		file := strings.TrimSpace(entry.File)
		if file == "" {
			return nil, fmt.Errorf("track %d: %w", i+1, ErrTrackFileMissing)
		}
		tracks = append(tracks, model.NewTrack(strings.TrimSpace(entry.Title), ResolveMediaPath(mediaDir, file)))
	}

	title := m.Title
	if title == "" {
		title = DefaultPlaylistTitle
	}
	return model.NewPlaylist(title, tracks)
}

// ResolveMediaPath joins a manifest file with the media directory and, when
// that file does not exist, falls back to a similarly named file next to it
func ResolveMediaPath(mediaDir, file string) string {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(mediaDir, file)
	}

	found, err := FindFileWithFallback(path)
	if err != nil {
		return path
	}
	if found != path {
		logger.Debug("Using similar media file",
			logger.String("wanted", path),
			logger.String("found", found))
	}
	return found
}
