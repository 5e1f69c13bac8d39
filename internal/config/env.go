package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvGeoJSON  = "ATLAS_GEOJSON"
	EnvPlaylist = "ATLAS_PLAYLIST"
	EnvMediaDir = "ATLAS_MEDIA_DIR"
	EnvLogFile  = "ATLAS_LOG_FILE"
	EnvLogLevel = "ATLAS_LOG_LEVEL"
	EnvWatch    = "ATLAS_WATCH"
	EnvLanguage = "ATLAS_LANG"

	EnvTileURL    = "ATLAS_TILE_URL"
	EnvTileCache  = "ATLAS_TILE_CACHE"
	EnvTileRetina = "ATLAS_TILE_RETINA"
)

// TileCacheOff disables the on-disk tile cache
const TileCacheOff = "off"

// Environment defaults
const (
	DefaultGeoJSON  = "map.geojson"
	DefaultMediaDir = "media"
	DefaultLogLevel = "info"
	DefaultLanguage = "ru"
)

// Env holds startup configuration read from the environment
type Env struct {
	GeoJSON  string // file path or http(s) URL
	Playlist string // optional TOML manifest; empty uses the built-in playlist
	MediaDir string // base directory for relative track files
	LogFile  string // empty disables file logging
	LogLevel string
	Watch    bool // reload the map when a local GeoJSON file changes
	Language string

	TileURL    string // empty uses the built-in basemap
	TileCache  string // directory; empty picks the user cache dir, "off" keeps tiles in memory
	TileRetina bool
}

// LoadEnv reads configuration from the environment. Values from the given
// .env files (or ./.env when none are given) fill in variables that are not
// already set. A missing .env file is not an error.
func LoadEnv(files ...string) (*Env, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return &Env{
		GeoJSON:  getEnv(EnvGeoJSON, DefaultGeoJSON),
		Playlist: getEnv(EnvPlaylist, ""),
		MediaDir: getEnv(EnvMediaDir, DefaultMediaDir),
		LogFile:  getEnv(EnvLogFile, ""),
		LogLevel: strings.ToLower(getEnv(EnvLogLevel, DefaultLogLevel)),
		Watch:    getEnvBool(EnvWatch, false),
		Language: getEnv(EnvLanguage, DefaultLanguage),

		TileURL:    getEnv(EnvTileURL, ""),
		TileCache:  getEnv(EnvTileCache, ""),
		TileRetina: getEnvBool(EnvTileRetina, false),
	}, nil
}

// IsRemoteGeoJSON reports whether the map data is fetched over HTTP
func (e *Env) IsRemoteGeoJSON() bool {
	return strings.HasPrefix(e.GeoJSON, "http://") || strings.HasPrefix(e.GeoJSON, "https://")
}

// DiskTileCache reports whether tiles should be persisted between runs
func (e *Env) DiskTileCache() bool {
	return !strings.EqualFold(e.TileCache, TileCacheOff)
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
