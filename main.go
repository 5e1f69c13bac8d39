package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/tnoatlas/atlas/internal/config"
	"github.com/tnoatlas/atlas/internal/geo"
	"github.com/tnoatlas/atlas/internal/logger"
	"github.com/tnoatlas/atlas/internal/media"
	"github.com/tnoatlas/atlas/internal/platform"
	"github.com/tnoatlas/atlas/internal/player"
	"github.com/tnoatlas/atlas/internal/tiles"
	"github.com/tnoatlas/atlas/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.tnoatlas.atlas"
	AppName = "Atlas"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load environment: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      logger.LogLevel(env.LogLevel),
		OutputPath: env.LogFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Atlas starting", logger.String("version", version))

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(AppName)
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))
	if icon, err := ui.LoadLogoResource(); err == nil {
		myWindow.SetIcon(icon)
	}

	// Player
	settings := config.NewSettings(myApp)
	backend := media.NewBackend(media.DefaultSampleRate, fyne.Do)
	defer backend.Close()

	controller, err := newController(env, settings, backend)
	if err != nil {
		logger.Error("Player disabled", logger.ErrorField(err))
	}

	// Tiles
	fetcher, closeTiles := newTileFetcher(env)
	defer closeTiles()

	opts := ui.Options{
		Loader:    geo.NewLoader(),
		MapSource: env.GeoJSON,
		Language:  env.Language,
	}
	if controller != nil {
		opts.Player = controller
	}
	if fetcher != nil {
		opts.Tiles = fetcher
		opts.Attribution = fetcher.Source().Attribution
	}

	root := ui.NewRootUI(myWindow, opts)
	defer root.Close()
	root.LoadMap()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if env.Watch && !env.IsRemoteGeoJSON() {
		err := platform.WatchFile(ctx, env.GeoJSON, platform.DefaultDebounce, func() {
			logger.Info("Map data changed, reloading", logger.String("source", env.GeoJSON))
			root.ReloadMap()
		})
		if err != nil {
			logger.Warn("Map hot reload disabled", logger.ErrorField(err))
		}
	}

	myWindow.ShowAndRun()
	logger.Info("Atlas stopped")
}

func newController(env *config.Env, settings *config.Settings, backend *media.Backend) (*player.Controller, error) {
	playlist, err := platform.LoadPlaylist(env.Playlist, env.MediaDir)
	if err != nil {
		return nil, err
	}

	tracks := make([]player.Media, playlist.Len())
	for i := range tracks {
		tracks[i] = backend.NewTrack(i, playlist.At(i).Source)
	}

	controller, err := player.NewController(playlist, tracks, settings, player.WithDispatcher(fyne.Do))
	if err != nil {
		return nil, err
	}
	backend.SetEvents(controller)
	backend.Start(media.DefaultPollInterval)

	logger.Info("Playlist loaded",
		logger.String("title", playlist.Title),
		logger.Int("tracks", playlist.Len()),
		logger.Int("start", controller.State().CurrentTrackIndex))
	return controller, nil
}

// newTileFetcher builds the basemap fetcher with its disk cache. Without a
// fetcher the map is drawn on a blank background.
func newTileFetcher(env *config.Env) (*tiles.Fetcher, func()) {
	source := geo.DefaultTileSource()
	if env.TileURL != "" {
		source.URLTemplate = env.TileURL
	}
	source.Retina = env.TileRetina

	var store *tiles.Store
	if env.DiskTileCache() {
		dir := env.TileCache
		if dir == "" {
			if d, err := platform.TileCacheDir(); err == nil {
				dir = d
			}
		}
		if dir != "" {
			s, err := tiles.OpenStore(filepath.Clean(dir), tiles.DefaultStoreTTL)
			if err != nil {
				logger.Warn("Tile disk cache disabled", logger.String("dir", dir), logger.ErrorField(err))
			} else {
				store = s
			}
		}
	}

	fetcher, err := tiles.NewFetcher(source, tiles.Options{Store: store})
	if err != nil {
		logger.Error("Basemap disabled", logger.ErrorField(err))
		if store != nil {
			store.Close()
		}
		return nil, func() {}
	}

	return fetcher, func() {
		fetcher.Close()
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Warn("Tile cache close failed", logger.ErrorField(err))
			}
		}
	}
}
