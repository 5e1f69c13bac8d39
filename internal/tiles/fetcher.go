package tiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/paulmach/orb/maptile"

	"github.com/tnoatlas/atlas/internal/geo"
	"github.com/tnoatlas/atlas/internal/logger"
)

// Fetcher defaults
const (
	DefaultMaxParallel  = 4
	DefaultMemoryBudget = 64 << 20
	DefaultTimeout      = 20 * time.Second
	maxTileSize         = 4 << 20
)

// ErrHTTPStatus is wrapped when a tile server answers with a non-2xx status
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Options configures a Fetcher
type Options struct {
	MaxParallel  int
	MemoryBudget int64
	Client       *http.Client
	Store        *Store // optional
}

// call is an in-flight download shared by concurrent requests for one tile
type call struct {
	done chan struct{}
	data []byte
	err  error
	// abandoned is set when the downloading caller's context ended first
	abandoned bool
}

// Fetcher downloads tiles with bounded parallelism and caches them
type Fetcher struct {
	source   geo.TileSource
	client   *http.Client
	memory   *ristretto.Cache[string, []byte]
	store    *Store
	slots    chan struct{}
	mu       sync.Mutex
	inflight map[string]*call
	onLoaded func(maptile.Tile, []byte)
}

// NewFetcher creates a fetcher for source
func NewFetcher(source geo.TileSource, opts Options) (*Fetcher, error) {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = DefaultMaxParallel
	}
	if opts.MemoryBudget <= 0 {
		opts.MemoryBudget = DefaultMemoryBudget
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: DefaultTimeout}
	}

	memory, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		// about 10x the number of tiles that fit in the budget
		NumCounters: opts.MemoryBudget / 2048,
		MaxCost:     opts.MemoryBudget,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create tile cache: %w", err)
	}

	return &Fetcher{
		source:   source,
		client:   opts.Client,
		memory:   memory,
		store:    opts.Store,
		slots:    make(chan struct{}, opts.MaxParallel),
		inflight: make(map[string]*call),
	}, nil
}

// SetLoadedCallback sets the function called after an asynchronous request
// completes. It runs on the fetching goroutine.
func (f *Fetcher) SetLoadedCallback(callback func(maptile.Tile, []byte)) {
	f.onLoaded = callback
}

// Source returns the tile source
func (f *Fetcher) Source() geo.TileSource {
	return f.source
}

// Cached returns a tile already held in memory
func (f *Fetcher) Cached(t maptile.Tile) ([]byte, bool) {
	return f.memory.Get(f.source.URL(t))
}

// Get returns the tile image bytes from memory, disk or the network
func (f *Fetcher) Get(ctx context.Context, t maptile.Tile) ([]byte, error) {
	return f.FetchURL(ctx, f.source.URL(t))
}

// FetchURL returns any image resource through the same caches as tiles.
// Popups use it for flag images.
func (f *Fetcher) FetchURL(ctx context.Context, key string) ([]byte, error) {
	if data, ok := f.memory.Get(key); ok {
		return data, nil
	}

	f.mu.Lock()
	if c, ok := f.inflight[key]; ok {
		f.mu.Unlock()
		return f.wait(ctx, key, c)
	}
	c := &call{done: make(chan struct{})}
	f.inflight[key] = c
	f.mu.Unlock()

	c.data, c.err = f.load(ctx, key)
	c.abandoned = c.err != nil && ctx.Err() != nil
	if c.err == nil {
		f.memory.Set(key, c.data, int64(len(c.data)))
		f.memory.Wait()
	}

	f.mu.Lock()
	delete(f.inflight, key)
	f.mu.Unlock()
	close(c.done)

	return c.data, c.err
}

// wait joins a download started by another caller. If that caller gave up
// while ctx is still live the fetch starts over.
func (f *Fetcher) wait(ctx context.Context, key string, c *call) ([]byte, error) {
	select {
	case <-c.done:
		if c.abandoned && ctx.Err() == nil {
			return f.FetchURL(ctx, key)
		}
		return c.data, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Request fetches t in the background and reports it through the loaded
// callback. Failures are logged and the tile stays blank.
func (f *Fetcher) Request(ctx context.Context, t maptile.Tile) {
	go func() {
		data, err := f.Get(ctx, t)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Warn("Tile fetch failed",
					logger.String("tile", fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)),
					logger.ErrorField(err))
			}
			return
		}
		if f.onLoaded != nil {
			f.onLoaded(t, data)
		}
	}()
}

// Close releases the memory cache. The store is owned by the caller.
func (f *Fetcher) Close() {
	f.memory.Close()
}

func (f *Fetcher) load(ctx context.Context, key string) ([]byte, error) {
	if f.store != nil {
		data, ok, err := f.store.Get(key)
		if err != nil {
			logger.Warn("Tile store read failed", logger.String("url", key), logger.ErrorField(err))
		} else if ok {
			return data, nil
		}
	}

	select {
	case f.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	data, err := f.download(ctx, key)
	<-f.slots
	if err != nil {
		return nil, err
	}

	if f.store != nil {
		if err := f.store.Put(key, data); err != nil {
			logger.Warn("Tile store write failed", logger.String("url", key), logger.ErrorField(err))
		}
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxTileSize))
}
