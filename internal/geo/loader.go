package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
)

// Loader constants
const (
	DefaultLoadTimeout = 30 * time.Second
	MaxDocumentSize    = 64 << 20
)

var (
	// ErrHTTPStatus is wrapped when the server answers with a non-2xx status
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrDocumentTooLarge is returned for documents over MaxDocumentSize
	ErrDocumentTooLarge = errors.New("document too large")
)

// Loader fetches GeoJSON documents over HTTP or from the local filesystem
type Loader struct {
	client  *http.Client
	timeout time.Duration
}

// NewLoader creates a loader with the default timeout
func NewLoader() *Loader {
	return &Loader{
		client:  http.DefaultClient,
		timeout: DefaultLoadTimeout,
	}
}

// SetHTTPClient replaces the HTTP client
func (l *Loader) SetHTTPClient(client *http.Client) {
	if client != nil {
		l.client = client
	}
}

// SetTimeout sets the per-load timeout
func (l *Loader) SetTimeout(timeout time.Duration) {
	l.timeout = timeout
}

// Load reads and decodes a FeatureCollection from an http(s) URL or a path
func (l *Loader) Load(ctx context.Context, source string) (*geojson.FeatureCollection, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = readFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	return fc, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	return readLimited(resp.Body, MaxDocumentSize)
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readLimited(file, MaxDocumentSize)
}

// readLimited reads r fully, failing instead of truncating past limit bytes
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, limit)
	}
	return data, nil
}
