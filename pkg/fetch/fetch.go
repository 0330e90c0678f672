// Package fetch provides the HTTP client used to retrieve map tiles.
//
// The client handles per-request timeouts, retry with exponential backoff
// for transient failures, optional response caching, and decoding of tile
// bodies into images. Failed fetches are reported as [*Error] values that
// carry the offending URL, so a multi-tile render can name the exact tile
// that failed.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/DavideDeMarchi/geodash/pkg/cache"
	"github.com/DavideDeMarchi/geodash/pkg/observability"
)

const httpTimeout = 10 * time.Second

// Client fetches tile images over HTTP.
// The zero value is not usable; create one with [NewClient].
type Client struct {
	http  *http.Client
	cache cache.Cache
	ttl   time.Duration
	ua    string
}

// Option configures a Client.
type Option func(*Client)

// WithCache installs a response cache. By default a Client is cacheless
// and every tile is fetched on every call.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		if c != nil {
			cl.cache = c
			cl.ttl = ttl
		}
	}
}

// WithTimeout overrides the per-request timeout (default 10s).
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http.Timeout = d }
}

// WithUserAgent sets the User-Agent header sent with tile requests.
// Most public tile servers require an identifying agent.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.ua = ua }
}

// NewClient creates a tile client with a standard timeout and no cache.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:  &http.Client{Timeout: httpTimeout},
		cache: cache.NewNullCache(),
		ttl:   cache.DefaultTTL,
		ua:    "geodash",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tile fetches one tile URL and decodes the body as an image.
// Transient failures (network errors, 5xx) are retried with backoff;
// any terminal failure is returned as a [*Error] carrying the URL.
func (c *Client) Tile(ctx context.Context, url string) (image.Image, error) {
	data, err := c.Bytes(ctx, url)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("%w: %v", ErrNotImage, err)}
	}
	return img, nil
}

// Bytes fetches a URL and returns the raw body, consulting the cache first.
func (c *Client) Bytes(ctx context.Context, url string) ([]byte, error) {
	key := cache.Key("tile", url)
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "tile")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "tile")

	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.doRequest(ctx, url)
		return err
	})
	if err != nil {
		observability.Tile().OnFetchError(ctx, url, err)
		return nil, &Error{URL: url, Err: err}
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "tile", len(data))
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	observability.Tile().OnFetch(ctx, url)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.ua)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}

	observability.Tile().OnFetched(ctx, url, len(data), time.Since(start))
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
