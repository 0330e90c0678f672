package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/DavideDeMarchi/geodash/pkg/cache"
	"github.com/DavideDeMarchi/geodash/pkg/errors"
	"github.com/DavideDeMarchi/geodash/pkg/fetch"
	"github.com/DavideDeMarchi/geodash/pkg/geo"
	"github.com/DavideDeMarchi/geodash/pkg/mosaic"
	"github.com/DavideDeMarchi/geodash/pkg/observability"
	"github.com/DavideDeMarchi/geodash/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, fetch client and logger -
// it doesn't store pipeline results. Multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Client *fetch.Client
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and fetch client.
// If cache is nil, a NullCache is used (caching disabled).
// If client is nil, a client backed by the same cache is created.
func NewRunner(c cache.Cache, client *fetch.Client, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if client == nil {
		client = fetch.NewClient(fetch.WithCache(c, cache.DefaultTTL))
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Client: client,
		Logger: logger,
	}
}

// Execute runs the complete stitch → encode pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	rng, win := geo.Project(opts.BBox, opts.Zoom)
	result := &Result{
		Width:  win.Width,
		Height: win.Height,
		Stats: Stats{
			TileCount:  rng.Count(),
			LayerCount: len(opts.Layers),
		},
	}

	// Try the artifact cache first (unless refresh requested)
	artifactKey := opts.ArtifactKey()
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, artifactKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			result.Image = data
			result.Hash = cache.Hash(data)
			result.CacheInfo.ArtifactHit = true
			r.Logger.Debug("artifact cache hit", "key", artifactKey)
			return result, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Stage 1: Stitch
	stitchStart := time.Now()
	img, err := r.Stitch(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.StitchTime = time.Since(stitchStart)

	r.Logger.Info("stitched mosaic",
		"tiles", result.Stats.TileCount,
		"layers", result.Stats.LayerCount,
		"width", win.Width,
		"height", win.Height,
		"duration", result.Stats.StitchTime)

	// Stage 2: Encode
	encodeStart := time.Now()
	data, err := r.Encode(ctx, img, opts.Format)
	if err != nil {
		return nil, err
	}
	result.Image = data
	result.Hash = cache.Hash(data)
	result.Stats.EncodeTime = time.Since(encodeStart)

	r.Logger.Info("encoded artifact",
		"format", opts.Format,
		"bytes", len(data),
		"duration", result.Stats.EncodeTime)

	// Cache the artifact
	if err := r.Cache.Set(ctx, artifactKey, data, TTLArtifact); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return result, nil
}

// Stitch runs only the stitch stage and returns the cropped mosaic.
func (r *Runner) Stitch(ctx context.Context, opts Options) (*image.NRGBA, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	stitchOpts := []mosaic.StitchOption{
		mosaic.WithClient(r.Client),
		mosaic.WithWorkers(opts.Workers),
	}
	if opts.TransparentGaps {
		stitchOpts = append(stitchOpts, mosaic.WithTransparentGaps())
	}

	s := mosaic.NewStitcher(stitchOpts...)
	return s.Render(ctx, opts.BBox, opts.Zoom, opts.Layers)
}

// Encode serializes a mosaic into the requested raster format.
func (r *Runner) Encode(ctx context.Context, img image.Image, format string) ([]byte, error) {
	observability.Snapshot().OnEncodeStart(ctx, format)
	start := time.Now()

	data, err := render.Encode(img, format)
	observability.Snapshot().OnEncodeComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s artifact", format)
	}
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
