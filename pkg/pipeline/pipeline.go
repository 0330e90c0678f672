// Package pipeline provides the core snapshot pipeline for geodash.
//
// This package implements the complete stitch → encode pipeline that can
// be used by CLI and server components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Stitch: fetch the map tiles covering a bounding box and composite
//     them into a single cropped mosaic
//  2. Encode: serialize the mosaic into a raster format (PNG, JPEG)
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    BBox:   geo.BBox{LatMin: 43, LonMin: 11, LatMax: 44, LonMax: 12},
//	    Zoom:   10,
//	    Layers: []mosaic.Layer{{URL: "https://tile.openstreetmap.org/{z}/{x}/{y}.png", Opacity: 1}},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Image
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/DavideDeMarchi/geodash/pkg/cache"
	"github.com/DavideDeMarchi/geodash/pkg/errors"
	"github.com/DavideDeMarchi/geodash/pkg/geo"
	"github.com/DavideDeMarchi/geodash/pkg/mosaic"
	"github.com/DavideDeMarchi/geodash/pkg/render"
)

// Default values shared by the CLI and server entry points.
const (
	// DefaultWorkers is the number of concurrent tile fetches.
	DefaultWorkers = 8

	// DefaultFormat is the default raster output format.
	DefaultFormat = render.FormatPNG
)

// TTLArtifact is the cache lifetime for encoded snapshot artifacts.
// Rendered mosaics are deterministic for a given request, so they can
// live longer than raw tile responses.
const TTLArtifact = 7 * 24 * time.Hour

// Options contains all configuration for the snapshot pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Stitch options
	BBox            geo.BBox       `json:"bbox"`
	Zoom            int            `json:"zoom"`
	Layers          []mosaic.Layer `json:"layers"`
	TransparentGaps bool           `json:"transparent_gaps,omitempty"`
	Workers         int            `json:"workers,omitempty"`

	// Encode options
	Format string `json:"format,omitempty"`

	// Name is an optional label carried into stored snapshot records.
	Name string `json:"name,omitempty"`

	// Refresh bypasses the artifact cache and re-renders.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Image is the encoded raster artifact.
	Image []byte

	// Width and Height are the pixel dimensions of the artifact.
	Width  int
	Height int

	// Hash is the content hash of the artifact.
	Hash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the artifact came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TileCount  int
	LayerCount int
	StitchTime time.Duration
	EncodeTime time.Duration
}

// CacheInfo tracks cache hits for the pipeline.
type CacheInfo struct {
	ArtifactHit bool // Whether the encoded artifact came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.BBox.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateZoom(o.Zoom); err != nil {
		return err
	}
	if err := mosaic.ValidateLayers(o.Layers); err != nil {
		return err
	}

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := render.ValidateFormat(o.Format); err != nil {
		return err
	}

	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// ArtifactKey returns the cache key for the encoded artifact this request
// would produce. Equivalent requests share a key: only the fields that
// change the rendered bytes participate, so cosmetic ones like the layer
// name do not split the cache.
func (o *Options) ArtifactKey() string {
	layers := make([]string, len(o.Layers))
	for i, l := range o.Layers {
		layers[i] = fmt.Sprintf("%s@%g", l.URL, l.Opacity)
	}
	return cache.Key("artifact",
		o.BBox.String(),
		o.Zoom,
		layers,
		o.Format,
		o.TransparentGaps,
	)
}
