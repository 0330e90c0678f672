package mosaic

import (
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/DavideDeMarchi/geodash/pkg/errors"
	"github.com/DavideDeMarchi/geodash/pkg/fetch"
	"github.com/DavideDeMarchi/geodash/pkg/geo"
	"github.com/DavideDeMarchi/geodash/pkg/observability"
)

const defaultWorkers = 8

// Stitcher renders bounding boxes into cropped RGBA mosaics.
// A Stitcher is stateless between calls and safe for concurrent use.
type Stitcher struct {
	client          *fetch.Client
	workers         int
	transparentGaps bool
}

// StitchOption configures a Stitcher.
type StitchOption func(*Stitcher)

// WithClient installs the tile fetch client (default: a cacheless client
// with standard timeouts).
func WithClient(c *fetch.Client) StitchOption {
	return func(s *Stitcher) {
		if c != nil {
			s.client = c
		}
	}
}

// WithWorkers bounds the fetch worker pool. WithWorkers(1) restores
// strictly sequential fetching.
func WithWorkers(n int) StitchOption {
	return func(s *Stitcher) { s.workers = max(n, 1) }
}

// WithTransparentGaps leaves a transparent cell for tiles that fail to
// fetch instead of aborting the render. Context cancellation still aborts.
func WithTransparentGaps() StitchOption {
	return func(s *Stitcher) { s.transparentGaps = true }
}

// NewStitcher creates a Stitcher.
func NewStitcher(opts ...StitchOption) *Stitcher {
	s := &Stitcher{
		client:  fetch.NewClient(),
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render assembles the mosaic for a bounding box at an integer zoom from
// the ordered layer stack and crops it to the exact bounds.
//
// Fetch order across (tile, layer) pairs is unspecified; compositing is
// always bottom-to-top in layer slice order per grid cell. The returned
// image's dimensions equal the bounding box's fractional-pixel span at
// the zoom, truncated to whole pixels.
func (s *Stitcher) Render(ctx context.Context, bbox geo.BBox, zoom int, layers []Layer) (*image.NRGBA, error) {
	if err := bbox.Validate(); err != nil {
		return nil, err
	}
	if err := errors.ValidateZoom(zoom); err != nil {
		return nil, err
	}
	if err := validateStack(layers); err != nil {
		return nil, err
	}

	rng, win := geo.Project(bbox, zoom)
	tiles := rng.Tiles()

	observability.Snapshot().OnStitchStart(ctx, zoom, len(tiles), len(layers))
	start := time.Now()

	imgs, err := s.fetchAll(ctx, tiles, layers)
	if err != nil {
		observability.Snapshot().OnStitchComplete(ctx, zoom, time.Since(start), err)
		return nil, err
	}

	mosaic := imaging.New(rng.Width()*geo.TileSize, rng.Height()*geo.TileSize, color.NRGBA{})
	for li := range layers {
		for ti, t := range tiles {
			img := imgs[li*len(tiles)+ti]
			if img == nil {
				continue // transparent gap
			}
			tile := applyOpacity(img, layers[li].Opacity)
			origin := image.Pt((t.X-rng.MinX)*geo.TileSize, (t.Y-rng.MinY)*geo.TileSize)
			rect := image.Rectangle{Min: origin, Max: origin.Add(tile.Bounds().Size())}
			draw.Draw(mosaic, rect, tile, image.Point{}, draw.Over)
		}
	}

	out := imaging.Crop(mosaic, image.Rect(win.Left, win.Top, win.Left+win.Width, win.Top+win.Height))
	observability.Snapshot().OnStitchComplete(ctx, zoom, time.Since(start), nil)
	return out, nil
}

// fetchAll retrieves every (tile, layer) pair on a bounded worker pool.
// Results land in a flat slice indexed layer-major so compositing can
// walk it in layer order. The first failure cancels outstanding fetches
// unless transparent gaps are enabled.
func (s *Stitcher) fetchAll(ctx context.Context, tiles []geo.Tile, layers []Layer) ([]image.Image, error) {
	type job struct {
		slot int
		url  string
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	imgs := make([]image.Image, len(layers)*len(tiles))
	jobs := make(chan job)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				img, err := s.client.Tile(ctx, j.url)
				if err != nil {
					if s.transparentGaps && !isCancellation(err) {
						continue
					}
					fail(err)
					continue
				}
				imgs[j.slot] = img
			}
		}()
	}

	for li, l := range layers {
		for ti, t := range tiles {
			jobs <- job{slot: li*len(tiles) + ti, url: l.TileURL(t)}
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return imgs, nil
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// applyOpacity converts a tile to NRGBA, scaling its alpha channel by the
// layer opacity when below 1.
func applyOpacity(img image.Image, opacity float64) *image.NRGBA {
	n := imaging.Clone(img)
	if opacity >= 1.0 {
		return n
	}
	if opacity < 0 {
		opacity = 0
	}
	for i := 3; i < len(n.Pix); i += 4 {
		n.Pix[i] = uint8(float64(n.Pix[i]) * opacity)
	}
	return n
}
