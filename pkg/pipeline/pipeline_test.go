package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/DavideDeMarchi/geodash/pkg/cache"
	"github.com/DavideDeMarchi/geodash/pkg/errors"
	"github.com/DavideDeMarchi/geodash/pkg/geo"
	"github.com/DavideDeMarchi/geodash/pkg/mosaic"
)

// tileServer serves a solid-color PNG for every tile request and counts hits.
func tileServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode tile: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testOptions(url string) Options {
	return Options{
		BBox:   geo.BBox{LatMin: 0.1, LonMin: 0.1, LatMax: 0.2, LonMax: 0.2},
		Zoom:   8,
		Layers: []mosaic.Layer{{URL: url + "/{z}/{x}/{y}.png", Opacity: 1.0}},
	}
}

func TestExecute(t *testing.T) {
	var hits atomic.Int64
	srv := tileServer(t, &hits)

	runner := NewRunner(nil, nil, nil)
	opts := testOptions(srv.URL)

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if !bytes.HasPrefix(result.Image, []byte("\x89PNG")) {
		t.Error("artifact is not a PNG")
	}
	if result.Hash == "" {
		t.Error("Hash is empty")
	}
	if result.CacheInfo.ArtifactHit {
		t.Error("ArtifactHit = true on first run")
	}
	if result.Stats.LayerCount != 1 {
		t.Errorf("LayerCount = %d, want 1", result.Stats.LayerCount)
	}

	// The artifact decodes to the projected window dimensions.
	_, win := geo.Project(opts.BBox, opts.Zoom)
	decoded, err := png.Decode(bytes.NewReader(result.Image))
	if err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != win.Width || b.Dy() != win.Height {
		t.Errorf("artifact size = %dx%d, want %dx%d", b.Dx(), b.Dy(), win.Width, win.Height)
	}
	if result.Width != win.Width || result.Height != win.Height {
		t.Errorf("Result size = %dx%d, want %dx%d", result.Width, result.Height, win.Width, win.Height)
	}
}

func TestExecuteArtifactCache(t *testing.T) {
	var hits atomic.Int64
	srv := tileServer(t, &hits)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	opts := testOptions(srv.URL)

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	fetched := hits.Load()
	if fetched == 0 {
		t.Fatal("no tile fetches on first run")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() second run error: %v", err)
	}
	if !second.CacheInfo.ArtifactHit {
		t.Error("ArtifactHit = false on second run")
	}
	if hits.Load() != fetched {
		t.Errorf("second run fetched tiles: %d hits, want %d", hits.Load(), fetched)
	}
	if !bytes.Equal(first.Image, second.Image) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// Refresh bypasses the artifact cache and re-renders. Tile responses
	// are still served from the shared byte cache.
	third, err := runner.Execute(context.Background(), Options{
		BBox:    opts.BBox,
		Zoom:    opts.Zoom,
		Layers:  opts.Layers,
		Refresh: true,
	})
	if err != nil {
		t.Fatalf("Execute() refresh error: %v", err)
	}
	if third.CacheInfo.ArtifactHit {
		t.Error("ArtifactHit = true with Refresh")
	}
}

func TestExecuteValidation(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{
			name: "invalid zoom",
			opts: Options{
				BBox:   geo.BBox{LatMin: 0, LonMin: 0, LatMax: 1, LonMax: 1},
				Zoom:   42,
				Layers: []mosaic.Layer{{URL: "https://t.example/{z}/{x}/{y}.png", Opacity: 1}},
			},
			code: errors.ErrCodeInvalidZoom,
		},
		{
			name: "inverted bbox",
			opts: Options{
				BBox:   geo.BBox{LatMin: 1, LonMin: 0, LatMax: 0, LonMax: 1},
				Zoom:   8,
				Layers: []mosaic.Layer{{URL: "https://t.example/{z}/{x}/{y}.png", Opacity: 1}},
			},
			code: errors.ErrCodeInvalidBBox,
		},
		{
			name: "no layers",
			opts: Options{
				BBox: geo.BBox{LatMin: 0, LonMin: 0, LatMax: 1, LonMax: 1},
				Zoom: 8,
			},
			code: errors.ErrCodeInvalidLayer,
		},
		{
			name: "bad format",
			opts: Options{
				BBox:   geo.BBox{LatMin: 0, LonMin: 0, LatMax: 1, LonMax: 1},
				Zoom:   8,
				Layers: []mosaic.Layer{{URL: "https://t.example/{z}/{x}/{y}.png", Opacity: 1}},
				Format: "gif",
			},
			code: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Execute(ctx, tt.opts)
			if err == nil {
				t.Fatal("Execute() succeeded, want error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("error code = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestArtifactKey(t *testing.T) {
	a := testOptions("https://t.example")
	b := testOptions("https://t.example")
	if a.ArtifactKey() != b.ArtifactKey() {
		t.Error("equivalent options produce different artifact keys")
	}

	c := testOptions("https://t.example")
	c.Format = "jpeg"
	if a.ArtifactKey() == c.ArtifactKey() {
		t.Error("different formats share an artifact key")
	}

	d := testOptions("https://t.example")
	d.Zoom = 9
	if a.ArtifactKey() == d.ArtifactKey() {
		t.Error("different zooms share an artifact key")
	}

	// The layer name is cosmetic and must not split the cache.
	e := testOptions("https://t.example")
	e.Layers[0].Name = "osm"
	if a.ArtifactKey() != e.ArtifactKey() {
		t.Error("layer name changes the artifact key")
	}

	f := testOptions("https://t.example")
	f.Layers[0].Opacity = 0.5
	if a.ArtifactKey() == f.ArtifactKey() {
		t.Error("different opacities share an artifact key")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := testOptions("https://t.example")
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", opts.Format, DefaultFormat)
	}
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", opts.Workers, DefaultWorkers)
	}
	if opts.Logger == nil {
		t.Error("Logger is nil after defaults")
	}
}
