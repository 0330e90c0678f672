package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/DavideDeMarchi/geodash/pkg/catalog"
	"github.com/DavideDeMarchi/geodash/pkg/pipeline"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode tile: %v", err)
	}
	tiles := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(tiles.Close)

	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := New(Config{
		Store:  catalog.NewMemoryStore(),
		Runner: pipeline.NewRunner(nil, nil, logger),
		Logger: logger,
	})
	return srv, tiles
}

func snapshotBody(tileURL string) string {
	return fmt.Sprintf(`{
		"name": "test",
		"bbox": {"lat_min": 0.1, "lon_min": 0.1, "lat_max": 0.2, "lon_max": 0.2},
		"zoom": 8,
		"layers": [{"url": %q, "opacity": 1.0}]
	}`, tileURL+"/{z}/{x}/{y}.png")
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv.Router(), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	srv, tiles := newTestServer(t)
	router := srv.Router()

	// Create
	w := doJSON(t, router, http.MethodPost, "/v1/snapshots", snapshotBody(tiles.URL))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var created catalog.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created snapshot has no ID")
	}
	if created.Name != "test" || created.Zoom != 8 || created.Format != "png" {
		t.Errorf("record = %q zoom %d format %q, want test/8/png", created.Name, created.Zoom, created.Format)
	}
	if created.Width == 0 || created.Height == 0 || created.Size == 0 {
		t.Errorf("record dims/size = %dx%d/%d, want non-zero", created.Width, created.Height, created.Size)
	}
	if bytes.Contains(w.Body.Bytes(), []byte(`"image"`)) {
		t.Error("create response embeds the raw artifact")
	}

	// List
	w = doJSON(t, router, http.MethodGet, "/v1/snapshots", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	var list []*catalog.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %d entries, want the created snapshot", len(list))
	}

	// Get
	w = doJSON(t, router, http.MethodGet, "/v1/snapshots/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", w.Code)
	}

	// Image
	w = doJSON(t, router, http.MethodGet, "/v1/snapshots/"+created.ID+"/image", "")
	if w.Code != http.StatusOK {
		t.Fatalf("image status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("image content type = %q, want image/png", ct)
	}
	if decoded, err := png.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Errorf("image body is not a PNG: %v", err)
	} else if decoded.Bounds().Dx() != created.Width {
		t.Errorf("image width = %d, want %d", decoded.Bounds().Dx(), created.Width)
	}

	// Delete
	w = doJSON(t, router, http.MethodDelete, "/v1/snapshots/"+created.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/v1/snapshots/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestSnapshotValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "malformed json",
			body:   "{not json",
			status: http.StatusBadRequest,
		},
		{
			name: "bad zoom",
			body: `{"bbox": {"lat_min": 0, "lon_min": 0, "lat_max": 1, "lon_max": 1},
				"zoom": 42, "layers": [{"url": "https://t.example/{z}/{x}/{y}.png", "opacity": 1}]}`,
			status: http.StatusBadRequest,
		},
		{
			name: "no layers",
			body: `{"bbox": {"lat_min": 0, "lon_min": 0, "lat_max": 1, "lon_max": 1}, "zoom": 8}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/v1/snapshots", tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Code == "" || resp.Message == "" {
				t.Errorf("error response = %+v, want code and message", resp)
			}
		})
	}
}

func TestSnapshotFetchFailureIsBadGateway(t *testing.T) {
	srv, _ := newTestServer(t)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer broken.Close()

	w := doJSON(t, srv.Router(), http.MethodPost, "/v1/snapshots", snapshotBody(broken.URL))
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502: %s", w.Code, w.Body.String())
	}
}

func TestSnapshotNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	for _, path := range []string{
		"/v1/snapshots/nope",
		"/v1/snapshots/nope/image",
	} {
		w := doJSON(t, router, http.MethodGet, path, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, w.Code)
		}
	}
	if w := doJSON(t, router, http.MethodDelete, "/v1/snapshots/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("DELETE status = %d, want 404", w.Code)
	}
}

func TestBuildTree(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{
		"names": ["app.api", "app.db"],
		"values": {"app.api": 2, "app.db": 3}
	}`
	w := doJSON(t, srv.Router(), http.MethodPost, "/v1/trees", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp treeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Nodes != 3 {
		t.Errorf("nodes = %d, want 3", resp.Nodes)
	}
	if len(resp.Chart.Labels) != 3 || resp.Chart.Labels[0] != "app" {
		t.Errorf("labels = %v, want [app app.api app.db]", resp.Chart.Labels)
	}
	if resp.Chart.Values[0] != 5 {
		t.Errorf("root value = %v, want 5", resp.Chart.Values[0])
	}
	if resp.Chart.Parents[0] != "" || resp.Chart.Parents[1] != "app" {
		t.Errorf("parents = %v, want root parentless", resp.Chart.Parents)
	}
}

func TestBuildTreeCustomSeparator(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"names": ["a/b"], "separator": "/"}`
	w := doJSON(t, srv.Router(), http.MethodPost, "/v1/trees", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp treeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Nodes != 2 {
		t.Errorf("nodes = %d, want 2", resp.Nodes)
	}
}
