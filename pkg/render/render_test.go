package render

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/DavideDeMarchi/geodash/pkg/errors"
	"github.com/DavideDeMarchi/geodash/pkg/hierarchy"
)

func sampleTree() *hierarchy.Tree {
	return hierarchy.Build(
		[]string{"app.api", "app.db", "app.db.pool", "docs"},
		hierarchy.WithValues(map[string]float64{
			"app.api":     4,
			"app.db.pool": 2,
			"docs":        1,
		}),
	)
}

func TestEncodePNG(t *testing.T) {
	img := imaging.New(10, 8, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	data, err := Encode(img, FormatPNG)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("PNG output missing magic bytes")
	}

	decoded, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode round trip: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 10 || b.Dy() != 8 {
		t.Errorf("decoded size = %dx%d, want 10x8", b.Dx(), b.Dy())
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := imaging.New(4, 4, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	data, err := Encode(img, FormatJPEG)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		t.Error("JPEG output missing magic bytes")
	}
}

func TestEncodeInvalidFormat(t *testing.T) {
	img := imaging.New(1, 1, color.NRGBA{})
	_, err := Encode(img, "webp")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Encode = %v, want INVALID_FORMAT", err)
	}
}

func TestTreemap(t *testing.T) {
	data, err := Treemap(sampleTree(), WithTreemapSize(200, 150))
	if err != nil {
		t.Fatalf("Treemap: %v", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode treemap PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("treemap size = %dx%d, want 200x150", b.Dx(), b.Dy())
	}
}

func TestTreemapEmptyTree(t *testing.T) {
	if _, err := Treemap(hierarchy.Build(nil)); err == nil {
		t.Error("empty tree should not render")
	}
	if _, err := Treemap(nil); err == nil {
		t.Error("nil tree should not render")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleTree(), DOTOptions{})

	if !strings.HasPrefix(dot, "digraph hierarchy {") {
		t.Error("DOT output missing digraph header")
	}
	for _, want := range []string{
		`"app" -> "app.api";`,
		`"app.db" -> "app.db.pool";`,
		`"docs"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}

	// Forest tops have no incoming edge.
	if strings.Contains(dot, `-> "app";`) || strings.Contains(dot, `-> "docs";`) {
		t.Error("forest tops should have no parent edge")
	}
}

func TestToDOTValues(t *testing.T) {
	dot := ToDOT(sampleTree(), DOTOptions{Values: true})
	if !strings.Contains(dot, `label="app\n6"`) {
		t.Errorf("DOT labels should include aggregated values:\n%s", dot)
	}
}
