package mosaic

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/DavideDeMarchi/geodash/pkg/errors"
	"github.com/DavideDeMarchi/geodash/pkg/geo"
)

// Manifest describes a snapshot request in TOML form:
//
//	zoom = 12
//
//	[bbox]
//	lat_min = 45.0
//	lon_min = 7.0
//	lat_max = 46.0
//	lon_max = 8.0
//
//	[[layer]]
//	name = "base"
//	url = "https://tile.example.org/{z}/{x}/{y}.png"
//
//	[[layer]]
//	name = "labels"
//	url = "https://overlay.example.org/{z}/{x}/{y}.png"
//	opacity = 0.7
//
// Zoom and bbox are optional defaults that CLI flags and API fields
// override. A layer's omitted opacity defaults to 1.
type Manifest struct {
	Zoom   int       `toml:"zoom"`
	BBox   *geo.BBox `toml:"bbox"`
	Layers []Layer   `toml:"layer"`
}

// manifestFile mirrors Manifest with per-layer opacity as a pointer so an
// absent field can default to 1 instead of 0 (which would hide the layer).
type manifestFile struct {
	Zoom   int       `toml:"zoom"`
	BBox   *geo.BBox `toml:"bbox"`
	Layers []struct {
		Name    string   `toml:"name"`
		URL     string   `toml:"url"`
		Opacity *float64 `toml:"opacity"`
	} `toml:"layer"`
}

// LoadManifest reads and parses a TOML layer manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest %s", path)
	}
	return ParseManifest(data)
}

// ParseManifest parses TOML manifest bytes and validates the layer stack.
func ParseManifest(data []byte) (*Manifest, error) {
	var f manifestFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest")
	}

	m := &Manifest{Zoom: f.Zoom, BBox: f.BBox}
	for _, l := range f.Layers {
		opacity := 1.0
		if l.Opacity != nil {
			opacity = *l.Opacity
		}
		m.Layers = append(m.Layers, Layer{Name: l.Name, URL: l.URL, Opacity: opacity})
	}

	if err := ValidateLayers(m.Layers); err != nil {
		return nil, err
	}
	if m.BBox != nil {
		if err := m.BBox.Validate(); err != nil {
			return nil, err
		}
	}
	if m.Zoom != 0 {
		if err := errors.ValidateZoom(m.Zoom); err != nil {
			return nil, err
		}
	}
	return m, nil
}
