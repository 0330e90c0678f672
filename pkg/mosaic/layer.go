package mosaic

import (
	"strconv"
	"strings"

	"github.com/DavideDeMarchi/geodash/pkg/errors"
	"github.com/DavideDeMarchi/geodash/pkg/geo"
)

// Layer is one tile source: a URL template with literal {x}, {y} and {z}
// placeholders, plus an opacity in [0, 1]. Layer order in a slice defines
// compositing order, first = bottom.
type Layer struct {
	Name    string  `toml:"name" json:"name,omitempty" bson:"name,omitempty"`
	URL     string  `toml:"url" json:"url" bson:"url"`
	Opacity float64 `toml:"opacity" json:"opacity" bson:"opacity"`
}

// TileURL substitutes the tile coordinates into the URL template.
// Substitution that finds no placeholder silently no-ops, producing the
// same URL for every tile; use [Layer.Validate] at input boundaries to
// catch that early.
func (l Layer) TileURL(t geo.Tile) string {
	return strings.NewReplacer(
		"{x}", strconv.Itoa(t.X),
		"{y}", strconv.Itoa(t.Y),
		"{z}", strconv.Itoa(t.Z),
	).Replace(l.URL)
}

// Validate checks the URL template and opacity range.
func (l Layer) Validate() error {
	if err := errors.ValidateURLTemplate(l.URL); err != nil {
		return err
	}
	return errors.ValidateOpacity(l.Opacity)
}

// ValidateLayers validates a layer stack at an input boundary, requiring
// at least one layer, in-range opacities and well-formed URL templates.
func ValidateLayers(layers []Layer) error {
	if err := validateStack(layers); err != nil {
		return err
	}
	for i, l := range layers {
		if err := errors.ValidateURLTemplate(l.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLayer, err, "layer %d (%s)", i, l.Name)
		}
	}
	return nil
}

// validateStack is the render-time check: non-empty stack, opacities in
// range. URL templates are deliberately not inspected here; a template
// without placeholders resolves to the same URL for every tile, which is
// valid input. [ValidateLayers] adds the template check for boundaries.
func validateStack(layers []Layer) error {
	if len(layers) == 0 {
		return errors.New(errors.ErrCodeInvalidLayer, "at least one layer is required")
	}
	for i, l := range layers {
		if err := errors.ValidateOpacity(l.Opacity); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLayer, err, "layer %d (%s)", i, l.Name)
		}
	}
	return nil
}

// ParseLayer parses the CLI form "url" or "url@opacity",
// e.g. "https://tile.example.org/{z}/{x}/{y}.png@0.6".
// Opacity defaults to 1 when omitted.
func ParseLayer(s string) (Layer, error) {
	l := Layer{URL: s, Opacity: 1.0}
	if i := strings.LastIndex(s, "@"); i > strings.LastIndex(s, "/") {
		opacity, err := strconv.ParseFloat(s[i+1:], 64)
		if err != nil {
			return Layer{}, errors.New(errors.ErrCodeInvalidLayer, "cannot parse opacity in %q", s)
		}
		l.URL = s[:i]
		l.Opacity = opacity
	}
	if err := l.Validate(); err != nil {
		return Layer{}, err
	}
	return l, nil
}
