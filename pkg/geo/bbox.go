// Package geo provides geographic types and slippy-tile math for the
// mosaic renderer.
//
// Tile coordinates follow the standard Web-Mercator slippy-map scheme:
// integer (x, y) addresses at an integer zoom, with y increasing southward
// and 256x256 pixel tiles. Fractional coordinates are computed via
// [maptile.Fraction] from paulmach/orb.
package geo

import (
	"fmt"

	"github.com/DavideDeMarchi/geodash/pkg/errors"
)

// BBox is a geographic bounding box in degrees.
type BBox struct {
	LatMin float64 `json:"lat_min" toml:"lat_min" bson:"lat_min"`
	LonMin float64 `json:"lon_min" toml:"lon_min" bson:"lon_min"`
	LatMax float64 `json:"lat_max" toml:"lat_max" bson:"lat_max"`
	LonMax float64 `json:"lon_max" toml:"lon_max" bson:"lon_max"`
}

// Validate checks the bounds for ordering and projectable range.
func (b BBox) Validate() error {
	return errors.ValidateBBox(b.LatMin, b.LonMin, b.LatMax, b.LonMax)
}

// String formats the box as "latMin,lonMin,latMax,lonMax".
func (b BBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.LatMin, b.LonMin, b.LatMax, b.LonMax)
}

// ParseBBox parses a "latMin,lonMin,latMax,lonMax" string as produced
// by [BBox.String] and used by the CLI --bbox flag.
func ParseBBox(s string) (BBox, error) {
	var b BBox
	n, err := fmt.Sscanf(s, "%f,%f,%f,%f", &b.LatMin, &b.LonMin, &b.LatMax, &b.LonMax)
	if err != nil || n != 4 {
		return BBox{}, errors.New(errors.ErrCodeInvalidBBox, "cannot parse bbox %q (want latMin,lonMin,latMax,lonMax)", s)
	}
	if err := b.Validate(); err != nil {
		return BBox{}, err
	}
	return b, nil
}
