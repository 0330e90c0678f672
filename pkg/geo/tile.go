package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// TileSize is the pixel size of a slippy-map raster tile.
const TileSize = 256

// Tile addresses one raster tile by integer (x, y, zoom).
type Tile struct {
	X, Y, Z int
}

// Range is an inclusive rectangular grid of tile coordinates at one zoom.
type Range struct {
	MinX, MinY int
	MaxX, MaxY int
	Zoom       int
}

// Width returns the number of tile columns in the range.
func (r Range) Width() int { return r.MaxX - r.MinX + 1 }

// Height returns the number of tile rows in the range.
func (r Range) Height() int { return r.MaxY - r.MinY + 1 }

// Count returns the total number of tiles in the range.
func (r Range) Count() int { return r.Width() * r.Height() }

// Tiles returns every tile in the range in row-major order.
func (r Range) Tiles() []Tile {
	tiles := make([]Tile, 0, r.Count())
	for y := r.MinY; y <= r.MaxY; y++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			tiles = append(tiles, Tile{X: x, Y: y, Z: r.Zoom})
		}
	}
	return tiles
}

// Window is the crop window of a bounding box inside the tile-aligned
// mosaic, in pixels. Left/Top are offsets from the mosaic origin; Width
// and Height are the output raster dimensions. All values are computed
// from the fractional tile coordinates by truncation, so the output size
// depends only on the bounding box and zoom, never on the tile count.
type Window struct {
	Left, Top     int
	Width, Height int
}

// Project maps a bounding box at an integer zoom onto the tile grid.
// It returns the inclusive range of tiles covering the box and the pixel
// window that crops the assembled mosaic back to the exact bounds.
//
// The top-left corner of the box is (LatMax, LonMin) because tile y grows
// southward under the slippy-map scheme.
func Project(b BBox, zoom int) (Range, Window) {
	z := maptile.Zoom(zoom)
	topLeft := maptile.Fraction(orb.Point{b.LonMin, b.LatMax}, z)
	bottomRight := maptile.Fraction(orb.Point{b.LonMax, b.LatMin}, z)

	r := Range{
		MinX: int(math.Floor(topLeft.X())),
		MinY: int(math.Floor(topLeft.Y())),
		MaxX: int(math.Floor(bottomRight.X())),
		MaxY: int(math.Floor(bottomRight.Y())),
		Zoom: zoom,
	}

	// A max edge exactly on a grid line would pull in a tile row or
	// column that contributes zero output pixels, and at lonMax=180 it
	// would request tile x=2^z, which no server has.
	if float64(r.MaxX) == bottomRight.X() && r.MaxX > r.MinX {
		r.MaxX--
	}
	if float64(r.MaxY) == bottomRight.Y() && r.MaxY > r.MinY {
		r.MaxY--
	}

	w := Window{
		Left:   int((topLeft.X() - float64(r.MinX)) * TileSize),
		Top:    int((topLeft.Y() - float64(r.MinY)) * TileSize),
		Width:  int((bottomRight.X() - topLeft.X()) * TileSize),
		Height: int((bottomRight.Y() - topLeft.Y()) * TileSize),
	}
	return r, w
}

// Fraction returns the fractional tile coordinates of a point at a zoom.
// Exposed for callers that need raw projection values (e.g. marker overlay
// positioning on a rendered snapshot).
func Fraction(lat, lon float64, zoom int) (x, y float64) {
	p := maptile.Fraction(orb.Point{lon, lat}, maptile.Zoom(zoom))
	return p.X(), p.Y()
}

// TileBounds returns the geographic bounds of a single tile. The inverse
// of [Project] for one cell, useful for debugging and tests.
func TileBounds(t Tile) BBox {
	mt := maptile.New(uint32(t.X), uint32(t.Y), maptile.Zoom(t.Z))
	bound := mt.Bound()
	return BBox{
		LatMin: bound.Min.Y(),
		LonMin: bound.Min.X(),
		LatMax: bound.Max.Y(),
		LonMax: bound.Max.X(),
	}
}
