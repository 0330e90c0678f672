// Package mosaic renders geographic bounding boxes into raster images by
// stitching slippy-map tiles from ordered, opacity-weighted layers.
//
// A [Stitcher.Render] call projects the bounding box onto the tile grid at
// the requested zoom, fetches every (tile, layer) pair, composites later
// layers over earlier ones per grid cell, and crops the tile-aligned
// mosaic to the exact fractional-pixel window of the bounds. The output
// raster's pixel size depends only on the bounding box and zoom, never on
// how many tiles were spanned.
//
// Fetches run on a bounded worker pool; compositing is strictly ordered
// by the layer slice regardless of fetch completion order. A failed fetch
// aborts the whole render with a [fetch.Error] naming the tile URL unless
// [WithTransparentGaps] opts into leaving that cell transparent.
//
// Layer sets can be described in TOML manifests, see [LoadManifest].
package mosaic
