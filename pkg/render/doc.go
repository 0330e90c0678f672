// Package render turns hierarchy trees and mosaic rasters into output
// artifacts.
//
// Two hierarchy sinks consume the flat chart contract of
// [hierarchy.Tree.Chart]: a treemap PNG renderer built on fogleman/gg,
// and a DOT generator with Graphviz SVG rendering. Raster encoding
// helpers cover the mosaic side (PNG and JPEG via disintegration/imaging).
package render
