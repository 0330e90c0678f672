package render

import (
	"image/color"

	"github.com/fogleman/gg"

	"github.com/DavideDeMarchi/geodash/pkg/errors"
	"github.com/DavideDeMarchi/geodash/pkg/hierarchy"
)

const (
	defaultTreemapWidth  = 800
	defaultTreemapHeight = 600
	treemapPadding       = 2.0
	minLabelWidth        = 40.0
	minLabelHeight       = 14.0
)

// depthPalette colors treemap cells by tree depth.
var depthPalette = []color.NRGBA{
	{R: 0x4e, G: 0x79, B: 0xa7, A: 0xff},
	{R: 0xf2, G: 0x8e, B: 0x2b, A: 0xff},
	{R: 0x76, G: 0xb7, B: 0xb2, A: 0xff},
	{R: 0xe1, G: 0x57, B: 0x59, A: 0xff},
	{R: 0x59, G: 0xa1, B: 0x4f, A: 0xff},
	{R: 0xed, G: 0xc9, B: 0x49, A: 0xff},
}

// TreemapOption configures treemap rendering.
type TreemapOption func(*treemap)

// WithTreemapSize sets the output raster size in pixels (default 800x600).
func WithTreemapSize(width, height int) TreemapOption {
	return func(r *treemap) {
		r.width = width
		r.height = height
	}
}

// WithLabels toggles cell labels (default on).
func WithLabels(show bool) TreemapOption {
	return func(r *treemap) { r.labels = show }
}

type treemap struct {
	width  int
	height int
	labels bool
}

// Treemap renders the tree as a slice-and-dice treemap PNG: each node's
// cell area is proportional to its aggregated value within its siblings,
// alternating split direction per depth. Zero-value subtrees get equal
// shares so empty branches stay visible.
func Treemap(t *hierarchy.Tree, opts ...TreemapOption) ([]byte, error) {
	r := &treemap{
		width:  defaultTreemapWidth,
		height: defaultTreemapHeight,
		labels: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if t == nil || t.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot render an empty tree")
	}

	dc := gg.NewContext(r.width, r.height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	r.draw(dc, t.Roots, t.Separator(), 0, 0, 0, float64(r.width), float64(r.height))
	return Encode(dc.Image(), FormatPNG)
}

// draw lays out siblings inside the given rectangle, splitting it along
// the axis chosen by depth parity, then recurses into children.
func (r *treemap) draw(dc *gg.Context, nodes []*hierarchy.Node, sep string, depth int, x, y, w, h float64) {
	if len(nodes) == 0 || w <= 0 || h <= 0 {
		return
	}

	total := 0.0
	for _, n := range nodes {
		total += n.Value
	}

	offset := 0.0
	for _, n := range nodes {
		share := 1.0 / float64(len(nodes))
		if total > 0 {
			share = n.Value / total
		}

		var cx, cy, cw, ch float64
		if depth%2 == 0 {
			cx, cy, cw, ch = x+offset, y, w*share, h
			offset += cw
		} else {
			cx, cy, cw, ch = x, y+offset, w, h*share
			offset += ch
		}
		r.cell(dc, n, sep, depth, cx, cy, cw, ch)
	}
}

func (r *treemap) cell(dc *gg.Context, n *hierarchy.Node, sep string, depth int, x, y, w, h float64) {
	if w <= treemapPadding || h <= treemapPadding {
		return
	}

	c := depthPalette[depth%len(depthPalette)]
	dc.SetColor(c)
	dc.DrawRectangle(x+treemapPadding/2, y+treemapPadding/2, w-treemapPadding, h-treemapPadding)
	dc.Fill()
	dc.SetRGBA(1, 1, 1, 0.6)
	dc.DrawRectangle(x+treemapPadding/2, y+treemapPadding/2, w-treemapPadding, h-treemapPadding)
	dc.Stroke()

	if r.labels && n.Leaf() && w >= minLabelWidth && h >= minLabelHeight {
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(n.Label(sep), x+w/2, y+h/2, 0.5, 0.5)
	}

	if !n.Leaf() {
		inset := treemapPadding * 2
		r.draw(dc, n.Children, sep, depth+1, x+inset, y+inset, w-2*inset, h-2*inset)
	}
}
