package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DavideDeMarchi/geodash/pkg/geo"
	"github.com/DavideDeMarchi/geodash/pkg/mosaic"
	"github.com/DavideDeMarchi/geodash/pkg/pipeline"
	"github.com/DavideDeMarchi/geodash/pkg/render"
)

// snapshotOpts holds the command-line flags for the snapshot command.
type snapshotOpts struct {
	bbox            string   // bounding box as "latMin,lonMin,latMax,lonMax"
	zoom            int      // slippy map zoom level
	layers          []string // tile layer URL templates, bottom to top
	manifest        string   // TOML manifest path (alternative to --bbox/--zoom/--layer)
	output          string   // output file path
	format          string   // raster format: png or jpeg
	name            string   // snapshot label
	workers         int      // concurrent tile fetches
	transparentGaps bool     // tolerate missing tiles instead of failing
	noCache         bool     // disable the tile/artifact cache
	refresh         bool     // bypass cached artifacts
}

// snapshotCommand creates the snapshot command for rendering tile mosaics.
//
// A request is described either inline (--bbox, --zoom, repeated --layer)
// or by a TOML manifest (--manifest). Layers are composited bottom to top;
// a layer given as "url@0.5" is blended at 50% opacity.
func (c *CLI) snapshotCommand() *cobra.Command {
	opts := snapshotOpts{
		format:  pipeline.DefaultFormat,
		workers: pipeline.DefaultWorkers,
	}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Stitch map tiles into a cropped snapshot image",
		Long: `Stitch slippy-map tiles into a single image cropped to a bounding box.

Examples:
  geodash snapshot --bbox 43.0,11.0,44.0,12.0 --zoom 10 \
      --layer "https://tile.openstreetmap.org/{z}/{x}/{y}.png" -o tuscany.png

  geodash snapshot --bbox 43.0,11.0,44.0,12.0 --zoom 10 \
      --layer "https://tile.openstreetmap.org/{z}/{x}/{y}.png" \
      --layer "https://overlay.example/{z}/{x}/{y}.png@0.6" -o overlay.png

  geodash snapshot --manifest region.toml -o region.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := buildPipelineOptions(&opts)
			if err != nil {
				return err
			}
			return c.runSnapshot(cmd.Context(), popts, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.bbox, "bbox", "b", "", "bounding box as latMin,lonMin,latMax,lonMax")
	cmd.Flags().IntVarP(&opts.zoom, "zoom", "z", 0, "slippy map zoom level (0-20)")
	cmd.Flags().StringArrayVarP(&opts.layers, "layer", "l", nil, "tile URL template, bottom to top (append @opacity to blend)")
	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", "", "TOML manifest describing bbox, zoom and layers")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default snapshot.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: png (default), jpeg")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "snapshot label")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "concurrent tile fetches")
	cmd.Flags().BoolVar(&opts.transparentGaps, "transparent-gaps", false, "leave failed tiles transparent instead of failing")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the tile and artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached artifacts")

	return cmd
}

// buildPipelineOptions assembles pipeline options from flags, loading the
// manifest first so inline flags can override it.
func buildPipelineOptions(opts *snapshotOpts) (pipeline.Options, error) {
	popts := pipeline.Options{
		Zoom:            opts.zoom,
		Format:          opts.format,
		Name:            opts.name,
		Workers:         opts.workers,
		TransparentGaps: opts.transparentGaps,
		Refresh:         opts.refresh,
	}

	if opts.manifest != "" {
		m, err := mosaic.LoadManifest(opts.manifest)
		if err != nil {
			return popts, err
		}
		if m.BBox != nil {
			popts.BBox = *m.BBox
		}
		popts.Zoom = m.Zoom
		popts.Layers = m.Layers
	}

	if opts.bbox != "" {
		bbox, err := geo.ParseBBox(opts.bbox)
		if err != nil {
			return popts, err
		}
		popts.BBox = bbox
	}
	if opts.zoom != 0 {
		popts.Zoom = opts.zoom
	}
	for _, s := range opts.layers {
		layer, err := mosaic.ParseLayer(s)
		if err != nil {
			return popts, err
		}
		popts.Layers = append(popts.Layers, layer)
	}

	if opts.manifest == "" && opts.bbox == "" {
		return popts, fmt.Errorf("either --bbox or --manifest is required")
	}
	if err := render.ValidateFormat(popts.Format); err != nil {
		return popts, err
	}
	return popts, nil
}

// runSnapshot executes the pipeline and writes the artifact to disk.
func (c *CLI) runSnapshot(ctx context.Context, popts pipeline.Options, opts *snapshotOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts.Logger = c.Logger
	ctx = withLogger(ctx, c.Logger)
	c.Logger.Debugf("Layers: %s", formatLayers(popts.Layers))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s at zoom %d", popts.BBox, popts.Zoom))
	spinner.Start()

	p := newProgress(c.Logger)
	result, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return ctx.Err()
		}
		return err
	}
	p.done(fmt.Sprintf("Rendered %d tiles", result.Stats.TileCount))

	path := opts.output
	if path == "" {
		format := popts.Format
		if format == "" {
			format = pipeline.DefaultFormat
		}
		path = "snapshot." + format
	}
	if err := os.WriteFile(path, result.Image, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Snapshot %dx%d", result.Width, result.Height)
	printSnapshotStats(result.Stats.TileCount, result.Stats.LayerCount, len(result.Image), result.CacheInfo.ArtifactHit)
	printFile(path)
	return nil
}

// formatLayers renders a short human-readable layer summary for logs.
func formatLayers(layers []mosaic.Layer) string {
	parts := make([]string, len(layers))
	for i, l := range layers {
		name := l.Name
		if name == "" {
			name = l.URL
		}
		if l.Opacity < 1 {
			name = fmt.Sprintf("%s@%.2f", name, l.Opacity)
		}
		parts[i] = name
	}
	return strings.Join(parts, ", ")
}
