package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/DavideDeMarchi/geodash/pkg/hierarchy"
	"github.com/DavideDeMarchi/geodash/pkg/render"
)

// Tree output formats.
const (
	treeFormatChart   = "chart-json"
	treeFormatDOT     = "dot"
	treeFormatSVG     = "svg"
	treeFormatTreemap = "treemap"
)

// validTreeFormats is the set of supported tree output formats.
var validTreeFormats = map[string]bool{
	treeFormatChart:   true,
	treeFormatDOT:     true,
	treeFormatSVG:     true,
	treeFormatTreemap: true,
}

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	root      string // optional synthetic root node name
	separator string // name separator (default ".")
	format    string // output format
	output    string // output file path (stdout if empty)
	values    bool   // include values in dot labels
	labels    bool   // draw leaf labels in treemap output
	tui       bool   // open the interactive tree explorer
}

// treeCommand creates the tree command for building hierarchy charts.
//
// Input is a list of dotted names, one per line, read from a file argument
// or stdin. A line may carry an explicit value as "name=value"; values
// aggregate bottom-up so every ancestor holds the sum of its subtree.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{
		separator: ".",
		format:    treeFormatChart,
		labels:    true,
	}

	cmd := &cobra.Command{
		Use:   "tree [file]",
		Short: "Build a hierarchy from dotted names and render it",
		Long: `Build a hierarchy from a list of dotted names and render it.

Names are read one per line from the given file, or from stdin when no
file is given. Append "=value" to a line to weight that node; ancestor
values are the sum of their subtrees.

Examples:
  geodash tree modules.txt                        # chart arrays as JSON
  echo "app.api=2" | geodash tree --format dot    # Graphviz DOT
  geodash tree modules.txt -f treemap -o tree.png # treemap PNG
  geodash tree modules.txt --tui                  # interactive explorer`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validTreeFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'chart-json', 'dot', 'svg', or 'treemap')", opts.format)
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runTree(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.root, "root", "r", "", "synthetic root node name")
	cmd.Flags().StringVarP(&opts.separator, "separator", "s", opts.separator, "name separator")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: chart-json (default), dot, svg, treemap")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.values, "values", false, "include aggregated values in dot/svg labels")
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw leaf labels in treemap output")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "open the interactive tree explorer")

	return cmd
}

// readNames parses "name[=value]" lines from r. Blank lines and lines
// starting with # are skipped.
func readNames(r io.Reader) ([]string, map[string]float64, error) {
	var names []string
	values := map[string]float64{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name := line
		if idx := strings.LastIndex(line, "="); idx >= 0 {
			v, err := strconv.ParseFloat(strings.TrimSpace(line[idx+1:]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("parse value in %q: %w", line, err)
			}
			name = strings.TrimSpace(line[:idx])
			values[name] = v
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return names, values, nil
}

// runTree reads names, builds the hierarchy and writes the requested output.
func (c *CLI) runTree(ctx context.Context, input string, opts *treeOpts) error {
	var r io.Reader = os.Stdin
	if input != "" {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	names, values, err := readNames(r)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Read %d names (%d with values)", len(names), len(values))

	buildOpts := []hierarchy.Option{hierarchy.WithSeparator(opts.separator)}
	if opts.root != "" {
		buildOpts = append(buildOpts, hierarchy.WithRoot(opts.root))
	}
	if len(values) > 0 {
		buildOpts = append(buildOpts, hierarchy.WithValues(values))
	}

	tree := hierarchy.Build(names, buildOpts...)
	c.Logger.Infof("Built hierarchy: %d nodes", tree.Len())

	if opts.tui {
		return runTreeExplorer(tree)
	}

	data, err := renderTree(ctx, tree, opts)
	if err != nil {
		return err
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess("Generated %s", opts.format)
		printFile(opts.output)
	}
	return nil
}

// renderTree dispatches to the appropriate renderer based on format.
func renderTree(ctx context.Context, tree *hierarchy.Tree, opts *treeOpts) ([]byte, error) {
	switch opts.format {
	case treeFormatChart:
		return json.MarshalIndent(tree.Chart(), "", "  ")
	case treeFormatDOT:
		return []byte(render.ToDOT(tree, render.DOTOptions{Values: opts.values})), nil
	case treeFormatSVG:
		dot := render.ToDOT(tree, render.DOTOptions{Values: opts.values})
		return render.RenderSVG(ctx, dot)
	case treeFormatTreemap:
		return render.Treemap(tree, render.WithLabels(opts.labels))
	default:
		return nil, fmt.Errorf("unknown format: %s", opts.format)
	}
}

// runTreeExplorer starts the interactive bubbletea tree explorer.
func runTreeExplorer(tree *hierarchy.Tree) error {
	model := NewTreeModel(tree)
	_, err := tea.NewProgram(model).Run()
	return err
}

// nopCloser wraps a writer so stdout can be returned from openOutput
// without closing it.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens the output file, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
