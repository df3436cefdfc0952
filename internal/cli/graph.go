package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pretree/pkg/engine"
	"github.com/matzehuels/pretree/pkg/render/refgraph"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string // output file path (derived from input if empty)
	format   string // output format: "dot" or "svg"
	detailed bool   // include primitive leaves in the diagram
}

// newGraphCmd creates the graph command for reference-graph rendering.
// The containers of a document become nodes; references become dashed edges
// pointing at their resolved targets.
func newGraphCmd() *cobra.Command {
	opts := graphOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Render a document's reference graph",
		Long: `Render the reference graph of a tree document.

Containers become graph nodes labelled with their type tags; references
become dashed edges to their resolved targets. Dangling references are
highlighted rather than dropped, so the graph is also a visual check.

Examples:
  pretree graph graph.json                  # graph.svg next to the input
  pretree graph -f dot graph.json           # DOT source to graph.dot
  pretree graph --detailed -o out.svg graph.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatDOT && opts.format != formatSVG {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			return runGraph(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (derived from input if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include primitive values in the graph")
	return cmd
}

// runGraph loads the document at input and renders its reference graph.
func runGraph(cmd *cobra.Command, input string, opts *graphOpts) error {
	logger := loggerFromContext(cmd.Context())

	tree, err := loadTree(input)
	if err != nil {
		return err
	}
	stats := engine.Stat(tree)
	logger.Debugf("Loaded document: %d nodes, %d refs", stats.Nodes, stats.Refs)

	dot := refgraph.ToDOT(tree, refgraph.Options{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		spin := newSpinnerWithContext(cmd.Context(), "Rendering reference graph...")
		spin.Start()
		data, err = refgraph.RenderSVG(dot)
		spin.Stop()
		if err != nil {
			return err
		}
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = graphOutputPath(input, opts.format)
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	if outputPath != "" {
		printSuccess("Rendered reference graph")
		printFile(outputPath)
	}
	return nil
}

// graphOutputPath derives the output file name from the input path and
// format. Stdin input falls back to a name in the working directory.
func graphOutputPath(input, format string) string {
	if input == "-" {
		return "refgraph." + format
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}
