package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pretree/pkg/encoding/jsondoc"
	"github.com/matzehuels/pretree/pkg/engine"
)

// fmtOpts holds the command-line flags for the fmt command.
type fmtOpts struct {
	output  string // output file path (stdout if empty)
	write   bool   // rewrite the input file in place
	compact bool   // emit compact JSON instead of indented
}

// newFmtCmd creates the fmt command for canonical re-encoding.
// The document is parsed, structurally verified and written back out, which
// normalizes whitespace while preserving key order exactly.
func newFmtCmd() *cobra.Command {
	var opts fmtOpts

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Re-encode a tree document in canonical form",
		Long: `Re-encode a tree document with canonical formatting.

Key order is preserved; only whitespace changes. The document is verified
before writing, so a malformed document is never rewritten. Use "-" to
read from stdin.

Examples:
  pretree fmt graph.json            # formatted document to stdout
  pretree fmt -w graph.json         # rewrite in place
  pretree fmt --compact graph.json  # single-line output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.write && opts.output != "" {
				return fmt.Errorf("--write and --output are mutually exclusive")
			}
			if opts.write && args[0] == "-" {
				return fmt.Errorf("--write requires a file argument")
			}
			return runFmt(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "rewrite the input file in place")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "emit compact single-line JSON")
	return cmd
}

// runFmt loads, verifies and re-encodes the document at input.
func runFmt(cmd *cobra.Command, input string, opts *fmtOpts) error {
	logger := loggerFromContext(cmd.Context())

	tree, err := loadTree(input)
	if err != nil {
		return err
	}
	if err := engine.Verify(tree); err != nil {
		return err
	}

	var data []byte
	if opts.compact {
		data, err = jsondoc.Marshal(tree)
	} else {
		data, err = jsondoc.MarshalIndent(tree)
	}
	if err != nil {
		return err
	}

	outputPath := opts.output
	if opts.write {
		outputPath = input
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(append(data, '\n')); err != nil {
		return err
	}
	if outputPath != "" {
		logger.Debugf("Wrote %d bytes", len(data)+1)
		printSuccess("Formatted %s", outputPath)
	}
	return nil
}
