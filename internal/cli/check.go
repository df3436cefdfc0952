package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pretree/pkg/engine"
)

// newCheckCmd creates the check command for structural document validation.
// It verifies reserved-key usage and reference integrity without needing the
// Go types the document was encoded from, then prints tree statistics.
func newCheckCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Verify the structure of a tree document",
		Long: `Verify that a tree document is well formed.

The check is registry-free: it validates reserved-key placement ($type,
$version, $ref) and resolves every reference pointer, but does not decode
the document back into native values. Use "-" to read from stdin.

Examples:
  pretree check graph.json
  cat graph.json | pretree check -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			tree, err := loadTree(args[0])
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			if err := engine.Verify(tree); err != nil {
				printError("Document is malformed")
				return err
			}
			stats := engine.Stat(tree)
			prog.done(fmt.Sprintf("Checked %d nodes", stats.Nodes))

			printSuccess("Document is well formed")
			if !quiet {
				printTreeStats(stats)
				if stats.Refs > 0 && args[0] != "-" {
					printNextStep("Render the reference graph", "pretree graph "+args[0])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress statistics output")
	return cmd
}
