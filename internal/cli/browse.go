package cli

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pretree/pkg/engine"
)

// newBrowseCmd creates the browse command for interactive tree exploration.
// Documents are verified before the browser starts so the model never sees
// a malformed tree.
func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file>",
		Short: "Explore a tree document interactively",
		Long: `Open a tree document in an interactive terminal browser.

Containers fold and unfold in place; the footer shows the pointer of the
selected node. References are shown as links to their targets.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadTree(args[0])
			if err != nil {
				return err
			}
			if err := engine.Verify(tree); err != nil {
				return err
			}

			title := filepath.Base(args[0])
			if args[0] == "-" {
				title = "stdin"
			}

			model := NewBrowseModel(tree, title)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
