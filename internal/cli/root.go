package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with values
// injected via ldflags at build time.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2026-08-30T14:32:01Z")
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the pretree CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (check, fmt,
// graph, browse, serve, cache), configures logging based on the --verbose
// flag, loads the optional config file, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
		cfg        config
	)

	root := &cobra.Command{
		Use:          "pretree",
		Short:        "Pretree checks, normalizes and renders preserialized tree documents",
		Long:         `Pretree is a CLI tool for working with tagged-tree documents: flat, reference-linked encodings of object graphs. It verifies document structure, reformats documents canonically, renders their reference graphs, and serves the same operations over HTTP.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)

			loaded, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			logger.Debugf("Config: cache_dir=%q redis_url=%q listen_addr=%q",
				cfg.CacheDir, cfg.RedisURL, cfg.ListenAddr)

			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("pretree %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/pretree/config.toml)")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newFmtCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newBrowseCmd())
	root.AddCommand(newServeCmd(&cfg))
	root.AddCommand(newCacheCmd(&cfg))
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
