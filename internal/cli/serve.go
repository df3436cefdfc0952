package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pretree/internal/server"
	"github.com/matzehuels/pretree/pkg/registry"
)

// shutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // bind address, overrides the config file
	noCache bool   // disable the document store and response cache
}

// newServeCmd creates the serve command running the HTTP API.
//
// The server checks, normalizes and renders documents and stores uploads
// under server-assigned IDs. The standalone binary has no application types
// to register, so the server runs with the built-in vocabulary only;
// embedders who need their own types use the server package directly.
func newServeCmd(cfg *config) *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Endpoints are mounted under /v1: check, normalize, graph, and a documents
store. The store backend is chosen from the config file: a Redis URL
selects Redis, otherwise documents go to the file cache under the XDG
cache directory.

Examples:
  pretree serve
  pretree serve --addr :9000 --no-cache`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable document storage and response caching")
	return cmd
}

// runServe builds the store and serves until ctx is cancelled.
func runServe(ctx context.Context, cfg *config, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	store, err := newStore(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	addr := opts.addr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	srv := server.New(server.Config{
		Registry: registry.New(),
		Store:    store,
		Logger:   logger,
	})

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}
