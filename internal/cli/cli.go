package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/pretree/pkg/basic"
	"github.com/matzehuels/pretree/pkg/cache"
	"github.com/matzehuels/pretree/pkg/encoding/jsondoc"
)

// appName is the application name used for directories and display.
const appName = "pretree"

// cacheDir returns the cache directory using XDG standard (~/.cache/pretree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// newStore builds the cache backend for the serve command.
//
// Selection order: noCache forces the null backend; a configured Redis URL
// wins over the file backend; an unusable cache directory degrades to the
// null backend rather than failing the command.
func newStore(ctx context.Context, cfg *config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		return cache.NewRedisCacheFromURL(ctx, cfg.RedisURL)
	}
	dir := cfg.CacheDir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// loadTree reads and parses a tree document from path, or from stdin when
// path is "-".
func loadTree(path string) (basic.Value, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return jsondoc.Unmarshal(data)
	}
	tree, err := jsondoc.ImportFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
