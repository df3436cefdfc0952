package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// defaultListenAddr is where the serve command binds unless overridden.
const defaultListenAddr = "127.0.0.1:8372"

// config holds user-level settings read from the TOML config file.
//
// All fields are optional; flags override config values which override
// built-in defaults.
type config struct {
	// CacheDir overrides the XDG cache directory for the file backend.
	CacheDir string `toml:"cache_dir"`

	// RedisURL selects the Redis cache backend when non-empty
	// (e.g., "redis://localhost:6379/0").
	RedisURL string `toml:"redis_url"`

	// ListenAddr is the serve command's bind address.
	ListenAddr string `toml:"listen_addr"`
}

// configPath returns the default config file location
// (~/.config/pretree/config.toml, honoring XDG_CONFIG_HOME).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file is not an error; a malformed file is.
func loadConfig(path string) (config, error) {
	cfg := config{ListenAddr: defaultListenAddr}

	explicit := path != ""
	if !explicit {
		var err error
		path, err = configPath()
		if err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	return cfg, nil
}
