package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	CacheRoot string        `toml:"cache_root"`
	DSN       string        `toml:"dsn"`
	Fetch     FetchConfig   `toml:"fetch"`
	Logging   LoggingConfig `toml:"logging"`
}

type FetchConfig struct {
	UserAgent string `toml:"user_agent"`
	Timeout   string `toml:"timeout"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Load reads a TOML config, overlaying it on defaults. A missing file
// is not an error: it yields pure defaults. $WEBFS_CACHE_ROOT always
// wins over the file value.
func Load(path string) (*Config, error) {
	var cfg Config
	cfg.Logging.Format = "text"
	cfg.Logging.Level = "info"

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	if root := os.Getenv("WEBFS_CACHE_ROOT"); root != "" {
		cfg.CacheRoot = root
	}

	return &cfg, nil
}

// GetTimeout parses the fetch timeout. Zero means no timeout: a hung
// fetch blocks its caller.
func (c *FetchConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}
