package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the workbench configuration, stored as JSON.
type Config struct {
	Schema int `json:"schema"`
	// DataDir holds the asset database and log file.
	DataDir string `json:"data_dir"`
	// DefaultBatchSize is the import batch size when batch mode is on.
	DefaultBatchSize int `json:"default_batch_size,omitempty"`
	// RateLimitMs is the pause between import batches in milliseconds.
	RateLimitMs int `json:"rate_limit_ms,omitempty"`
	// SkipDuplicates makes imports skip already-known url+method pairs.
	SkipDuplicates bool `json:"skip_duplicates,omitempty"`
	// AuthorizedDomains limits recursive discovery to in-scope hosts.
	AuthorizedDomains []string `json:"authorized_domains,omitempty"`
}

const CurrentConfigSchema = 1

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Schema:           CurrentConfigSchema,
		DataDir:          filepath.Join(home, ".local", "share", "trx"),
		DefaultBatchSize: 5,
		RateLimitMs:      100,
		SkipDuplicates:   true,
	}
}

// Load reads the config from the explicit path, then the XDG location,
// falling back to defaults when no file exists.
func Load(configPath string) (*Config, error) {
	for _, path := range getConfigPaths(configPath) {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		cfg := DefaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		cfg.expandPaths()
		return cfg, nil
	}

	return DefaultConfig(), nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func getConfigPaths(explicit string) []string {
	home, _ := os.UserHomeDir()

	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "trx", "config.json"))

	return paths
}

func (c *Config) expandPaths() {
	home, _ := os.UserHomeDir()
	if len(c.DataDir) > 0 && c.DataDir[0] == '~' {
		c.DataDir = filepath.Join(home, c.DataDir[1:])
	}
}

// DatabasePath returns the asset database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "assets.db")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "trx.log")
}

// RateLimit returns the inter-batch delay as a duration.
func (c *Config) RateLimit() time.Duration {
	return time.Duration(c.RateLimitMs) * time.Millisecond
}
