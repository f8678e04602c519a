// Package storecfg reads and writes the per-store configuration file that
// pins a memory store to the embedding setup it was created with. Once
// written, the file is authoritative: vectors in the store were produced by
// one model at one dimension, and mixing models silently corrupts search
// results.
package storecfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Filename is the configuration file name inside a store directory.
const Filename = "memory_config.json"

// Config pins a store to its embedding provider, model, and dimension.
type Config struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
	DBPath    string `json:"db_path"`
	CreatedAt int64  `json:"created_at"`
	Engine    string `json:"engine,omitempty"`
}

// Path returns the configuration file path for a store directory.
func Path(storePath string) string {
	return filepath.Join(storePath, Filename)
}

// Exists reports whether a store directory already carries a configuration.
func Exists(storePath string) bool {
	_, err := os.Stat(Path(storePath))
	return err == nil
}

// Load reads the configuration from a store directory.
func Load(storePath string) (*Config, error) {
	data, err := os.ReadFile(Path(storePath))
	if err != nil {
		return nil, fmt.Errorf("reading store config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing store config: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration into a store directory. It refuses to
// overwrite an existing file; the pinned embedding setup is immutable for
// the lifetime of the store.
func Save(storePath string, cfg *Config) error {
	if Exists(storePath) {
		return fmt.Errorf("store config already exists at %s", Path(storePath))
	}

	if cfg.CreatedAt == 0 {
		cfg.CreatedAt = time.Now().Unix()
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store config: %w", err)
	}

	if err := os.WriteFile(Path(storePath), data, 0o644); err != nil {
		return fmt.Errorf("writing store config: %w", err)
	}

	return nil
}
