// Package config loads engine settings for the memdb CLI from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable engine settings.
type Config struct {
	// HeapFloorBytes is the minimum free heap required before
	// allocation-heavy operations proceed.
	HeapFloorBytes uint64 `yaml:"heap_floor_bytes"`

	// SnapshotPath is the default snapshot file used by the CLI when no
	// path argument is given.
	SnapshotPath string `yaml:"snapshot_path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HeapFloorBytes: 30000,
		SnapshotPath:   "memdb.snapshot",
	}
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.HeapFloorBytes == 0 {
		cfg.HeapFloorBytes = Default().HeapFloorBytes
	}
	if cfg.SnapshotPath == "" {
		cfg.SnapshotPath = Default().SnapshotPath
	}
	return cfg, nil
}
