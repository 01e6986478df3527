// Package config holds the scan tunables. Values come from an optional YAML
// file with command-line overrides layered on top; code never reads flags
// directly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"imagedupes/fingerprint"
	"imagedupes/imageloader"
)

// Config carries every tunable of a scan run.
type Config struct {
	// SimilarityThreshold is the maximum Hamming distance at which two
	// images count as duplicates. 0-5 catches very similar images, 5-10
	// similar ones.
	SimilarityThreshold int `yaml:"similarity_threshold"`

	// HashGridSize is the fingerprint grid edge; 8 gives 64-bit hashes.
	HashGridSize int `yaml:"hash_grid_size"`

	// HashKind selects the hashing algorithm: average or perception.
	HashKind string `yaml:"hash_kind"`

	// Extensions lists the file extensions to scan, dot included.
	Extensions []string `yaml:"extensions"`

	// IncludeRaw enables the exiftool-based RAW preview loader.
	IncludeRaw bool `yaml:"include_raw"`

	// IncludeHeic enables the HEIC/HEIF loader.
	IncludeHeic bool `yaml:"include_heic"`

	// CachePath is the fingerprint cache database. Empty disables caching.
	CachePath string `yaml:"cache_path"`

	// Workers bounds parallel fingerprint extraction; 0 means auto.
	Workers int `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SimilarityThreshold: 5,
		HashGridSize:        8,
		HashKind:            string(fingerprint.KindAverage),
		Extensions:          append([]string(nil), imageloader.DefaultExtensions...),
		CachePath:           DefaultCachePath(),
	}
}

// DefaultCachePath places the cache database next to the executable,
// falling back to the working directory.
func DefaultCachePath() string {
	exePath, err := os.Executable()
	if err != nil {
		return "imagedupes.db"
	}
	return filepath.Join(filepath.Dir(exePath), "imagedupes.db")
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error when the path is the implicit default.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyArgs overlays command-line overrides onto the config.
func (c *Config) ApplyArgs(args map[string]string) error {
	if v, ok := args["threshold"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid threshold %q: %w", v, err)
		}
		c.SimilarityThreshold = n
	}
	if v, ok := args["grid"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid grid size %q: %w", v, err)
		}
		c.HashGridSize = n
	}
	if v, ok := args["hash"]; ok {
		c.HashKind = v
	}
	if v, ok := args["workers"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid worker count %q: %w", v, err)
		}
		c.Workers = n
	}
	if v, ok := args["cache"]; ok {
		c.CachePath = v
	}
	if _, ok := args["no-cache"]; ok {
		c.CachePath = ""
	}
	if _, ok := args["include-raw"]; ok {
		c.IncludeRaw = true
	}
	if _, ok := args["include-heic"]; ok {
		c.IncludeHeic = true
	}
	return nil
}

// Validate checks the invariants the core relies on.
func (c *Config) Validate() error {
	if c.SimilarityThreshold < 0 {
		return fmt.Errorf("similarity_threshold must be non-negative, got %d", c.SimilarityThreshold)
	}
	if c.HashGridSize < 2 {
		return fmt.Errorf("hash_grid_size must be at least 2, got %d", c.HashGridSize)
	}
	if _, err := fingerprint.ParseKind(c.HashKind); err != nil {
		return err
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions list is empty")
	}
	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", c.Extensions[i])
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

// Kind returns the parsed hash kind. Call Validate first.
func (c *Config) Kind() fingerprint.Kind {
	kind, _ := fingerprint.ParseKind(c.HashKind)
	return kind
}
