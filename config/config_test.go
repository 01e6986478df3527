package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"imagedupes/config"
	"imagedupes/fingerprint"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	if cfg.SimilarityThreshold != 5 {
		t.Errorf("SimilarityThreshold = %d, want 5", cfg.SimilarityThreshold)
	}
	if cfg.HashGridSize != 8 {
		t.Errorf("HashGridSize = %d, want 8", cfg.HashGridSize)
	}
	if cfg.Kind() != fingerprint.KindAverage {
		t.Errorf("Kind() = %s, want average", cfg.Kind())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("similarity_threshold: 3\nhash_grid_size: 16\nhash_kind: perception\ninclude_heic: true\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SimilarityThreshold != 3 {
		t.Errorf("SimilarityThreshold = %d, want 3", cfg.SimilarityThreshold)
	}
	if cfg.HashGridSize != 16 {
		t.Errorf("HashGridSize = %d, want 16", cfg.HashGridSize)
	}
	if cfg.Kind() != fingerprint.KindPerception {
		t.Errorf("Kind() = %s, want perception", cfg.Kind())
	}
	if !cfg.IncludeHeic {
		t.Error("IncludeHeic = false, want true")
	}
	// Unset keys keep their defaults.
	if len(cfg.Extensions) == 0 {
		t.Error("Extensions lost their default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := config.Load(missing, false); err != nil {
		t.Errorf("Load(optional missing file): %v", err)
	}
	if _, err := config.Load(missing, true); err == nil {
		t.Error("Load(required missing file) succeeded")
	}
}

func TestApplyArgs(t *testing.T) {
	cfg := config.Default()
	args := map[string]string{
		"threshold": "8",
		"grid":      "16",
		"hash":      "perception",
		"no-cache":  "true",
	}
	if err := cfg.ApplyArgs(args); err != nil {
		t.Fatalf("ApplyArgs: %v", err)
	}
	if cfg.SimilarityThreshold != 8 || cfg.HashGridSize != 16 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.CachePath != "" {
		t.Errorf("no-cache left CachePath = %q", cfg.CachePath)
	}

	if err := cfg.ApplyArgs(map[string]string{"threshold": "many"}); err == nil {
		t.Error("ApplyArgs accepted non-numeric threshold")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"negative threshold", func(c *config.Config) { c.SimilarityThreshold = -1 }},
		{"tiny grid", func(c *config.Config) { c.HashGridSize = 1 }},
		{"bad kind", func(c *config.Config) { c.HashKind = "sha256" }},
		{"no extensions", func(c *config.Config) { c.Extensions = nil }},
		{"dotless extension", func(c *config.Config) { c.Extensions = []string{"jpg"} }},
		{"negative workers", func(c *config.Config) { c.Workers = -2 }},
	}
	for _, tc := range cases {
		cfg := config.Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate accepted invalid config", tc.name)
		}
	}
}
