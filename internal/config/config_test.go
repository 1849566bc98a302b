package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Assets.RepoRoot != "." {
		t.Errorf("expected repo root '.', got %s", cfg.Assets.RepoRoot)
	}
	if cfg.Assets.TilesRoot != "tiles" {
		t.Errorf("expected tiles root 'tiles', got %s", cfg.Assets.TilesRoot)
	}
	if cfg.Assets.DefaultTexture != "Assets/textures/default.png" {
		t.Errorf("unexpected default texture %s", cfg.Assets.DefaultTexture)
	}
	if cfg.Assets.MeshCacheDir != "build/mesh_cache" {
		t.Errorf("unexpected mesh cache dir %s", cfg.Assets.MeshCacheDir)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
assets:
  repo_root: /srv/assets
  tiles_root: world/tiles

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Assets.RepoRoot != "/srv/assets" {
		t.Errorf("expected repo root /srv/assets, got %s", cfg.Assets.RepoRoot)
	}
	if cfg.Assets.TilesRoot != "world/tiles" {
		t.Errorf("expected tiles root world/tiles, got %s", cfg.Assets.TilesRoot)
	}
	// Untouched keys keep their defaults.
	if cfg.Assets.MeshCacheDir != "build/mesh_cache" {
		t.Errorf("mesh cache dir lost its default: %s", cfg.Assets.MeshCacheDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("assets: [not a map"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.Assets.RepoRoot = "/srv/assets"
	cfg.Logging.Level = "warn"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !strings.Contains(string(data), "repo_root: /srv/assets") {
		t.Error("saved config missing repo_root")
	}

	loaded := Default()
	if err := loadFromFile(loaded, configPath); err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if loaded.Assets.RepoRoot != "/srv/assets" || loaded.Logging.Level != "warn" {
		t.Errorf("roundtrip mismatch: %+v", loaded)
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := Default()

	*flagDebug = true
	*flagRepo = "/data/world"
	*flagNoCache = true
	defer func() {
		*flagDebug = false
		*flagRepo = ""
		*flagNoCache = false
	}()

	applyFlags(cfg)

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
	if cfg.Assets.RepoRoot != "/data/world" {
		t.Errorf("expected repo root /data/world, got %s", cfg.Assets.RepoRoot)
	}
	if cfg.Assets.MeshCacheDir != "" {
		t.Errorf("expected cache disabled, got %s", cfg.Assets.MeshCacheDir)
	}
}
