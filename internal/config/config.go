// Package config handles tool configuration loading and management.
package config

// Config holds all pipeline settings.
type Config struct {
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
}

// AssetsConfig holds workspace asset locations.
type AssetsConfig struct {
	RepoRoot       string `yaml:"repo_root"`       // Workspace root all relative paths resolve against
	TilesRoot      string `yaml:"tiles_root"`      // Tile category directories, relative to the repo root
	DefaultTexture string `yaml:"default_texture"` // Fallback texture for tiles without one
	MeshCacheDir   string `yaml:"mesh_cache_dir"`  // Baked mesh cache; empty disables caching
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			RepoRoot:       ".",
			TilesRoot:      "tiles",
			DefaultTexture: "Assets/textures/default.png",
			MeshCacheDir:   "build/mesh_cache",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
