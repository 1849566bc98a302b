package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagRepo    = flag.String("repo", "", "Workspace root for asset resolution")
	flagTiles   = flag.String("tiles", "", "Tiles root relative to the workspace")
	flagCache   = flag.String("cache", "", "Mesh cache directory")
	flagNoCache = flag.Bool("no-cache", false, "Disable the mesh cache")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRepo != "" {
		cfg.Assets.RepoRoot = *flagRepo
	}
	if *flagTiles != "" {
		cfg.Assets.TilesRoot = *flagTiles
	}
	if *flagCache != "" {
		cfg.Assets.MeshCacheDir = *flagCache
	}
	if *flagNoCache {
		cfg.Assets.MeshCacheDir = ""
	}
}
