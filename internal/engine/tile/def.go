// Package tile loads the tile catalog: per-category tiles.yaml files
// under a tiles root, each tile resolved to a mesh, texture and optional
// animation clips.
package tile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// blockCM is the world block edge length in centimeters.
const blockCM = 60

// Def is one tile definition as authored in tiles.yaml.
type Def struct {
	Key          string `yaml:"key"`
	Name         string `yaml:"name"`
	Icon         string `yaml:"icon"`
	Texture      string `yaml:"texture"`
	Model        string `yaml:"model"`
	Animation    string `yaml:"animation"`
	Type         string `yaml:"type"`
	Material     string `yaml:"material"`
	Placement    string `yaml:"placement"`
	HeightCM     int    `yaml:"height_cm"`
	ScalePercent int    `yaml:"scale_percent"`

	// Derived, not authored.
	HeightBlocks int    `yaml:"-"`
	Category     string `yaml:"-"`
}

type tilesFile struct {
	Tiles []Def `yaml:"tiles"`
}

var (
	validMaterials  = map[string]bool{"": true, "texture": true, "vertex": true}
	validPlacements = map[string]bool{"": true, "ground": true, "wall": true, "ceiling": true}
)

// parseTilesFile reads one category's tiles.yaml. Tiles without a key
// are dropped; unknown enum values fail the whole file.
func parseTilesFile(path, category string) ([]Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tiles file: %w", err)
	}
	var f tilesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make([]Def, 0, len(f.Tiles))
	for i := range f.Tiles {
		d := f.Tiles[i]
		if d.Key == "" {
			continue
		}
		if !validMaterials[d.Material] {
			return nil, fmt.Errorf("%s: tile %q: unknown material %q", path, d.Key, d.Material)
		}
		if !validPlacements[d.Placement] {
			return nil, fmt.Errorf("%s: tile %q: unknown placement %q", path, d.Key, d.Placement)
		}
		d.Category = category
		d.HeightBlocks = heightBlocks(d.HeightCM, d.ScalePercent, blockCM)
		out = append(out, d)
	}
	return out, nil
}

// heightBlocks converts an authored height and scale to whole blocks,
// rounding up. Non-positive inputs fall back to one block / 100%.
func heightBlocks(heightCM, scalePercent, blockCM int) int {
	if heightCM <= 0 {
		heightCM = blockCM
	}
	if scalePercent <= 0 {
		scalePercent = 100
	}
	effCM := heightCM * scalePercent
	denom := blockCM * 100
	if denom <= 0 {
		denom = 1
	}
	return (effCM + denom - 1) / denom
}

// listCategories returns the sorted subdirectories of root.
func listCategories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
