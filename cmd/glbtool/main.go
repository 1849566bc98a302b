// glbtool is a CLI utility for inspecting glTF scene assets and the
// tile catalog built from them.
package main

import (
	"fmt"
	"os"

	"github.com/crowdware/raidkit/internal/config"
	"github.com/crowdware/raidkit/internal/engine/anim"
	"github.com/crowdware/raidkit/internal/engine/meshcache"
	"github.com/crowdware/raidkit/internal/engine/model"
	"github.com/crowdware/raidkit/internal/engine/tile"
	"github.com/crowdware/raidkit/internal/logger"
	"github.com/crowdware/raidkit/pkg/gltf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := logger.Init("info", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "mesh":
		cmdMesh(args)
	case "clips":
		cmdClips(args)
	case "bake":
		cmdBake(args)
	case "tiles":
		cmdTiles(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`glbtool - glTF asset pipeline utility

Usage:
  glbtool <command> [options]

Commands:
  info <file>              Show scene document counts
  mesh <file[#selector]>   Assemble a mesh and print stream stats
  clips <file>             List animation clips and durations
  bake <model> [anim]      Bake a 30 Hz skinning palette
  tiles [root]             Load the tile catalog and print a summary

Examples:
  glbtool info block.glb
  glbtool mesh character.glb#Body
  glbtool clips walk.gltf
  glbtool bake character.glb walk.gltf
  glbtool tiles ./tiles`)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fatalf("usage: glbtool info <file>")
	}

	doc, err := gltf.Load(args[0])
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Scene:      %s\n", args[0])
	fmt.Printf("Nodes:      %d\n", len(doc.Nodes))
	fmt.Printf("Meshes:     %d\n", len(doc.Meshes))
	fmt.Printf("Skins:      %d\n", len(doc.Skins))
	fmt.Printf("Animations: %d\n", len(doc.Animations))
	fmt.Printf("Accessors:  %d\n", len(doc.Accessors))
	fmt.Printf("Buffers:    %d\n", len(doc.Buffers))
	for _, w := range doc.Warnings() {
		fmt.Printf("Warning:    %s\n", w)
	}
}

func cmdMesh(args []string) {
	if len(args) < 1 {
		fatalf("usage: glbtool mesh <file[#selector]>")
	}

	m, err := model.Load(args[0])
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Vertices:  %d\n", m.VertexCount())
	fmt.Printf("Triangles: %d\n", m.VertexCount()/3)
	fmt.Printf("UVs:       %v\n", m.HasUV())
	fmt.Printf("Colors:    %v\n", len(m.Colors) > 0)
	if m.TexturePath != "" {
		fmt.Printf("Texture:   %s\n", m.TexturePath)
	}
}

func cmdClips(args []string) {
	if len(args) < 1 {
		fatalf("usage: glbtool clips <file>")
	}

	clips, err := anim.NewCatalog().Clips(args[0])
	if err != nil {
		fatalf("%v", err)
	}

	for _, c := range clips {
		fmt.Printf("%-24s %.3fs\n", c.Name, c.Duration)
	}
}

func cmdBake(args []string) {
	if len(args) < 1 {
		fatalf("usage: glbtool bake <model> [anim]")
	}
	animPath := ""
	if len(args) > 1 {
		animPath = args[1]
	}

	fs, err := anim.Bake(args[0], animPath)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Joints:   %d\n", fs.JointCount)
	fmt.Printf("Frames:   %d\n", fs.FrameCount)
	fmt.Printf("Duration: %.3fs\n", fs.Duration)
	fmt.Printf("Palette:  %d floats (%d KB)\n", len(fs.Palette), len(fs.Palette)*4/1024)
}

func cmdTiles(args []string) {
	cfg, err := config.Load()
	if err != nil {
		fatalf("%v", err)
	}
	if len(args) > 0 {
		cfg.Assets.TilesRoot = args[0]
	}

	var cache *meshcache.Cache
	if cfg.Assets.MeshCacheDir != "" {
		cache, err = meshcache.New(cfg.Assets.MeshCacheDir)
		if err != nil {
			fatalf("%v", err)
		}
	}

	cat, err := tile.Load(tile.Options{
		RepoRoot:       cfg.Assets.RepoRoot,
		TilesRoot:      cfg.Assets.TilesRoot,
		DefaultTexture: cfg.Assets.DefaultTexture,
		Cache:          cache,
	})
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Tiles: %d\n", len(cat.Entries))
	for i := range cat.Entries {
		e := &cat.Entries[i]
		fmt.Printf("  %-20s %-10s verts=%-6d blocks=%d", e.Def.Key, e.Def.Category,
			e.Mesh.VertexCount(), e.Def.HeightBlocks)
		if len(e.Clips) > 0 {
			fmt.Printf(" clips=%d", len(e.Clips))
		}
		fmt.Println()
	}
	if cache != nil {
		hits, misses := cache.Stats()
		fmt.Printf("Mesh cache: %d hits, %d misses\n", hits, misses)
	}
}
