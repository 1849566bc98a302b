package tile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crowdware/raidkit/internal/engine/anim"
	"github.com/crowdware/raidkit/internal/engine/meshcache"
	"github.com/crowdware/raidkit/internal/engine/model"
	"github.com/crowdware/raidkit/internal/logger"
)

// ErrNoTiles means the tiles root held no usable tile definitions.
var ErrNoTiles = errors.New("no tile definitions found")

// Entry is one catalog tile with its resolved resources. Mesh is never
// nil; a tile whose model failed to load carries an empty mesh so the
// catalog indices stay aligned with the definitions.
type Entry struct {
	Def           Def
	Mesh          *model.Mesh
	TexturePath   string
	AnimationPath string
	Clips         []anim.ClipInfo
}

// Catalog is the loaded tile set, indexed by tile key.
type Catalog struct {
	Entries []Entry
	byKey   map[string]int
}

// ByKey returns the entry for a tile key.
func (c *Catalog) ByKey(key string) (*Entry, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return nil, false
	}
	return &c.Entries[i], true
}

// Options configures catalog loading. TilesRoot and DefaultTexture are
// resolved against RepoRoot unless absolute. Cache and Anims are
// optional; a fresh anim catalog is created when Anims is nil.
type Options struct {
	RepoRoot       string
	TilesRoot      string
	DefaultTexture string
	Cache          *meshcache.Cache
	Anims          *anim.Catalog
}

// Load reads every category's tiles.yaml under the tiles root and
// resolves each tile's model, texture and animation. File-level parse
// errors and per-tile resource failures are logged and skipped; only an
// empty resulting catalog is an error.
func Load(opts Options) (*Catalog, error) {
	root := resolveWorkspacePath(opts.RepoRoot, opts.TilesRoot)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("tile catalog root not found: %s", root)
	}
	logger.Sugar.Infof("tile catalog root: %s", root)

	categories, err := listCategories(root)
	if err != nil {
		return nil, fmt.Errorf("list categories in %s: %w", root, err)
	}

	var defs []Def
	for _, dir := range categories {
		path := filepath.Join(dir, "tiles.yaml")
		if !fileExists(path) {
			continue
		}
		tiles, err := parseTilesFile(path, filepath.Base(dir))
		if err != nil {
			logger.Sugar.Errorf("tile catalog error in %s: %v", path, err)
			continue
		}
		defs = append(defs, tiles...)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoTiles, root)
	}

	anims := opts.Anims
	if anims == nil {
		anims = anim.NewCatalog()
	}
	l := &loader{opts: opts, anims: anims}

	cat := &Catalog{
		Entries: make([]Entry, 0, len(defs)),
		byKey:   make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		cat.byKey[def.Key] = len(cat.Entries)
		cat.Entries = append(cat.Entries, l.entry(def))
	}
	return cat, nil
}

type loader struct {
	opts  Options
	anims *anim.Catalog
}

func (l *loader) entry(def Def) Entry {
	e := Entry{Def: def}

	// "texture:" pseudo-models carry a texture override and render as
	// the standard block.
	modelRef := def.Model
	if strings.HasPrefix(modelRef, "texture:") {
		if tex := stripResPrefix(modelRef[len("texture:"):]); tex != "" {
			e.Def.Texture = tex
		}
		modelRef = "block.glb"
	}
	modelRef = normalizeModel(modelRef)
	modelPath := l.resolveModelPath(modelRef)

	mesh, err := l.loadMesh(modelPath)
	if err != nil {
		logger.Sugar.Errorf("tile %q: failed to load model %s: %v", def.Key, modelPath, err)
		mesh = &model.Mesh{}
	}
	e.Mesh = mesh

	if animRef := stripDotSlash(stripResPrefix(def.Animation)); animRef != "" {
		resolved := resolveWorkspacePath(l.opts.RepoRoot, animRef)
		clips, err := l.anims.Clips(resolved)
		if err != nil {
			logger.Sugar.Errorf("tile %q: failed to load animation %s: %v", def.Key, resolved, err)
		} else {
			e.AnimationPath = resolved
			e.Clips = clips
		}
	}

	e.TexturePath = l.resolveTexture(e.Def)
	return e
}

func (l *loader) loadMesh(path string) (*model.Mesh, error) {
	if l.opts.Cache != nil {
		if m, ok := l.opts.Cache.Get(path); ok {
			return m, nil
		}
	}
	m, err := model.Load(path)
	if err != nil {
		return nil, err
	}
	if l.opts.Cache != nil {
		if err := l.opts.Cache.Put(path, m); err != nil {
			logger.Sugar.Warnf("mesh cache write failed for %s: %v", path, err)
		}
	}
	return m, nil
}

// resolveTexture maps a tile texture reference to a file on disk,
// falling back to the default texture when it cannot be found.
func (l *loader) resolveTexture(def Def) string {
	tex := def.Texture
	if tex == "" {
		tex = l.opts.DefaultTexture
	}
	tex = mapLegacyTexturePath(stripDotSlash(stripResPrefix(tex)))
	resolved := resolveWorkspacePath(l.opts.RepoRoot, tex)
	if fileExists(resolved) {
		return resolved
	}
	if builderTex := resolveWorkspacePath(l.opts.RepoRoot, filepath.Join("builder", tex)); fileExists(builderTex) {
		return builderTex
	}
	fallback := resolveWorkspacePath(l.opts.RepoRoot, mapLegacyTexturePath(l.opts.DefaultTexture))
	logger.Sugar.Warnf("missing tile texture %s (tile %q), using %s", resolved, def.Key, fallback)
	return fallback
}

// resolveModelPath finds the file behind a model reference. Bare names
// probe the block build cache, then the builder assets; explicit paths
// resolve against the repo root. Fragments survive resolution.
func (l *loader) resolveModelPath(ref string) string {
	if ref == "" {
		return ref
	}
	base, selectors := splitRef(ref)
	if filepath.IsAbs(base) {
		return ref
	}
	if strings.ContainsAny(base, "/\\") || strings.HasPrefix(base, ".") {
		candidate := resolveWorkspacePath(l.opts.RepoRoot, base)
		if fileExists(candidate) {
			return candidate + selectors
		}
		return ref
	}
	for _, prefix := range []string{"build/blocks_cache", filepath.Join("builder", "assets", "blocks")} {
		candidate := resolveWorkspacePath(l.opts.RepoRoot, filepath.Join(prefix, base))
		if fileExists(candidate) {
			return candidate + selectors
		}
	}
	return ref
}

// normalizeModel canonicalizes a model reference: empty references mean
// the standard block, res:// and stale ../build/ prefixes are stripped.
func normalizeModel(ref string) string {
	base, selectors := splitRef(ref)
	if base == "" {
		return "block.glb" + selectors
	}
	base = stripResPrefix(base)
	if strings.HasPrefix(base, "../build/") {
		base = base[len("../"):]
	}
	if base == "" {
		return "block.glb" + selectors
	}
	return base + selectors
}

// splitRef separates a model reference from its #selector suffix.
func splitRef(ref string) (base, selectors string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

func stripResPrefix(path string) string {
	return strings.TrimPrefix(path, "res://")
}

func stripDotSlash(path string) string {
	return strings.TrimPrefix(path, "./")
}

func mapLegacyTexturePath(path string) string {
	const legacy = "assets/textures/"
	if strings.HasPrefix(path, legacy) {
		return "Assets/textures/" + path[len(legacy):]
	}
	return path
}

func resolveWorkspacePath(root, rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(root, rel)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
