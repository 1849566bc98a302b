// Package anim catalogs animation clips and bakes fixed-rate skinning
// palettes from glTF scene files.
package anim

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/crowdware/raidkit/internal/logger"
	"github.com/crowdware/raidkit/pkg/gltf"
)

// ErrNoAnimations means the scene file carries no animation clips.
var ErrNoAnimations = errors.New("scene has no animations")

// ClipInfo describes one animation clip.
type ClipInfo struct {
	Name     string
	Duration float32
}

type catalogEntry struct {
	clips []ClipInfo
	err   error
}

// Catalog memoizes clip metadata per scene file. Results stick, failures
// included, so a broken file is parsed (and reported) once instead of on
// every lookup.
type Catalog struct {
	mu      sync.Mutex
	entries map[string]catalogEntry
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]catalogEntry)}
}

// Clips returns the ordered clip list for the scene at path. Any fragment
// selector is ignored; the cache key is the resolved file path.
func (c *Catalog) Clips(path string) ([]ClipInfo, error) {
	base, _ := gltf.SplitFragment(path)
	key := base
	if abs, err := filepath.Abs(base); err == nil {
		key = abs
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		logger.Sugar.Debugf("clip cache hit: %s", key)
		return e.clips, e.err
	}

	clips, err := readClips(base)
	c.entries[key] = catalogEntry{clips: clips, err: err}
	return clips, err
}

func readClips(path string) ([]ClipInfo, error) {
	doc, err := gltf.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if len(doc.Animations) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoAnimations)
	}

	clips := make([]ClipInfo, 0, len(doc.Animations))
	for i := range doc.Animations {
		a := &doc.Animations[i]
		name := a.Name
		if name == "" {
			name = "default"
		}
		clips = append(clips, ClipInfo{
			Name:     name,
			Duration: clipDuration(doc, a),
		})
	}
	return clips, nil
}

// clipDuration is the maximum last keyframe time over the clip's channels.
// Channels with broken sampler or accessor references are skipped, not
// fatal.
func clipDuration(doc *gltf.Document, a *gltf.Animation) float32 {
	var dur float32
	for _, ch := range a.Channels {
		if ch.Sampler < 0 || ch.Sampler >= len(a.Samplers) {
			continue
		}
		times, err := doc.Floats(a.Samplers[ch.Sampler].Input, 1)
		if err != nil || len(times) == 0 {
			continue
		}
		if last := times[len(times)-1]; last > dur {
			dur = last
		}
	}
	return dur
}
