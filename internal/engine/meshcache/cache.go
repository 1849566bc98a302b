// Package meshcache is a disk cache of assembled vertex streams, keyed
// by model path so repeated level loads skip glTF decoding entirely.
package meshcache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/crowdware/raidkit/internal/engine/model"
	"github.com/crowdware/raidkit/internal/logger"
)

// Cache stores gob-encoded meshes under a directory, one file per key.
type Cache struct {
	dir string
	mu  sync.Mutex

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New opens (creating if needed) a cache rooted at dir.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

// keyFile hashes the key with FNV-1a so selectors and separators never
// leak into filenames.
func (c *Cache) keyFile(key string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return filepath.Join(c.dir, fmt.Sprintf("%016x.mesh", h.Sum64()))
}

// Get returns the cached mesh for key, or false on a miss. A corrupt
// entry counts as a miss and is removed.
func (c *Cache) Get(key string) (*model.Mesh, bool) {
	path := c.keyFile(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}

	var m model.Mesh
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		logger.Sugar.Warnf("mesh cache: dropping corrupt entry %s: %v", path, err)
		_ = os.Remove(path)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &m, true
}

// Put stores a mesh under key. The write is atomic: encode to a temp
// file in the same directory, then rename over the target.
func (c *Cache) Put(key string, m *model.Mesh) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode mesh: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(c.dir, "mesh-*.tmp")
	if err != nil {
		return fmt.Errorf("mesh cache temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write mesh cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close mesh cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.keyFile(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("publish mesh cache entry: %w", err)
	}
	return nil
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
