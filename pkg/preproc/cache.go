package preproc

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// cacheKey derives a content-addressed key as H(assetsRoot, "preproc",
// versionTag).
func cacheKey(assetsRoot, versionTag string) string {
	h := sha256.New()
	h.Write([]byte(assetsRoot))
	h.Write([]byte("preproc"))
	h.Write([]byte(versionTag))
	sum := h.Sum(nil)
	return fmt.Sprintf("%x", sum[:16])
}

// Cache stores a Scanner's output on disk, keyed by a hash of the asset
// root path and a caller-supplied version tag (e.g. a build number or
// asset-root mtime marker). A cache hit skips the bundle walk entirely.
type Cache struct {
	root string
}

// NewCache prepares a cache rooted at dir. The directory is created lazily
// on first Put.
func NewCache(dir string) *Cache {
	return &Cache{root: dir}
}

func (c *Cache) path(assetsRoot, versionTag string) string {
	return filepath.Join(c.root, cacheKey(assetsRoot, versionTag)+".json")
}

// Get returns the cached interest points for the given asset root and
// version tag, or ok=false on a cache miss.
func (c *Cache) Get(assetsRoot, versionTag string) ([]InterestPoint, bool) {
	data, err := os.ReadFile(c.path(assetsRoot, versionTag))
	if err != nil {
		return nil, false
	}
	var points []InterestPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, false
	}
	return points, true
}

// Put writes points to the cache, first to a temp file in the same
// directory and then atomically renamed into place, so a concurrent
// reader never observes a partially-written cache file.
func (c *Cache) Put(assetsRoot, versionTag string, points []InterestPoint) error {
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return fmt.Errorf("creating cache dir %s: %w", c.root, err)
	}

	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("marshaling interest points: %w", err)
	}

	finalPath := c.path(assetsRoot, versionTag)
	tmp, err := os.CreateTemp(c.root, "scan-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp cache file into place: %w", err)
	}
	return nil
}

// Purge removes every cache entry under the cache root, forcing the next
// Scan to re-walk the asset tree. This backs the `-purge` CLI flag.
func (c *Cache) Purge() error {
	entries, err := os.ReadDir(c.root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cache dir %s: %w", c.root, err)
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.root, e.Name())); err != nil {
			return fmt.Errorf("removing cache entry %s: %w", e.Name(), err)
		}
	}
	return nil
}
