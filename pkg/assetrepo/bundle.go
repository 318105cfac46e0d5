package assetrepo

import (
	"fmt"

	"github.com/sandrockwiki/census/pkg/censuserr"
)

// Bundle is an opened asset directory: its manifest plus a lazily-populated
// asset cache. Assets are constructed on first reference so opening a large
// bundle stays cheap.
type Bundle struct {
	Root     string
	manifest *Manifest
	assets   map[int64]*Asset
}

// OpenBundle reads the bundle's assets.xml and prepares lazy asset access.
// No asset data is read from disk until Asset.Data is called.
func OpenBundle(path string) (*Bundle, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Root:     path,
		manifest: m,
		assets:   make(map[int64]*Asset, len(m.byPathID)),
	}, nil
}

// Manifest exposes the bundle's read-only index.
func (b *Bundle) Manifest() *Manifest {
	return b.manifest
}

// Asset returns the (possibly already-instantiated) Asset view for a
// path-id, creating it on first reference. Returns ErrDanglingReference if
// the path-id is not present in the manifest.
func (b *Bundle) Asset(pathID int64) (*Asset, error) {
	if a, ok := b.assets[pathID]; ok {
		return a, nil
	}
	entry, err := b.manifest.Entry(pathID)
	if err != nil {
		return nil, err
	}
	a := &Asset{
		bundle: b,
		entry:  entry,
	}
	b.assets[pathID] = a
	return a, nil
}

// AssetsByType returns an Asset view for every manifest entry of the given
// type, in manifest order.
func (b *Bundle) AssetsByType(t AssetType) ([]*Asset, error) {
	entries := b.manifest.ByType(t)
	out := make([]*Asset, 0, len(entries))
	for _, e := range entries {
		a, err := b.Asset(e.PathID)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", b.Root, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// MonoScriptName is a thin passthrough to Manifest.ScriptName, kept on
// Bundle so callers need not reach into the manifest directly.
func (b *Bundle) MonoScriptName(pathID int64) string {
	return b.manifest.ScriptName(pathID)
}

// mustResolve is a package-internal helper: resolve a path-id against the
// owning bundle and wrap the error with the referring asset's own path-id
// for diagnosability, matching the "wrapped with the offending path" rule.
func (b *Bundle) mustResolve(fromPathID, toPathID int64) (*Asset, error) {
	a, err := b.Asset(toPathID)
	if err != nil {
		return nil, fmt.Errorf("asset %d references %d: %w", fromPathID, toPathID, censuserr.ErrDanglingReference)
	}
	return a, nil
}
