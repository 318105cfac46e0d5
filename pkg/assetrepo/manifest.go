// Package assetrepo provides uniform, lazily-loaded access to the exported
// asset bundles produced by the game build: manifest-indexed bundle
// directories, typed asset views, and Unity-style component-graph
// navigation.
//
// A Bundle is a directory containing an assets.xml index and per-type
// subdirectories holding one file per asset. OpenBundle reads the index once;
// Asset.Data lazily reads and memoizes the backing file on first use.
package assetrepo

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandrockwiki/census/pkg/censuserr"
)

// AssetType names the Unity-style type tag on an indexed asset, e.g.
// "MonoBehaviour", "GameObject", "Transform", "MonoScript", "TextAsset".
type AssetType string

const (
	TypeMonoScript    AssetType = "MonoScript"
	TypeMonoBehaviour AssetType = "MonoBehaviour"
	TypeGameObject    AssetType = "GameObject"
	TypeTransform     AssetType = "Transform"
	TypeTextAsset     AssetType = "TextAsset"
)

// xmlAssets mirrors the <Assets> root of assets.xml.
type xmlAssets struct {
	XMLName xml.Name   `xml:"Assets"`
	Assets  []xmlAsset `xml:"Asset"`
}

type xmlAsset struct {
	Container string  `xml:"Container"`
	Name      string  `xml:"Name"`
	PathID    int64   `xml:"PathID"`
	Type      xmlType `xml:"Type"`
	Source    string  `xml:"Source"`
}

type xmlType struct {
	ID string `xml:"id,attr"`
}

// Manifest indexes a single bundle's assets.xml by path-id and by type. It is
// the read-only index a Bundle is built from; Bundle adds lazy data loading
// and component-graph navigation on top.
type Manifest struct {
	Root     string
	byPathID map[int64]*ManifestEntry
	byType   map[AssetType][]*ManifestEntry
}

// ManifestEntry is one <Asset> entry from assets.xml, before its backing
// file has been read.
type ManifestEntry struct {
	Container string
	Name      string
	PathID    int64
	Type      AssetType
	Source    string
}

// ReadManifest parses the assets.xml at the root of a bundle directory.
// Path-ids are asserted unique per bundle (SchemaMismatch otherwise); names
// may collide and are never used as keys.
func ReadManifest(bundleRoot string) (*Manifest, error) {
	indexPath := filepath.Join(bundleRoot, "assets.xml")
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w: %v", indexPath, censuserr.ErrAssetNotFound, err)
	}

	var parsed xmlAssets
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w: %v", indexPath, censuserr.ErrParse, err)
	}

	m := &Manifest{
		Root:     bundleRoot,
		byPathID: make(map[int64]*ManifestEntry, len(parsed.Assets)),
		byType:   make(map[AssetType][]*ManifestEntry),
	}

	for _, a := range parsed.Assets {
		entry := &ManifestEntry{
			Container: a.Container,
			Name:      a.Name,
			PathID:    a.PathID,
			Type:      AssetType(a.Type.ID),
			Source:    a.Source,
		}
		if _, exists := m.byPathID[entry.PathID]; exists {
			return nil, fmt.Errorf("manifest %s: path-id %d appears more than once: %w",
				indexPath, entry.PathID, censuserr.ErrSchemaMismatch)
		}
		m.byPathID[entry.PathID] = entry
		m.byType[entry.Type] = append(m.byType[entry.Type], entry)
	}

	return m, nil
}

// Entry returns the manifest entry for a path-id, or ErrDanglingReference.
func (m *Manifest) Entry(pathID int64) (*ManifestEntry, error) {
	e, ok := m.byPathID[pathID]
	if !ok {
		return nil, fmt.Errorf("path-id %d: %w", pathID, censuserr.ErrDanglingReference)
	}
	return e, nil
}

// ByType returns all manifest entries of the given type, in assets.xml
// order.
func (m *Manifest) ByType(t AssetType) []*ManifestEntry {
	return m.byType[t]
}

// ScriptName returns the MonoScript-derived name for a path-id, used to
// classify MonoBehaviour assets by the script that backs them. Returns ""
// if the path-id is not a known MonoScript.
func (m *Manifest) ScriptName(pathID int64) string {
	e, ok := m.byPathID[pathID]
	if !ok || e.Type != TypeMonoScript {
		return ""
	}
	return e.Name
}
