// Package sceneinfo builds the bijective map between a scene's system name
// and its numeric scene id, scanning the SceneInfoObj behaviors exported
// from every scene bundle.
package sceneinfo

import (
	"context"
	"fmt"

	"github.com/sandrockwiki/census/pkg/assetrepo"
	"github.com/sandrockwiki/census/pkg/censuserr"
)

// Index is the bijective systemName <-> sceneID map.
type Index struct {
	byName map[string]int
	byID   map[int]string
}

// NewIndex returns an empty index, ready for AddScene calls.
func NewIndex() *Index {
	return &Index{
		byName: make(map[string]int),
		byID:   make(map[int]string),
	}
}

// AddScene records a system-name/scene-id pair. A second AddScene for a
// name or id that already maps to a different counterpart returns
// ErrSceneAmbiguous; re-adding the same pair is a no-op.
func (idx *Index) AddScene(systemName string, sceneID int) error {
	if existingID, ok := idx.byName[systemName]; ok {
		if existingID != sceneID {
			return fmt.Errorf("scene name %q already maps to id %d, cannot also map to %d: %w",
				systemName, existingID, sceneID, censuserr.ErrSceneAmbiguous)
		}
		return nil
	}
	if existingName, ok := idx.byID[sceneID]; ok {
		if existingName != systemName {
			return fmt.Errorf("scene id %d already maps to name %q, cannot also map to %q: %w",
				sceneID, existingName, systemName, censuserr.ErrSceneAmbiguous)
		}
		return nil
	}
	idx.byName[systemName] = sceneID
	idx.byID[sceneID] = systemName
	return nil
}

// SceneID looks up a scene's id by its system name.
func (idx *Index) SceneID(systemName string) (int, bool) {
	id, ok := idx.byName[systemName]
	return id, ok
}

// SystemName looks up a scene's system name by its id.
func (idx *Index) SystemName(sceneID int) (string, bool) {
	name, ok := idx.byID[sceneID]
	return name, ok
}

// Len returns the number of distinct scenes indexed.
func (idx *Index) Len() int {
	return len(idx.byName)
}

// sceneInfoObjScript is the MonoScript name BuildIndex whitelists when
// scanning MonoBehaviour assets for scene-info data.
const sceneInfoObjScript = "SceneInfoObj"

// emptyScenesFallback assigns a fixed id to the small handful of scenes
// that never populate any of SceneInfoObj's area/drama/entrance/point
// lists and so cannot be assigned an id by uniqueAcrossLists.
var emptyScenesFallback = map[string]int{
	"MainMenu": 0,
}

// manualOverrides is applied after the scan, overriding whatever
// uniqueAcrossLists or emptyScenesFallback produced. It is a fixed table in
// this file; nothing loads overrides from a side-file.
var manualOverrides = map[string]int{
	"VoxelDungeon2": 60,
}

// BuildIndex scans every MonoBehaviour asset backed by the SceneInfoObj
// script across the bundle, determines each scene's canonical id via
// uniqueAcrossLists, applies emptyScenesFallback and manualOverrides, and
// asserts the result is a bijection.
func BuildIndex(ctx context.Context, bundle *assetrepo.Bundle) (*Index, error) {
	idx := NewIndex()

	behaviors, err := bundle.AssetsByType(assetrepo.TypeMonoBehaviour)
	if err != nil {
		return nil, err
	}

	for _, asset := range behaviors {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data, err := asset.Data(ctx)
		if err != nil {
			return nil, err
		}

		scriptRef, _ := data["m_Script"].(map[string]any)
		scriptPathID, _ := pathIDFromScriptRef(scriptRef)
		if bundle.MonoScriptName(scriptPathID) != sceneInfoObjScript {
			continue
		}

		systemName, _ := data["m_Name"].(string)
		if systemName == "" {
			systemName = asset.Name()
		}

		sceneID, ok := uniqueAcrossLists(data)
		if !ok {
			if fallback, hasFallback := emptyScenesFallback[systemName]; hasFallback {
				sceneID = fallback
			} else {
				continue
			}
		}

		if err := idx.AddScene(systemName, sceneID); err != nil {
			return nil, err
		}
	}

	for name, id := range manualOverrides {
		if err := idx.overrideScene(name, id); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// overrideScene forcibly remaps name/id, removing any prior mapping either
// side held, then re-asserting the bijection via AddScene.
func (idx *Index) overrideScene(systemName string, sceneID int) error {
	if oldID, ok := idx.byName[systemName]; ok {
		delete(idx.byID, oldID)
	}
	if oldName, ok := idx.byID[sceneID]; ok {
		delete(idx.byName, oldName)
	}
	delete(idx.byName, systemName)
	delete(idx.byID, sceneID)
	return idx.AddScene(systemName, sceneID)
}

// pathIDFromScriptRef reads the {"m_PathID": N} reference shape used by
// m_Script fields to point at a MonoScript asset.
func pathIDFromScriptRef(ref map[string]any) (int64, bool) {
	if ref == nil {
		return 0, false
	}
	f, ok := ref["m_PathID"].(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// uniqueAcrossLists scans a SceneInfoObj's area/drama/entrance/point id
// lists for a single id value shared across all non-empty lists, which is
// the scene's canonical id. Returns ok=false if no such unique value
// exists (for example, the scene has no populated lists at all).
func uniqueAcrossLists(data map[string]any) (int, bool) {
	candidates := make(map[int]int) // id -> number of lists containing it
	nonEmpty := 0

	for _, key := range []string{"areaSceneIds", "dramaSceneIds", "entranceSceneIds", "pointSceneIds"} {
		raw, _ := data[key].([]any)
		seen := make(map[int]bool)
		for _, v := range raw {
			f, ok := v.(float64)
			if !ok {
				continue
			}
			id := int(f)
			if seen[id] {
				continue
			}
			seen[id] = true
			candidates[id]++
		}
		if len(seen) > 0 {
			nonEmpty++
		}
	}

	if len(candidates) == 0 {
		return 0, false
	}

	// Exactly one id may appear in every non-empty list; none, or more
	// than one, leaves the scene unresolved.
	bestID, found := 0, false
	for id, count := range candidates {
		if count != nonEmpty {
			continue
		}
		if found {
			return 0, false
		}
		bestID, found = id, true
	}
	return bestID, found
}
