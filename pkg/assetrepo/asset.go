package assetrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sandrockwiki/census/pkg/censuserr"
)

// Asset is a single manifest entry plus its lazily-loaded backing data.
// Data is read at most once per Asset; subsequent calls return the
// memoized value even on error, matching the "repeated calls return the
// cached value" rule.
type Asset struct {
	bundle *Bundle
	entry  *ManifestEntry

	dataOnce sync.Once
	data     map[string]any
	dataErr  error
}

// PathID returns the asset's manifest path-id.
func (a *Asset) PathID() int64 { return a.entry.PathID }

// Type returns the asset's manifest type tag.
func (a *Asset) Type() AssetType { return a.entry.Type }

// Name returns the asset's manifest name, which may be empty or collide
// with other assets; it is never used as a lookup key.
func (a *Asset) Name() string { return a.entry.Name }

// backingPath is the per-type, per-path-id file the asset's data is
// dumped to: <bundleRoot>/<Type>/<PathID>.json, or the manifest Source
// override when present.
func (a *Asset) backingPath() string {
	if a.entry.Source != "" {
		return filepath.Join(a.bundle.Root, a.entry.Source)
	}
	return filepath.Join(a.bundle.Root, string(a.entry.Type), fmt.Sprintf("%d.json", a.entry.PathID))
}

// Data lazily reads and memoizes the asset's backing file as a generic
// JSON object. The context is honored only for cancellation before the
// read starts; the read itself is not interruptible.
func (a *Asset) Data(ctx context.Context) (map[string]any, error) {
	a.dataOnce.Do(func() {
		if err := ctx.Err(); err != nil {
			a.dataErr = err
			return
		}
		path := a.backingPath()
		raw, err := os.ReadFile(path)
		if err != nil {
			a.dataErr = fmt.Errorf("reading asset %d at %s: %w: %v", a.entry.PathID, path, censuserr.ErrAssetNotFound, err)
			return
		}
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			a.dataErr = fmt.Errorf("parsing asset %d at %s: %w: %v", a.entry.PathID, path, censuserr.ErrParse, err)
			return
		}
		a.data = decoded
	})
	return a.data, a.dataErr
}

// GameObject is the Unity-style container asset: a name plus an ordered
// list of component path-ids.
type GameObject struct {
	Name             string
	ComponentPathIDs []int64
}

// GameObject parses the asset's data as a GameObject. Returns
// ErrSchemaMismatch if the asset is not of type GameObject or the
// component list is malformed.
func (a *Asset) GameObject(ctx context.Context) (*GameObject, error) {
	if a.entry.Type != TypeGameObject {
		return nil, fmt.Errorf("asset %d is type %s, not GameObject: %w", a.entry.PathID, a.entry.Type, censuserr.ErrSchemaMismatch)
	}
	data, err := a.Data(ctx)
	if err != nil {
		return nil, err
	}
	rawComponents, _ := data["m_Component"].([]any)
	ids := make([]int64, 0, len(rawComponents))
	for _, rc := range rawComponents {
		entry, ok := rc.(map[string]any)
		if !ok {
			continue
		}
		ref, ok := entry["component"].(map[string]any)
		if !ok {
			continue
		}
		id, err := pathIDOf(ref)
		if err != nil {
			return nil, fmt.Errorf("gameobject %d component entry: %w", a.entry.PathID, err)
		}
		ids = append(ids, id)
	}
	name, _ := data["m_Name"].(string)
	return &GameObject{Name: name, ComponentPathIDs: ids}, nil
}

// Components resolves a GameObject asset's component path-ids to their
// owning Asset views.
func (a *Asset) Components(ctx context.Context) ([]*Asset, error) {
	obj, err := a.GameObject(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Asset, 0, len(obj.ComponentPathIDs))
	for _, id := range obj.ComponentPathIDs {
		comp, err := a.bundle.mustResolve(a.entry.PathID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, comp)
	}
	return out, nil
}

// Transform is the Unity-style spatial component: local position,
// rotation, scale, and child path-ids.
type Transform struct {
	LocalPosition [3]float64
	LocalRotation [4]float64
	LocalScale    [3]float64
	ChildPathIDs  []int64
}

// Transform locates this GameObject's Transform component and decodes it.
// Returns ErrDanglingReference if no Transform component is present.
func (a *Asset) Transform(ctx context.Context) (*Transform, error) {
	components, err := a.Components(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range components {
		if c.Type() != TypeTransform {
			continue
		}
		data, err := c.Data(ctx)
		if err != nil {
			return nil, err
		}
		return decodeTransform(c.entry.PathID, data)
	}
	return nil, fmt.Errorf("gameobject %d has no Transform component: %w", a.entry.PathID, censuserr.ErrDanglingReference)
}

func decodeTransform(pathID int64, data map[string]any) (*Transform, error) {
	pos, err := vec3Of(data["m_LocalPosition"])
	if err != nil {
		return nil, fmt.Errorf("transform %d position: %w", pathID, err)
	}
	scale, err := vec3Of(data["m_LocalScale"])
	if err != nil {
		return nil, fmt.Errorf("transform %d scale: %w", pathID, err)
	}
	rot, err := vec4Of(data["m_LocalRotation"])
	if err != nil {
		return nil, fmt.Errorf("transform %d rotation: %w", pathID, err)
	}

	rawChildren, _ := data["m_Children"].([]any)
	children := make([]int64, 0, len(rawChildren))
	for _, rc := range rawChildren {
		ref, ok := rc.(map[string]any)
		if !ok {
			continue
		}
		id, err := pathIDOf(ref)
		if err != nil {
			return nil, fmt.Errorf("transform %d child entry: %w", pathID, err)
		}
		children = append(children, id)
	}

	return &Transform{
		LocalPosition: pos,
		LocalRotation: rot,
		LocalScale:    scale,
		ChildPathIDs:  children,
	}, nil
}

// pathIDOf reads the {"m_PathID": N} shape used throughout the dump format
// for cross-asset references.
func pathIDOf(ref map[string]any) (int64, error) {
	raw, ok := ref["m_PathID"]
	if !ok {
		return 0, fmt.Errorf("missing m_PathID: %w", censuserr.ErrSchemaMismatch)
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case string:
		var id int64
		if _, err := fmt.Sscanf(v, "%d", &id); err != nil {
			return 0, fmt.Errorf("m_PathID %q: %w", v, censuserr.ErrSchemaMismatch)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("m_PathID has unexpected type %T: %w", raw, censuserr.ErrSchemaMismatch)
	}
}

func vec3Of(raw any) ([3]float64, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return [3]float64{}, fmt.Errorf("not a vector object: %w", censuserr.ErrSchemaMismatch)
	}
	x, _ := m["x"].(float64)
	y, _ := m["y"].(float64)
	z, _ := m["z"].(float64)
	return [3]float64{x, y, z}, nil
}

func vec4Of(raw any) ([4]float64, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return [4]float64{}, fmt.Errorf("not a quaternion object: %w", censuserr.ErrSchemaMismatch)
	}
	x, _ := m["x"].(float64)
	y, _ := m["y"].(float64)
	z, _ := m["z"].(float64)
	w, _ := m["w"].(float64)
	return [4]float64{x, y, z, w}, nil
}
