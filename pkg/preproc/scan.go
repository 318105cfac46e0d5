package preproc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/sandrockwiki/census/pkg/assetrepo"
	"github.com/sandrockwiki/census/pkg/sceneinfo"
)

// Scanner walks an asset root's scene bundles once, producing the
// InterestPoint records downstream item-source extraction needs.
type Scanner struct {
	assetsRoot string
	scenes     *sceneinfo.Index
	logger     *logrus.Entry
}

// NewScanner prepares a scanner over a directory of per-scene bundle
// subdirectories, using scenes to resolve each bundle's directory name to
// its numeric scene id.
func NewScanner(assetsRoot string, scenes *sceneinfo.Index) *Scanner {
	return &Scanner{assetsRoot: assetsRoot, scenes: scenes}
}

// WithLogger attaches a logger used for per-scene progress and
// unresolvable-scene-name warnings.
func (s *Scanner) WithLogger(logger *logrus.Entry) *Scanner {
	s.logger = logger
	return s
}

func (s *Scanner) logDebug(format string, args ...any) {
	if s.logger != nil {
		s.logger.Debugf(format, args...)
	}
}

func (s *Scanner) logWarn(format string, args ...any) {
	if s.logger != nil {
		s.logger.Warnf(format, args...)
	}
}

// Scan walks every scene bundle directory under the asset root, opening
// each and matching its MonoBehaviour assets against the script
// whitelist. Scene directories whose name cannot be resolved to a scene id
// are skipped with a warning rather than treated as fatal, since not every
// asset-root subdirectory is a scene.
func (s *Scanner) Scan(ctx context.Context) ([]InterestPoint, error) {
	entries, err := os.ReadDir(s.assetsRoot)
	if err != nil {
		return nil, fmt.Errorf("reading asset root %s: %w", s.assetsRoot, err)
	}

	var points []InterestPoint
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !entry.IsDir() {
			continue
		}

		sceneID, ok := s.scenes.SceneID(entry.Name())
		if !ok {
			s.logWarn("preproc: scene directory %q has no known scene id, skipping", entry.Name())
			continue
		}

		bundlePath := filepath.Join(s.assetsRoot, entry.Name())
		scenePoints, err := s.scanBundle(ctx, bundlePath, sceneID)
		if err != nil {
			return nil, fmt.Errorf("scanning scene %q: %w", entry.Name(), err)
		}
		s.logDebug("preproc: scene %q yielded %d interest points", entry.Name(), len(scenePoints))
		points = append(points, scenePoints...)
	}

	return points, nil
}

func (s *Scanner) scanBundle(ctx context.Context, bundlePath string, sceneID int) ([]InterestPoint, error) {
	bundle, err := assetrepo.OpenBundle(bundlePath)
	if err != nil {
		return nil, err
	}

	behaviors, err := bundle.AssetsByType(assetrepo.TypeMonoBehaviour)
	if err != nil {
		return nil, err
	}

	var points []InterestPoint
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
		scriptName := bundle.MonoScriptName(scriptPathID)

		kind, ok := scriptWhitelist[scriptName]
		if !ok {
			continue
		}
		if kind == KindResourceArea && !hasCatchablePrefabBranch(data) {
			continue
		}

		objectID, _ := data["objectId"].(float64)

		points = append(points, InterestPoint{
			SceneID:       sceneID,
			ObjectID:      int(objectID),
			Kind:          kind,
			BehaviorPath:  fmt.Sprintf("%s#%d", bundlePath, asset.PathID()),
			TransformPath: fmt.Sprintf("%s#transform", bundlePath),
			AreaPath:      bundle.Manifest().Root,
		})
	}

	return points, nil
}

// hasCatchablePrefabBranch reports whether a ResourceAreaObj record names a
// catchable-creature prefab branch, the condition §4.8 requires before a
// resource area counts as an interest point.
func hasCatchablePrefabBranch(data map[string]any) bool {
	branches, _ := data["prefabBranches"].([]any)
	for _, b := range branches {
		m, ok := b.(map[string]any)
		if !ok {
			continue
		}
		if catchable, _ := m["isCatchable"].(bool); catchable {
			return true
		}
	}
	return false
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
