package preproc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandrockwiki/census/pkg/sceneinfo"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanFindsWhitelistedBehaviors(t *testing.T) {
	root := t.TempDir()
	scenePath := filepath.Join(root, "Mine01")

	mustWriteFile(t, filepath.Join(scenePath, "assets.xml"), `<Assets>
		<Asset><Name>MonsterSpawnPoint</Name><PathID>1</PathID><Type id="MonoScript"></Type></Asset>
		<Asset><Name>Spawn1</Name><PathID>10</PathID><Type id="MonoBehaviour"></Type></Asset>
		<Asset><Name>Irrelevant</Name><PathID>11</PathID><Type id="MonoBehaviour"></Type></Asset>
	</Assets>`)
	mustWriteFile(t, filepath.Join(scenePath, "MonoBehaviour", "10.json"), `{
		"m_Script": {"m_PathID": 1},
		"objectId": 5
	}`)
	mustWriteFile(t, filepath.Join(scenePath, "MonoBehaviour", "11.json"), `{
		"m_Script": {"m_PathID": 99}
	}`)

	scenes := sceneinfo.NewIndex()
	if err := scenes.AddScene("Mine01", 7); err != nil {
		t.Fatalf("AddScene: %v", err)
	}

	scanner := NewScanner(root, scenes)
	points, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(points) != 1 {
		t.Fatalf("expected 1 interest point, got %d: %+v", len(points), points)
	}
	if points[0].SceneID != 7 || points[0].ObjectID != 5 {
		t.Errorf("unexpected interest point: %+v", points[0])
	}
}

func TestCacheRoundTripsAndAtomicallyWrites(t *testing.T) {
	cache := NewCache(t.TempDir())
	points := []InterestPoint{{SceneID: 1, ObjectID: 2, Kind: KindTreasureChest}}

	if err := cache.Put("/assets", "v1", points); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := cache.Get("/assets", "v1")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if len(got) != 1 || got[0].Kind != KindTreasureChest {
		t.Errorf("cached points = %+v", got)
	}

	if _, ok := cache.Get("/assets", "v2"); ok {
		t.Error("expected a cache miss for a different version tag")
	}
}

func TestCachePurgeRemovesEntries(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir)
	if err := cache.Put("/assets", "v1", []InterestPoint{{SceneID: 1}}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := cache.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	if _, ok := cache.Get("/assets", "v1"); ok {
		t.Error("expected cache to be empty after Purge")
	}
}
