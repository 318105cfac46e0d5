package census

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandrockwiki/census/pkg/itemsource"
	"github.com/sandrockwiki/census/pkg/registry"
	"github.com/sandrockwiki/census/pkg/text"
)

func writeTable(t *testing.T, dir, name string, configList any) {
	t.Helper()
	doc := map[string]any{"configList": configList}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func validConfigYAML() string {
	return `
version: "1.0.0"
assets_root: /tmp/assets
cache_root: /tmp/cache
output_dir: /tmp/out
languages: ["English", "French"]
language_codes: ["en", "fr"]
wiki_language: "English"
`
}

func TestLoadConfigFromBytesValid(t *testing.T) {
	cfg, err := LoadConfigFromBytes([]byte(validConfigYAML()))
	if err != nil {
		t.Fatalf("LoadConfigFromBytes() error = %v", err)
	}
	if cfg.Version != "1.0.0" {
		t.Fatalf("Version = %q", cfg.Version)
	}
	if len(cfg.Hash()) == 0 {
		t.Fatalf("expected a non-empty hash")
	}
}

func TestLoadConfigFromBytesRejectsMismatchedLanguageCodes(t *testing.T) {
	bad := `
version: "1.0.0"
assets_root: /tmp/assets
cache_root: /tmp/cache
output_dir: /tmp/out
languages: ["English", "French"]
language_codes: ["en"]
wiki_language: "English"
`
	if _, err := LoadConfigFromBytes([]byte(bad)); err == nil {
		t.Fatalf("expected an error for mismatched language_codes length")
	}
}

func TestLoadConfigFromBytesRejectsUnknownWikiLanguage(t *testing.T) {
	bad := `
version: "1.0.0"
assets_root: /tmp/assets
cache_root: /tmp/cache
output_dir: /tmp/out
languages: ["English"]
language_codes: ["en"]
wiki_language: "German"
`
	if _, err := LoadConfigFromBytes([]byte(bad)); err == nil {
		t.Fatalf("expected an error when wiki_language is absent from languages")
	}
}

func TestCategorizeSortsByItemIDAndSplitsSources(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "item", []map[string]any{
		{"id": 2, "name": "Bar"},
		{"id": 1, "name": "Axe"},
	})
	reg := registry.NewRegistry(dir, []string{"item"})
	itemTable, err := reg.Table("item")
	if err != nil {
		t.Fatalf("Table(item) error = %v", err)
	}
	items := registry.Items(itemTable)
	namer := text.NewWikiNamer(func(id int) (string, error) {
		name, _ := items.Name(id)
		return name, nil
	}, items, nil, nil)

	result := &itemsource.Result{
		Provenance: itemsource.Provenance{
			1: {itemsource.NewSource(itemsource.SourceStore, "1"): struct{}{}},
			2: {itemsource.NewSource(itemsource.SourceMonster, "9", "2"): struct{}{}},
		},
		Main: itemsource.Provenance{
			1: {itemsource.NewSource(itemsource.SourceStore, "1"): struct{}{}},
		},
		Secondary: itemsource.Provenance{
			2: {itemsource.NewSource(itemsource.SourceMonster, "9", "2"): struct{}{}},
		},
	}

	entries, err := Categorize(result, namer)
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ItemID != 1 || entries[1].ItemID != 2 {
		t.Fatalf("expected entries sorted by item id, got %v", entries)
	}
	if len(entries[0].MainSources) != 1 || len(entries[0].SecondarySources) != 0 {
		t.Fatalf("expected item 1 to have 1 main source and 0 secondary, got %+v", entries[0])
	}
	if len(entries[1].SecondarySources) != 1 {
		t.Fatalf("expected item 2 to have 1 secondary source, got %+v", entries[1])
	}
}
