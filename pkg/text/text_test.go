package text

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sandrockwiki/census/pkg/registry"
)

func TestTableTextSubstitutesAfterLookup(t *testing.T) {
	tbl := NewTable(" / ", map[string]string{"<PLAYERNAME>": "Logan"})
	tbl.Set(1, "en", "Hello, <PLAYERNAME>!")
	tbl.Set(1, "zh", "你好 <PLAYERNAME>")

	got, err := tbl.Text(1, "en")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "Hello, Logan!" {
		t.Errorf("Text(1, en) = %q, want %q", got, "Hello, Logan!")
	}
}

func TestTableTextConcatLanguage(t *testing.T) {
	tbl := NewTable(" / ", nil)
	tbl.Set(5, "en", "Wood")
	tbl.Set(5, "zh", "木头")

	got, err := tbl.Text(5, ConcatLanguage)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	want := "Wood / 木头"
	if got != want {
		t.Errorf("Text(5, *) = %q, want %q", got, want)
	}
}

func TestTableTextMissingLanguage(t *testing.T) {
	tbl := NewTable(" / ", nil)
	tbl.Set(1, "en", "Wood")
	if _, err := tbl.Text(1, "fr"); err == nil {
		t.Fatal("expected an error for a missing language variant")
	}
}

func newItemsForNaming(t *testing.T) registry.ItemTable {
	t.Helper()
	dir := t.TempDir()
	const content = `{"configList": [
		{"id": 1, "icon": "icon_ring"},
		{"id": 2, "icon": "icon_ring_01"},
		{"id": 3, "icon": "icon_ring_02"},
		{"id": 4, "tags": ["style"]}
	]}`
	if err := os.WriteFile(filepath.Join(dir, "item.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing item table: %v", err)
	}

	reg := registry.NewRegistry(dir, []string{"item"})
	table, err := reg.Table("item")
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	return registry.Items(table)
}

func TestWikiItemNameSingletonsPassThrough(t *testing.T) {
	displayName := func(id int) (string, error) {
		if id == 4 {
			return "Unique Hat", nil
		}
		return "Ring", nil
	}
	items := newItemsForNaming(t)
	namer := NewWikiNamer(displayName, items, nil, nil)

	got, err := namer.WikiItemName(4)
	if err != nil {
		t.Fatalf("WikiItemName: %v", err)
	}
	if got != "Unique Hat" {
		t.Errorf("WikiItemName(4) = %q, want Unique Hat", got)
	}
}

func TestWikiItemNameIconVersionDisambiguation(t *testing.T) {
	displayName := func(id int) (string, error) {
		if id == 4 {
			return "Unique Hat", nil
		}
		return "Ring", nil
	}
	items := newItemsForNaming(t)
	namer := NewWikiNamer(displayName, items, nil, nil)

	first, err := namer.WikiItemName(1)
	if err != nil {
		t.Fatalf("WikiItemName(1): %v", err)
	}
	second, err := namer.WikiItemName(2)
	if err != nil {
		t.Fatalf("WikiItemName(2): %v", err)
	}
	if first == second {
		t.Errorf("expected distinct names for colliding Ring items, got %q and %q", first, second)
	}
}
