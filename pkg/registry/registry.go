// Package registry loads the game's designer-config tables (JSON
// configList files) into generic Record maps and offers narrow,
// table-specific accessor wrappers on top.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sandrockwiki/census/pkg/censuserr"
)

// Registry memoizes each designer-config table on first access. Tables are
// named after the JSON file stem (e.g. "item" loads "<root>/item.json").
type Registry struct {
	root string

	mu    sync.Mutex
	slots map[string]*tableSlot
	names []string
}

type tableSlot struct {
	once  sync.Once
	table *Table
	err   error
}

// NewRegistry prepares a registry over the designer-config directory at
// root. No table is read from disk until Table is called.
func NewRegistry(root string, knownTableNames []string) *Registry {
	slots := make(map[string]*tableSlot, len(knownTableNames))
	for _, n := range knownTableNames {
		slots[n] = &tableSlot{}
	}
	return &Registry{root: root, slots: slots, names: knownTableNames}
}

// Table returns the named table, loading and memoizing it on first call.
// Returns ErrUnknownTable if the name was not registered at construction.
func (r *Registry) Table(name string) (*Table, error) {
	r.mu.Lock()
	slot, ok := r.slots[name]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, censuserr.ErrUnknownTable)
	}

	slot.once.Do(func() {
		path := filepath.Join(r.root, name+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			slot.err = fmt.Errorf("reading table %s at %s: %w: %v", name, path, censuserr.ErrAssetNotFound, err)
			return
		}
		slot.table, slot.err = parseTable(name, data)
	})

	return slot.table, slot.err
}

// Names returns the set of table names this registry knows about.
func (r *Registry) Names() []string {
	return r.names
}
