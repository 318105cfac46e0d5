package registry

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sandrockwiki/census/pkg/censuserr"
)

// Table is a single designer-config table loaded from a configList JSON
// file. A table is Keyed when every record carries an integer "id" field
// (the common case: items, recipes, monsters, ...); otherwise it is a
// plain List, iterated in original JSON array order.
type Table struct {
	Name string

	Keyed    map[int]Record
	keyOrder []int

	List []Record
}

type configListFile struct {
	ConfigList []Record `json:"configList"`
}

// parseTable decodes a {"configList": [...]} document and classifies it as
// Keyed or List based on whether every record has a numeric "id" field.
func parseTable(name string, data []byte) (*Table, error) {
	var doc configListFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("table %s: %w: %v", name, censuserr.ErrParse, err)
	}

	t := &Table{Name: name}

	allKeyed := len(doc.ConfigList) > 0
	for _, rec := range doc.ConfigList {
		if _, ok := rec.Int("id"); !ok {
			allKeyed = false
			break
		}
	}

	if allKeyed {
		t.Keyed = make(map[int]Record, len(doc.ConfigList))
		t.keyOrder = make([]int, 0, len(doc.ConfigList))
		for _, rec := range doc.ConfigList {
			id, _ := rec.Int("id")
			if _, exists := t.Keyed[id]; exists {
				return nil, fmt.Errorf("table %s: duplicate id %d: %w", name, id, censuserr.ErrSchemaMismatch)
			}
			t.Keyed[id] = rec
			t.keyOrder = append(t.keyOrder, id)
		}
		sort.Ints(t.keyOrder)
		return t, nil
	}

	t.List = doc.ConfigList
	return t, nil
}

// Get returns the record for a keyed table id. On a List table it always
// returns nil, false.
func (t *Table) Get(id int) (Record, bool) {
	r, ok := t.Keyed[id]
	return r, ok
}

// MustGet returns the record for a keyed table id, panicking if absent.
// Reserved for narrow table-specific wrappers that have already proven the
// id exists (e.g. resolving a reference found elsewhere in the same load).
func (t *Table) MustGet(id int) Record {
	r, ok := t.Get(id)
	if !ok {
		panic(fmt.Sprintf("registry: table %s has no record %d", t.Name, id))
	}
	return r
}

// IDs returns the keyed table's ids in ascending order.
func (t *Table) IDs() []int {
	return t.keyOrder
}

// Each calls fn for every record in the table, in ascending id order for a
// Keyed table or original array order for a List table.
func (t *Table) Each(fn func(id int, rec Record)) {
	if t.Keyed != nil {
		for _, id := range t.keyOrder {
			fn(id, t.Keyed[id])
		}
		return
	}
	for i, rec := range t.List {
		fn(i, rec)
	}
}

// Len returns the number of records in the table regardless of shape.
func (t *Table) Len() int {
	if t.Keyed != nil {
		return len(t.keyOrder)
	}
	return len(t.List)
}
