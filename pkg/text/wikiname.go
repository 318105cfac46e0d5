package text

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sandrockwiki/census/pkg/censuserr"
	"github.com/sandrockwiki/census/pkg/registry"
)

// iconVersionSuffix matches a trailing "_<digits>" on an icon path, e.g.
// "icon_ring_02" -> "02".
var iconVersionSuffix = regexp.MustCompile(`_(\d+)$`)

// WikiNamer computes the disambiguated wiki display name for every item,
// following the five-step algorithm: group by display name, then for
// multi-member groups try a manual override, a tag-based suffix, an
// icon-path version suffix, an explicit priori override, and finally a
// lowest-id fallback with a logged warning.
type WikiNamer struct {
	displayName func(itemID int) (string, error)
	items       registry.ItemTable

	// manualVariants is the YAML side-file of explicit per-item name
	// overrides, step (a).
	manualVariants map[int]string

	// prioriOverrides is the YAML side-file of last-resort explicit names,
	// step (d).
	prioriOverrides map[int]string

	logger *logrus.Entry

	once     sync.Once
	names    map[int]string
	warns    []string
	buildErr error
}

// NewWikiNamer builds a namer over the given display-name resolver (the
// per-id, wiki-language lookup from a Table) and item registry. Name
// resolution itself is deferred until first use.
func NewWikiNamer(displayName func(itemID int) (string, error), items registry.ItemTable, manualVariants, prioriOverrides map[int]string) *WikiNamer {
	return &WikiNamer{
		displayName:     displayName,
		items:           items,
		manualVariants:  manualVariants,
		prioriOverrides: prioriOverrides,
	}
}

// WithLogger attaches a logger used to record lowest-id-fallback warnings.
func (w *WikiNamer) WithLogger(logger *logrus.Entry) *WikiNamer {
	w.logger = logger
	return w
}

// WikiItemName returns the disambiguated wiki name for an item id. The
// full table is computed once, on first call, and reused thereafter
// (idempotent).
func (w *WikiNamer) WikiItemName(itemID int) (string, error) {
	w.once.Do(w.build)
	if w.buildErr != nil {
		return "", w.buildErr
	}
	name, ok := w.names[itemID]
	if !ok {
		return "", fmt.Errorf("item %d: %w", itemID, censuserr.ErrAssetNotFound)
	}
	return name, nil
}

// Warnings returns the lowest-id-fallback warnings recorded during build.
func (w *WikiNamer) Warnings() []string {
	w.once.Do(w.build)
	return w.warns
}

func (w *WikiNamer) build() {
	groups := make(map[string][]int)
	var ids []int
	w.items.Each(func(id int, _ registry.Record) {
		ids = append(ids, id)
	})
	sort.Ints(ids)

	display := make(map[int]string, len(ids))
	for _, id := range ids {
		name, err := w.displayName(id)
		if err != nil {
			w.buildErr = fmt.Errorf("wiki name for item %d: %w", id, err)
			return
		}
		display[id] = name
		groups[name] = append(groups[name], id)
	}

	w.names = make(map[int]string, len(ids))

	for name, members := range groups {
		if len(members) == 1 {
			w.names[members[0]] = name
			continue
		}
		w.disambiguateGroup(name, members)
	}
}

// disambiguateGroup resolves one display-name collision group in place,
// writing into w.names, trying steps (a) through (e) in order for each
// member still unresolved after the prior step.
func (w *WikiNamer) disambiguateGroup(baseName string, members []int) {
	sort.Ints(members)
	remaining := make([]int, 0, len(members))

	// (a) manual variant-name table.
	for _, id := range members {
		if override, ok := w.manualVariants[id]; ok {
			w.names[id] = override
			continue
		}
		remaining = append(remaining, id)
	}
	if len(remaining) <= 1 {
		w.assignRemaining(baseName, remaining)
		return
	}

	// (b) tag-based suffix (style/book/NPC clothing tags).
	stillAmbiguous := remaining[:0:0]
	seenSuffix := make(map[string]bool)
	for _, id := range remaining {
		tags := w.items.Tags(id)
		suffix, ok := tagSuffix(tags)
		if ok && !seenSuffix[suffix] {
			w.names[id] = fmt.Sprintf("%s (%s)", baseName, suffix)
			seenSuffix[suffix] = true
			continue
		}
		stillAmbiguous = append(stillAmbiguous, id)
	}
	remaining = stillAmbiguous
	if len(remaining) <= 1 {
		w.assignRemaining(baseName, remaining)
		return
	}

	// (c) icon-path version suffix, lowest N wins the unsuffixed name.
	type versioned struct {
		id  int
		ver int
		has bool
	}
	versionedIDs := make([]versioned, 0, len(remaining))
	for _, id := range remaining {
		icon, _ := w.items.IconPath(id)
		match := iconVersionSuffix.FindStringSubmatch(icon)
		if match == nil {
			versionedIDs = append(versionedIDs, versioned{id: id, has: false})
			continue
		}
		n, _ := strconv.Atoi(match[1])
		versionedIDs = append(versionedIDs, versioned{id: id, ver: n, has: true})
	}
	anyVersioned := false
	for _, v := range versionedIDs {
		if v.has {
			anyVersioned = true
			break
		}
	}
	if anyVersioned {
		sort.Slice(versionedIDs, func(i, j int) bool { return versionedIDs[i].ver < versionedIDs[j].ver })
		remaining = remaining[:0]
		for i, v := range versionedIDs {
			if !v.has {
				remaining = append(remaining, v.id)
				continue
			}
			if i == 0 {
				w.names[v.id] = baseName
			} else {
				w.names[v.id] = fmt.Sprintf("%s (%d)", baseName, v.ver)
			}
		}
		if len(remaining) <= 1 {
			w.assignRemaining(baseName, remaining)
			return
		}
	}

	// (d) explicit priori override table.
	stillAmbiguous = remaining[:0:0]
	for _, id := range remaining {
		if override, ok := w.prioriOverrides[id]; ok {
			w.names[id] = override
			continue
		}
		stillAmbiguous = append(stillAmbiguous, id)
	}
	remaining = stillAmbiguous

	// (e) lowest item id wins the base name, the rest fall back with a
	// logged warning.
	w.assignRemaining(baseName, remaining)
}

func (w *WikiNamer) assignRemaining(baseName string, remaining []int) {
	if len(remaining) == 0 {
		return
	}
	sort.Ints(remaining)
	w.names[remaining[0]] = baseName
	for _, id := range remaining[1:] {
		w.names[id] = fmt.Sprintf("%s (%d)", baseName, id)
		msg := fmt.Sprintf("item %d: unresolved name collision on %q, falling back to id-suffixed name", id, baseName)
		w.warns = append(w.warns, msg)
		if w.logger != nil {
			w.logger.Warn(msg)
		}
	}
}

// tagSuffix picks the first recognized disambiguating tag from a style/
// book/NPC-clothing tag set, in a fixed priority order.
func tagSuffix(tags map[string]struct{}) (string, bool) {
	for _, candidate := range []string{"style", "book", "npc clothing"} {
		if _, ok := tags[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}
