package itemsource

import (
	"errors"
	"strings"

	"github.com/sandrockwiki/census/pkg/censuserr"
	"github.com/sandrockwiki/census/pkg/registry"
)

// NominalSourceTable maps an item id to the designer's own "nominal"
// source category label (e.g. "fishing spots", "gather"), read from the
// item table's own sourceCategory field. It is the ground truth
// SplitMainSecondary cross-references against what extraction actually
// found.
type NominalSourceTable map[int]string

// nominalAliases maps a nominal category label to the SourceKinds that
// satisfy it, since the designer's own vocabulary doesn't always match
// this package's SourceKind names one-for-one.
var nominalAliases = map[string][]SourceKind{
	"fishing spots": {SourceFishing},
	"gather":        {SourceResourceArea, SourceTerrainTree},
	"crafting":      {SourceCrafting},
	"store":         {SourceStore},
	"monster drop":  {SourceMonster},
	"farming":       {SourceFarming},
	"mission":       {SourceMission},
	"gift":          {SourceGift, SourceSpouseGift},
	"container":     {SourceContainer},
}

// loadNominalSourceTable reads the item table's sourceCategory field into a
// NominalSourceTable. Items with no sourceCategory field are simply absent
// from the returned map, so SplitMainSecondary puts all their sources in main.
func loadNominalSourceTable(reg *registry.Registry) (NominalSourceTable, error) {
	table, err := reg.Table("item")
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return NominalSourceTable{}, nil
	}
	if err != nil {
		return nil, err
	}

	nominal := make(NominalSourceTable)
	table.Each(func(id int, rec registry.Record) {
		if cat, ok := rec.String("sourceCategory"); ok {
			nominal[id] = strings.ToLower(strings.TrimSpace(cat))
		}
	})
	return nominal, nil
}

// SplitMainSecondary partitions provenance into the main source (the one
// matching the item's nominal category, or any source at all when no
// nominal category is recorded) and the secondary sources (everything
// else). Stores are always main, regardless of nominal category, since a
// purchasable item is never presented as merely a fallback acquisition
// path.
func SplitMainSecondary(nominal NominalSourceTable, provenance Provenance) (main, secondary Provenance) {
	main = make(Provenance)
	secondary = make(Provenance)

	for itemID, sources := range provenance {
		category, hasCategory := nominal[itemID]
		allowed := nominalAliases[category]

		for src := range sources {
			if src.Kind == SourceStore {
				main.Add(itemID, src)
				continue
			}
			if !hasCategory || kindAllowed(src.Kind, allowed) {
				main.Add(itemID, src)
				continue
			}
			secondary.Add(itemID, src)
		}
	}

	return main, secondary
}

func kindAllowed(kind SourceKind, allowed []SourceKind) bool {
	for _, k := range allowed {
		if k == kind {
			return true
		}
	}
	return false
}

// tokenAllSpouses is the aggregate token aggregateSpouseGifts collapses
// identical spouse gifts into. It is the only aggregate token this package
// produces: no gendered (all-female / all-male spouses) token exists.
const (
	tokenAllSpouses = "all-spouses"
)

// aggregateSpouseGifts collapses an item's SourceSpouseGift entries into the
// single all-spouses token, rather than leaving near-duplicate per-NPC tuples
// in Provenance. An item is collapsed as soon as two or more spouse-gift
// sources name it; whether those sources cover every marriageable NPC is not
// checked. A single spouse-gift source is left as-is.
func (r *Resolver) aggregateSpouseGifts(prov Provenance) {
	for itemID, sources := range prov {
		var spouseGiftSrcs []Source
		for src := range sources {
			if src.Kind == SourceSpouseGift {
				spouseGiftSrcs = append(spouseGiftSrcs, src)
			}
		}
		if len(spouseGiftSrcs) < 2 {
			continue
		}

		for _, src := range spouseGiftSrcs {
			delete(sources, src)
		}
		sources[NewSource(SourceSpouseGift, tokenAllSpouses)] = struct{}{}
	}
}
