package census

import (
	"sort"

	"github.com/sandrockwiki/census/pkg/itemsource"
	"github.com/sandrockwiki/census/pkg/text"
)

// SourceView is a Source rendered for serialization: its kind and ordered
// parameters as plain strings, with no dependency on itemsource's internal
// comparable-struct representation.
type SourceView struct {
	Kind   string   `json:"kind" yaml:"kind"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// ItemEntry is one row of the formatted output: an item's wiki name plus
// its main and secondary sources, ready for the Lua/YAML serializers.
type ItemEntry struct {
	ItemID           int          `json:"itemId" yaml:"itemId"`
	Name             string       `json:"name" yaml:"name"`
	MainSources      []SourceView `json:"mainSources" yaml:"mainSources"`
	SecondarySources []SourceView `json:"secondarySources,omitempty" yaml:"secondarySources,omitempty"`
}

// Categorize is a pure function over a resolved Result: it renders every
// item with at least one recorded source into an ItemEntry, sorted by item
// id, naming each with its disambiguated wiki name.
func Categorize(result *itemsource.Result, namer *text.WikiNamer) ([]ItemEntry, error) {
	ids := make([]int, 0, len(result.Provenance))
	for id := range result.Provenance {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	entries := make([]ItemEntry, 0, len(ids))
	for _, id := range ids {
		name, err := namer.WikiItemName(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ItemEntry{
			ItemID:           id,
			Name:             name,
			MainSources:      sourceViews(result.Main[id]),
			SecondarySources: sourceViews(result.Secondary[id]),
		})
	}
	return entries, nil
}

func sourceViews(sources map[itemsource.Source]struct{}) []SourceView {
	if len(sources) == 0 {
		return nil
	}
	views := make([]SourceView, 0, len(sources))
	for src := range sources {
		views = append(views, SourceView{Kind: src.Kind.String(), Params: src.Params()})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Kind != views[j].Kind {
			return views[i].Kind < views[j].Kind
		}
		return joinParams(views[i].Params) < joinParams(views[j].Params)
	})
	return views
}

func joinParams(params []string) string {
	out := ""
	for i, p := range params {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
