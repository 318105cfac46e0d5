package census

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sandrockwiki/census/pkg/censuserr"
	"github.com/sandrockwiki/census/pkg/generator"
	"github.com/sandrockwiki/census/pkg/mission"
	"github.com/sandrockwiki/census/pkg/registry"
	"github.com/sandrockwiki/census/pkg/text"
)

// textConcatSeparator joins every language variant when a caller asks for
// text.ConcatLanguage.
const textConcatSeparator = " / "

// loadTextTable reads each configured language's localized text table —
// a configList of {id, text} records, the same shape every other
// designer-config table uses — and merges them into a single text.Table
// keyed by language code. A language directory with no text.json is
// skipped rather than failing the whole load; not every data set ships
// every configured language.
func loadTextTable(assetsRoot string, languages, languageCodes []string) (*text.Table, error) {
	tbl := text.NewTable(textConcatSeparator, nil)
	for i, lang := range languages {
		code := languageCodes[i]
		root := filepath.Join(assetsRoot, "localization", lang)
		reg := registry.NewRegistry(root, []string{"text"})
		table, err := reg.Table("text")
		if errors.Is(err, censuserr.ErrAssetNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s localized text: %w", lang, err)
		}
		table.Each(func(id int, rec registry.Record) {
			if s, ok := rec.String("text"); ok {
				tbl.Set(id, code, s)
			}
		})
	}
	return tbl, nil
}

// languageCode resolves the configured wiki language name to its parallel
// short code. Config.Validate already guarantees wikiLanguage is present
// in languages, so an unresolved index falls back to wikiLanguage itself.
func languageCode(languages, codes []string, wikiLanguage string) string {
	for i, lang := range languages {
		if lang == wikiLanguage {
			return codes[i]
		}
	}
	return wikiLanguage
}

// loadMissions parses every *.xml file under root as a mission script,
// skipping subdirectories and non-XML files.
func loadMissions(root string) ([]*mission.Mission, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading story_script dir %s: %w", root, err)
	}

	var missions []*mission.Mission
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".xml" {
			continue
		}
		path := filepath.Join(root, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading mission script %s: %w", path, err)
		}
		m, err := mission.ParseMission(data)
		if err != nil {
			return nil, fmt.Errorf("parsing mission script %s: %w", path, err)
		}
		missions = append(missions, m)
	}
	return missions, nil
}

// loadGeneratorTable builds a generator.Table from the designer-config
// "generator" and "generatorGroup" tables, decoded through registry.Record
// rather than their own struct-tagged JSON decode, matching this package's
// plain-map-plus-narrow-accessor convention. If either table cannot be
// loaded, an empty table is returned.
func loadGeneratorTable(reg *registry.Registry) *generator.Table {
	genTable, err := reg.Table("generator")
	if err != nil {
		return generator.NewTable(nil, nil)
	}
	groupTable, err := reg.Table("generatorGroup")
	if err != nil {
		return generator.NewTable(nil, nil)
	}

	var generators []generator.Generator
	genTable.Each(func(id int, rec registry.Record) {
		itemID, _ := rec.Int("itemId")
		kindName, _ := rec.String("randomKind")
		params := floatSlice(rec, "params")
		generators = append(generators, generator.Generator{
			ID:         fmt.Sprintf("%d", id),
			ItemID:     itemID,
			RandomKind: parseRandomKind(kindName),
			Params:     params,
		})
	})

	var groups []generator.GeneratorGroup
	groupTable.Each(func(id int, rec registry.Record) {
		elements := decodeElements(rec)
		groups = append(groups, generator.GeneratorGroup{
			ID:       fmt.Sprintf("%d", id),
			Elements: elements,
		})
	})

	return generator.NewTable(generators, groups)
}

func decodeElements(rec registry.Record) []generator.Element {
	raw, ok := rec.Slice("elements")
	if !ok {
		return nil
	}
	elements := make([]generator.Element, 0, len(raw))
	for _, e := range raw {
		entryMap, ok := e.(map[string]any)
		if !ok {
			continue
		}
		weightsRaw, _ := registry.Record(entryMap).Slice("weights")
		weights := make([]generator.IDWeight, 0, len(weightsRaw))
		for _, w := range weightsRaw {
			wm, ok := w.(map[string]any)
			if !ok {
				continue
			}
			wr := registry.Record(wm)
			genID, _ := wr.String("generatorId")
			weight, _ := wr.Float("weight")
			luck, _ := wr.Float("luckFactor")
			weights = append(weights, generator.IDWeight{
				GeneratorID: genID,
				Weight:      weight,
				LuckFactor:  luck,
			})
		}
		elements = append(elements, generator.Element{Weights: weights})
	}
	return elements
}

func floatSlice(rec registry.Record, key string) []float64 {
	raw, ok := rec.Slice(key)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

func parseRandomKind(name string) generator.RandomKind {
	switch name {
	case "normal":
		return generator.Normal
	case "uniform_int":
		return generator.UniformInt
	case "uniform_float":
		return generator.UniformFloat
	default:
		return generator.Fixed
	}
}

// loadKnownBadDrops reads a YAML side-file listing drop-table (generator
// group) ids maintained as explicitly bogus, per the resolved Open
// Question in DESIGN.md: a data file rather than a Go literal, so updates
// don't require a rebuild.
func loadKnownBadDrops(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading known bad drops file %s: %w", path, err)
	}
	var ids []int
	if err := yaml.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parsing known bad drops file %s: %w", path, err)
	}
	return ids, nil
}
