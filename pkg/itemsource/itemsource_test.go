package itemsource

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandrockwiki/census/pkg/generator"
	"github.com/sandrockwiki/census/pkg/mission"
	"github.com/sandrockwiki/census/pkg/preproc"
	"github.com/sandrockwiki/census/pkg/registry"
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

func TestSourceParamsRoundTrip(t *testing.T) {
	src := NewSource(SourceMonster, "7", "42")
	if got := src.Params(); len(got) != 2 || got[0] != "7" || got[1] != "42" {
		t.Fatalf("Params() = %v, want [7 42]", got)
	}
	if src.String() != "monster(7,42)" {
		t.Fatalf("String() = %q", src.String())
	}
}

func TestResolverRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	knownTables := []string{
		"store", "ruins", "delivery", "developerMail", "eventGift", "guildReward",
		"marriageMail", "photoTask", "museumReward", "partyService", "petDispatch",
		"research", "sandRacing", "sandSledding", "spouseCooking", "spouseGift",
		"biographyPhoto", "civilCorps", "machineUpgrade", "monster", "terrainTree",
		"recipe", "crop", "fishingSpot", "container", "item", "machine", "recipeBook",
		"researchDisc", "cookingExperiment", "recipeScript", "npcRecipeShare",
	}

	writeTable(t, dir, "store", []map[string]any{
		{"id": 1, "name": "general store", "productItemIds": []int{100}},
	})
	writeTable(t, dir, "spouseGift", []map[string]any{
		{"id": 1, "npcId": 10, "itemId": 200},
		{"id": 2, "npcId": 11, "itemId": 200},
	})
	writeTable(t, dir, "item", []map[string]any{
		{"id": 100, "name": "Widget", "sourceCategory": "Store"},
		{"id": 200, "name": "Flowers"},
		{"id": 300, "name": "Plank"},
	})
	writeTable(t, dir, "recipe", []map[string]any{
		{"id": 1, "resultItemId": 300, "stationId": 0, "materials": []map[string]any{
			{"itemId": 100},
		}},
	})
	for _, empty := range []string{
		"ruins", "delivery", "developerMail", "eventGift", "guildReward", "marriageMail",
		"photoTask", "museumReward", "partyService", "petDispatch", "research",
		"sandRacing", "sandSledding", "spouseCooking", "biographyPhoto", "civilCorps",
		"machineUpgrade", "monster", "terrainTree", "crop", "fishingSpot", "container",
		"machine", "recipeBook", "researchDisc", "cookingExperiment", "recipeScript",
		"npcRecipeShare",
	} {
		writeTable(t, dir, empty, []map[string]any{})
	}

	reg := registry.NewRegistry(dir, knownTables)
	gen := generator.NewTable(nil, nil)

	r := NewResolver()
	result, err := r.Run(context.Background(), reg, gen, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.Provenance.Has(100) {
		t.Fatalf("expected item 100 to have a store source")
	}
	if !result.Provenance.Has(300) {
		t.Fatalf("expected item 300 (hand-craftable, no station) to resolve via crafting")
	}

	spouseSet := result.Provenance[200]
	if len(spouseSet) != 1 {
		t.Fatalf("expected spouse-gift aggregation to collapse to 1 source, got %d", len(spouseSet))
	}
	for src := range spouseSet {
		if src.Kind != SourceSpouseGift || src.Params()[0] != tokenAllSpouses {
			t.Fatalf("expected aggregated all-spouses token, got %v", src)
		}
	}

	if _, ok := result.Main[100]; !ok {
		t.Fatalf("expected store item to land in Main")
	}
}

func TestRunPhase2RespectsStationUnlockerGate(t *testing.T) {
	dir := t.TempDir()
	knownTables := []string{"item", "recipe", "machine", "recipeBook", "researchDisc",
		"cookingExperiment", "recipeScript", "npcRecipeShare"}

	writeTable(t, dir, "item", []map[string]any{
		{"id": 1, "name": "Ore"},
		{"id": 2, "name": "Bar"},
	})
	writeTable(t, dir, "recipe", []map[string]any{
		{"id": 1, "resultItemId": 2, "stationId": 5, "materials": []map[string]any{
			{"itemId": 1},
		}},
	})
	writeTable(t, dir, "machine", []map[string]any{})
	writeTable(t, dir, "recipeBook", []map[string]any{})
	writeTable(t, dir, "researchDisc", []map[string]any{})
	writeTable(t, dir, "cookingExperiment", []map[string]any{})
	writeTable(t, dir, "recipeScript", []map[string]any{})
	writeTable(t, dir, "npcRecipeShare", []map[string]any{})

	reg := registry.NewRegistry(dir, knownTables)
	gen := generator.NewTable(nil, nil)

	prov := make(Provenance)
	prov.Add(1, NewSource(SourceStore, "1"))

	r := NewResolver()
	unlockers, err := r.runUnlockers(context.Background(), reg, gen)
	if err != nil {
		t.Fatalf("runUnlockers() error = %v", err)
	}

	if err := r.runPhase2(context.Background(), reg, gen, prov, unlockers, 10); err != nil {
		t.Fatalf("runPhase2() error = %v", err)
	}

	if prov.Has(2) {
		t.Fatalf("expected station recipe to stay locked without an Unlockers entry")
	}
}

func TestExtractMissionSourcesCapturesReceiveItemMailAndGift(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "item", []map[string]any{
		{"id": 1, "name": "Ore"},
	})
	writeTable(t, dir, "mailTemplate", []map[string]any{
		{"id": 20, "itemIds": []int{11}},
	})
	writeTable(t, dir, "eventGift", []map[string]any{
		{"id": 30, "itemIds": []int{12}},
	})
	reg := registry.NewRegistry(dir, []string{"item", "mailTemplate", "eventGift"})

	m := &mission.Mission{
		ID: 42,
		Triggers: []mission.Trigger{
			{
				Actions: []mission.Statement{
					{Opcode: "BAG ADD ITEM REPLACE", Kind: mission.KindReceiveItem, Attrs: map[string]string{
						"itemId": "9", "count": "1", "addRemove": "0",
					}},
					{Opcode: "MAIL SEND TO BOX", Kind: mission.KindMailDelivery, Attrs: map[string]string{
						"mailId": "20",
					}},
					{Opcode: "ACTION NPC SEND GIFT", Kind: mission.KindNPCGift, Attrs: map[string]string{
						"npc": "3", "giftId": "30",
					}},
				},
			},
		},
	}

	prov := make(Provenance)
	if err := extractMissionSources(reg, []*mission.Mission{m}, prov); err != nil {
		t.Fatalf("extractMissionSources() error = %v", err)
	}
	if !prov.Has(9) {
		t.Fatalf("expected a direct item grant to record item 9")
	}
	if !prov.Has(11) {
		t.Fatalf("expected the mail template's own item to be resolved via the mailTemplate table, got %v", prov)
	}
	if !prov.Has(12) {
		t.Fatalf("expected the gift's own item to be resolved via the eventGift table, got %v", prov)
	}
}

func TestExtractMissionSourcesBlueprintUnlockTagExpansion(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "item", []map[string]any{
		{"id": 1, "name": "Stew Recipe", "itemTag": "Cooking|Recipe"},
		{"id": 2, "name": "Bread Recipe", "itemTag": "Cooking"},
		{"id": 3, "name": "Axe", "itemTag": "Tool"},
	})
	reg := registry.NewRegistry(dir, []string{"item"})

	m := &mission.Mission{
		ID: 7,
		Triggers: []mission.Trigger{
			{Actions: []mission.Statement{
				{Opcode: "BLUEPRINT UNLOCK", Kind: mission.KindBlueprintUnlock, Attrs: map[string]string{
					"itemTag": "Cooking",
				}},
			}},
		},
	}

	prov := make(Provenance)
	if err := extractMissionSources(reg, []*mission.Mission{m}, prov); err != nil {
		t.Fatalf("extractMissionSources() error = %v", err)
	}
	if !prov.Has(1) || !prov.Has(2) {
		t.Fatalf("expected both Cooking-tagged items to be unlocked, got %v", prov)
	}
	if prov.Has(3) {
		t.Fatalf("expected the Tool-tagged item to stay unreachable, got %v", prov)
	}
}

func TestExtractTableCategorySkipsTempStoreItems(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "item", []map[string]any{
		{"id": 100, "name": "Widget"},
		{"id": 101, "name": "Placeholder Widget", "isTemp": true},
	})
	writeTable(t, dir, "store", []map[string]any{
		{"id": 5, "name": "general store", "productItemIds": []int{100, 101}},
	})
	reg := registry.NewRegistry(dir, []string{"item", "store"})

	prov := make(Provenance)
	cat := tableCategory{tableName: "store", kind: SourceStore, itemsField: "productItemIds", paramFields: []string{"name"}, filterTemp: true}
	if err := extractTableCategory(reg, cat, prov); err != nil {
		t.Fatalf("extractTableCategory() error = %v", err)
	}
	if !prov.Has(100) {
		t.Fatalf("expected the non-temp item to have a store source")
	}
	if prov.Has(101) {
		t.Fatalf("expected the isTemp item to be skipped, got %v", prov[101])
	}
}

func TestExtractMachineUpgradesAboveLevel0RequiresPreviousTierUnlocked(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "machineUpgrade", []map[string]any{
		{"id": 1, "tag": "furnace", "level": 0, "itemId": 200, "upgradeMaterials": []map[string]any{{"itemId": 1}}},
		{"id": 2, "tag": "furnace", "level": 1, "itemId": 201, "upgradeMaterials": []map[string]any{}},
		{"id": 3, "tag": "loom", "level": 0, "itemId": 300, "upgradeMaterials": []map[string]any{{"itemId": 1}}},
		{"id": 4, "tag": "loom", "level": 1, "itemId": 301, "upgradeMaterials": []map[string]any{{"itemId": 2}}},
	})
	reg := registry.NewRegistry(dir, []string{"machineUpgrade"})

	prov := make(Provenance)
	prov.Add(200, NewSource(SourceMachineUpgrade, "1")) // furnace tier 0 reachable
	prov.Add(300, NewSource(SourceMachineUpgrade, "3")) // loom tier 0 reachable

	if err := extractMachineUpgradesAboveLevel0(reg, prov); err != nil {
		t.Fatalf("extractMachineUpgradesAboveLevel0() error = %v", err)
	}
	if prov.Has(201) {
		t.Fatalf("expected furnace tier 1 to stay locked: tier 0 lists no upgrade materials")
	}
	if !prov.Has(301) {
		t.Fatalf("expected loom tier 1 to unlock: tier 0 is reachable and lists upgrade materials")
	}
}

func TestExtractSceneInterestPointsFiltersToYieldingKinds(t *testing.T) {
	scenes := []preproc.InterestPoint{
		{SceneID: 1, ObjectID: 5, Kind: preproc.KindResourceArea},
		{SceneID: 1, ObjectID: 6, Kind: preproc.KindMonsterSpawnStatic},
	}
	prov := make(Provenance)
	extractSceneInterestPoints(scenes, prov)

	if !prov.Has(5) {
		t.Fatalf("expected resource area object to be recorded")
	}
	if prov.Has(6) {
		t.Fatalf("monster spawn points are handled via extractMonsterDrops, not scene points")
	}
}

func TestSplitMainSecondaryStoresAlwaysMain(t *testing.T) {
	nominal := NominalSourceTable{1: "fishing spots"}
	prov := make(Provenance)
	prov.Add(1, NewSource(SourceStore, "1"))
	prov.Add(1, NewSource(SourceMonster, "9", "1"))

	main, secondary := SplitMainSecondary(nominal, prov)
	if len(main[1]) != 1 {
		t.Fatalf("expected only the store source in main, got %d main sources", len(main[1]))
	}
	if len(secondary[1]) != 1 {
		t.Fatalf("expected the non-matching monster source in secondary, got %d", len(secondary[1]))
	}
}

func TestSplitMainSecondaryNominalMismatchGoesSecondary(t *testing.T) {
	nominal := NominalSourceTable{2: "fishing spots"}
	prov := make(Provenance)
	prov.Add(2, NewSource(SourceMonster, "9", "2"))

	main, secondary := SplitMainSecondary(nominal, prov)
	if len(main[2]) != 0 {
		t.Fatalf("expected monster source to not satisfy a fishing-spots nominal category")
	}
	if len(secondary[2]) != 1 {
		t.Fatalf("expected monster source in secondary, got %d", len(secondary[2]))
	}
}
