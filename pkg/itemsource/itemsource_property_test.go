package itemsource

import (
	"context"
	"testing"

	"pgregory.net/rapid"

	"github.com/sandrockwiki/census/pkg/generator"
	"github.com/sandrockwiki/census/pkg/registry"
)

// TestProperty_Phase2ConvergesAndNeverShrinks verifies the §8 invariant
// that the crafting fixpoint is monotonic (a pass never removes a
// previously-recorded pair) and terminates within the iteration bound,
// over a randomized chain of recipes each one material away from the last.
func TestProperty_Phase2ConvergesAndNeverShrinks(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "chainLength")
		dir := t.TempDir()

		recipes := make([]map[string]any, 0, n)
		for i := 1; i <= n; i++ {
			recipes = append(recipes, map[string]any{
				"id":           i,
				"resultItemId": i + 1,
				"stationId":    0,
				"materials":    []map[string]any{{"itemId": i}},
			})
		}

		knownTables := []string{"item", "recipe", "machine", "recipeBook", "researchDisc",
			"cookingExperiment", "recipeScript", "npcRecipeShare"}
		writeTable(t, dir, "item", []map[string]any{})
		writeTable(t, dir, "recipe", recipes)
		for _, name := range []string{"machine", "recipeBook", "researchDisc",
			"cookingExperiment", "recipeScript", "npcRecipeShare"} {
			writeTable(t, dir, name, []map[string]any{})
		}

		reg := registry.NewRegistry(dir, knownTables)
		gen := generator.NewTable(nil, nil)

		prov := make(Provenance)
		prov.Add(1, NewSource(SourceStore, "seed"))

		r := NewResolver()
		unlockers, err := r.runUnlockers(context.Background(), reg, gen)
		if err != nil {
			t.Fatalf("runUnlockers: %v", err)
		}

		before := prov.Count()
		if err := r.runPhase2(context.Background(), reg, gen, prov, unlockers, n+1); err != nil {
			t.Fatalf("runPhase2: %v", err)
		}
		if prov.Count() < before {
			t.Fatalf("phase 2 shrank provenance: %d -> %d", before, prov.Count())
		}

		// Every item in the chain should now be reachable, since each
		// recipe's single material is exactly the previous item.
		for i := 1; i <= n+1; i++ {
			if !prov.Has(i) {
				t.Fatalf("item %d (chain position %d of %d) never resolved", i, i, n+1)
			}
		}
	})
}
