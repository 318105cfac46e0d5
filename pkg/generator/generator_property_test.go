package generator

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

// TestProperty_ExpandWithMetadataProbabilitiesSumToOne verifies the §8
// invariant that a group's non-inert outcome probabilities always sum to
// 1.0 for any element with at least one positive weight, regardless of how
// many generators or how skewed the weights are.
func TestProperty_ExpandWithMetadataProbabilitiesSumToOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")

		generators := make([]Generator, n)
		weights := make([]IDWeight, n)
		for i := 0; i < n; i++ {
			id := rapid.StringMatching(`g[0-9]+`).Draw(rt, "id")
			generators[i] = Generator{
				ID:         id,
				ItemID:     rapid.IntRange(0, 1000).Draw(rt, "itemID"),
				RandomKind: Fixed,
				Params:     []float64{1},
			}
			weights[i] = IDWeight{
				GeneratorID: id,
				Weight:      rapid.Float64Range(0.01, 100).Draw(rt, "weight"),
			}
		}

		table := NewTable(generators, []GeneratorGroup{
			{ID: "grp", Elements: []Element{{Weights: weights}}},
		})

		outcomes, err := table.ExpandWithMetadata("grp")
		if err != nil {
			rt.Fatalf("ExpandWithMetadata: %v", err)
		}

		var total float64
		for _, o := range outcomes {
			total += o.Probability
		}
		if math.Abs(total-1.0) > 1e-9 {
			rt.Fatalf("probabilities sum to %f, want 1.0 (n=%d)", total, n)
		}
	})
}
