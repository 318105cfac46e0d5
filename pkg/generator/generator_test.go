package generator

import (
	"math"
	"testing"
)

func testTable() *Table {
	generators := []Generator{
		{ID: "g_wood", ItemID: 100, RandomKind: Fixed, Params: []float64{2}},
		{ID: "g_stone", ItemID: 101, RandomKind: UniformInt, Params: []float64{1, 3}},
		{ID: "g_inert", ItemID: 102, RandomKind: Fixed, Params: []float64{1}},
	}
	groups := []GeneratorGroup{
		{
			ID: "grp_rubble",
			Elements: []Element{
				{Weights: []IDWeight{
					{GeneratorID: "g_wood", Weight: 3},
					{GeneratorID: "g_stone", Weight: 1},
					{GeneratorID: "g_inert", Weight: 0},
				}},
			},
		},
	}
	return NewTable(generators, groups)
}

func TestExpandExcludesInertOutcomes(t *testing.T) {
	table := testTable()
	items, err := table.Expand("grp_rubble")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if _, ok := items[102]; ok {
		t.Error("expected inert (weight=0) outcome to be excluded")
	}
	if _, ok := items[100]; !ok {
		t.Error("expected wood outcome to be included")
	}
}

func TestFindGroupsForReverseLookup(t *testing.T) {
	table := testTable()
	groups, err := table.FindGroupsFor(101)
	if err != nil {
		t.Fatalf("FindGroupsFor: %v", err)
	}
	if len(groups) != 1 || groups[0] != "grp_rubble" {
		t.Fatalf("FindGroupsFor(101) = %v, want [grp_rubble]", groups)
	}
}

func TestExpandWithMetadataProbabilitiesSumToOne(t *testing.T) {
	table := testTable()
	outcomes, err := table.ExpandWithMetadata("grp_rubble")
	if err != nil {
		t.Fatalf("ExpandWithMetadata: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 non-inert outcomes, got %d", len(outcomes))
	}

	var total float64
	for _, o := range outcomes {
		total += o.Probability
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Errorf("probabilities sum to %f, want 1.0", total)
	}
}

func TestCountRangeUniformInt(t *testing.T) {
	table := testTable()
	outcomes, err := table.ExpandWithMetadata("grp_rubble")
	if err != nil {
		t.Fatalf("ExpandWithMetadata: %v", err)
	}
	for _, o := range outcomes {
		if o.ItemID == 101 {
			if o.CountMin != 1 || o.CountMax != 3 {
				t.Errorf("stone count range = [%f, %f], want [1, 3]", o.CountMin, o.CountMax)
			}
		}
	}
}
