package generator

import (
	"fmt"
	"math"
)

// Outcome is one possible drop with its selection probability and the
// count range it can produce.
type Outcome struct {
	ItemID      int
	Probability float64
	CountMin    float64
	CountMax    float64
}

// ExpandWithMetadata returns every non-inert outcome a group can produce,
// across every element, with probability (weight normalized against the
// element's total positive weight, computed as pure arithmetic rather
// than a random draw) and a count range derived from
// each generator's RandomKind.
func (t *Table) ExpandWithMetadata(groupID string) ([]Outcome, error) {
	group, ok := t.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("generator: unknown group %q", groupID)
	}

	var outcomes []Outcome
	for _, element := range group.Elements {
		total := 0.0
		for _, iw := range element.Weights {
			if iw.Weight > 0 {
				total += iw.Weight
			}
		}
		if total <= 0 {
			continue
		}

		for _, iw := range element.Weights {
			if iw.Weight <= 0 {
				continue
			}
			gen, ok := t.generators[iw.GeneratorID]
			if !ok {
				return nil, fmt.Errorf("generator: group %q references unknown generator %q", groupID, iw.GeneratorID)
			}
			min, max := countRange(gen)
			outcomes = append(outcomes, Outcome{
				ItemID:      gen.ItemID,
				Probability: iw.Weight / total,
				CountMin:    min,
				CountMax:    max,
			})
		}
	}
	return outcomes, nil
}

// countRange derives a generator's [min, max] count range from its
// RandomKind and Params, rounding the min toward zero and the max away
// from zero.
func countRange(gen Generator) (float64, float64) {
	switch gen.RandomKind {
	case Fixed:
		p0 := paramAt(gen.Params, 0)
		return roundMin(p0), roundMax(p0)
	case Normal:
		p0 := paramAt(gen.Params, 0)
		p1 := paramAt(gen.Params, 1)
		return roundMin(p0 - p1), roundMax(p0 + p1)
	case UniformInt, UniformFloat:
		p0 := paramAt(gen.Params, 0)
		p1 := paramAt(gen.Params, 1)
		return roundMin(p0), roundMax(p1)
	default:
		return 0, 0
	}
}

func paramAt(params []float64, i int) float64 {
	if i >= len(params) {
		return 0
	}
	return params[i]
}

// roundMin rounds toward zero (floor for non-negative values).
func roundMin(v float64) float64 {
	return math.Trunc(v)
}

// roundMax rounds away from zero: ceiling for positive values, floor for
// negative ones.
func roundMax(v float64) float64 {
	if v < 0 {
		return math.Floor(v)
	}
	return math.Ceil(v)
}
