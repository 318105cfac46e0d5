// Package generator expands weighted drop-table definitions into the
// concrete item ids (and, optionally, probability/count metadata) they can
// produce. Expansion here is pure enumeration rather than weighted
// sampling: every non-inert outcome is returned, not just one sampled
// draw.
package generator

import "fmt"

// RandomKind selects how a Generator's Params are interpreted when
// producing a count range for an outcome.
type RandomKind int

const (
	// Fixed always yields exactly Params[0].
	Fixed RandomKind = iota
	// Normal centers on Params[0] with a spread of Params[1].
	Normal
	// UniformInt draws an integer count uniformly from [Params[0], Params[1]].
	UniformInt
	// UniformFloat draws a float count uniformly from [Params[0], Params[1]].
	UniformFloat
)

func (k RandomKind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Normal:
		return "normal"
	case UniformInt:
		return "uniform_int"
	case UniformFloat:
		return "uniform_float"
	default:
		return "unknown"
	}
}

// Generator is a single weighted outcome definition: the item it produces
// and the RandomKind/Params controlling how many copies.
type Generator struct {
	ID         string
	ItemID     int
	RandomKind RandomKind
	Params     []float64
}

// IDWeight names a Generator by id within an Element, with its selection
// weight and an auxiliary luck-sensitivity factor.
type IDWeight struct {
	GeneratorID string
	Weight      float64
	LuckFactor  float64
}

// Element is one independent weighted draw within a GeneratorGroup: a
// group can have several elements, each contributing its own set of
// possible outcomes (e.g. "guaranteed drop" plus "bonus drop").
type Element struct {
	Weights []IDWeight
}

// GeneratorGroup is the top-level drop table: an ordered set of Elements,
// each evaluated independently.
type GeneratorGroup struct {
	ID       string
	Elements []Element
}

// Table indexes Generators by id and GeneratorGroups by id, and memoizes
// the reverse item-id -> group-ids lookup on first use.
type Table struct {
	generators map[string]Generator
	groups     map[string]GeneratorGroup

	groupsForItem map[int][]string
}

// NewTable builds a lookup table over the given generators and groups.
func NewTable(generators []Generator, groups []GeneratorGroup) *Table {
	t := &Table{
		generators: make(map[string]Generator, len(generators)),
		groups:     make(map[string]GeneratorGroup, len(groups)),
	}
	for _, g := range generators {
		t.generators[g.ID] = g
	}
	for _, g := range groups {
		t.groups[g.ID] = g
	}
	return t
}

// Expand returns the union of every non-inert (weight > 0) item id a group
// can produce, across every element.
func (t *Table) Expand(groupID string) (map[int]struct{}, error) {
	group, ok := t.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("generator: unknown group %q", groupID)
	}

	out := make(map[int]struct{})
	for _, element := range group.Elements {
		for _, iw := range element.Weights {
			if iw.Weight <= 0 {
				continue
			}
			gen, ok := t.generators[iw.GeneratorID]
			if !ok {
				return nil, fmt.Errorf("generator: group %q references unknown generator %q", groupID, iw.GeneratorID)
			}
			out[gen.ItemID] = struct{}{}
		}
	}
	return out, nil
}

// FindGroupsFor returns every group id that can produce the given item,
// building and memoizing the full reverse index on first call.
func (t *Table) FindGroupsFor(itemID int) ([]string, error) {
	if t.groupsForItem == nil {
		t.groupsForItem = make(map[int][]string)
		for groupID := range t.groups {
			items, err := t.Expand(groupID)
			if err != nil {
				return nil, err
			}
			for id := range items {
				t.groupsForItem[id] = append(t.groupsForItem[id], groupID)
			}
		}
	}
	return t.groupsForItem[itemID], nil
}
