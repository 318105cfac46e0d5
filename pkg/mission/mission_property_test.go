package mission

import (
	"testing"

	"pgregory.net/rapid"
)

// TestProperty_ResolveNameTerminates verifies the §8 invariant that
// ResolveName terminates for every mission, even over a randomly wired
// (possibly cyclic) parent chain: the depth guard must return an error
// rather than loop forever.
func TestProperty_ResolveNameTerminates(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		g := NewMissionGraph()

		for id := 1; id <= n; id++ {
			parent := rapid.IntRange(0, n).Draw(rt, "parent")
			if parent == id {
				parent = 0
			}
			name := ""
			if rapid.Bool().Draw(rt, "hasName") {
				name = "mission-name"
			}
			g.AddMission(id, parent, name)
		}

		start := rapid.IntRange(1, n).Draw(rt, "start")
		_, _ = g.ResolveName(start)
	})
}
