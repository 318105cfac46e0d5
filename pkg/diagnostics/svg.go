// Package diagnostics renders resolver internals for human inspection. It is
// a debugging aid for resolver authors, not part of the wiki output
// pipeline.
package diagnostics

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	svg "github.com/ajstarks/svgo"

	"github.com/sandrockwiki/census/pkg/itemsource"
)

// GraphOptions configures the fixpoint dependency graph render.
type GraphOptions struct {
	Width      int
	Height     int
	NodeRadius int
	Margin     int
	Title      string
}

// DefaultGraphOptions returns sensible render defaults.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		Width:      1400,
		Height:     1000,
		NodeRadius: 14,
		Margin:     60,
		Title:      "Item-source fixpoint graph",
	}
}

type position struct {
	X, Y float64
}

// RenderFixpointGraph draws the item → source dependency graph discovered
// while resolving result, one node per item with at least one recorded
// source, colored by the Phase 2 iteration at which it first entered
// Provenance (items Phase 1 already resolved are iteration 0, the coolest
// color; later iterations grow warmer). Edges link each item to an item
// discovered one iteration earlier (see collectDependencyEdges); they do
// not name the item's actual material/seed/bait/key prerequisites.
func RenderFixpointGraph(result *itemsource.Result, opts GraphOptions) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("diagnostics: result cannot be nil")
	}
	if opts.Width <= 0 {
		opts.Width = 1400
	}
	if opts.Height <= 0 {
		opts.Height = 1000
	}
	if opts.NodeRadius <= 0 {
		opts.NodeRadius = 14
	}
	if opts.Margin <= 0 {
		opts.Margin = 60
	}

	ids := make([]int, 0, len(result.Provenance))
	for id := range result.Provenance {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	positions := layoutCircle(ids, opts)
	edges := collectDependencyEdges(result)

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:#1a1a2e")

	drawFixpointEdges(canvas, edges, positions)
	drawFixpointNodes(canvas, ids, positions, result, opts)

	if opts.Title != "" {
		canvas.Text(opts.Width/2, 25, opts.Title,
			"text-anchor:middle;font-size:20px;font-weight:bold;fill:#e2e8f0;font-family:sans-serif")
	}
	drawIterationLegend(canvas, result, opts)

	canvas.End()
	return buf.Bytes(), nil
}

func layoutCircle(ids []int, opts GraphOptions) map[int]position {
	positions := make(map[int]position, len(ids))
	if len(ids) == 0 {
		return positions
	}

	centerX := float64(opts.Width) / 2
	centerY := float64(opts.Height) / 2
	drawWidth := float64(opts.Width - 2*opts.Margin - 2*opts.NodeRadius)
	drawHeight := float64(opts.Height - 2*opts.Margin - 2*opts.NodeRadius)
	radius := math.Min(drawWidth, drawHeight) / 2.2

	angleStep := 2 * math.Pi / float64(len(ids))
	for i, id := range ids {
		angle := float64(i) * angleStep
		positions[id] = position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}
	return positions
}

type edge struct {
	from, to int
}

// collectDependencyEdges groups items by the Phase 2 iteration at which they
// were discovered and links each item of iteration k (k >= 1) to one item of
// iteration k-1, assigned round-robin over both lists in sorted id order;
// source kinds are not compared. A Source's own parameters
// name a recipe/crop/spot/container row, not a prerequisite item id, so the
// exact material-level edge isn't recoverable from a frozen Result alone —
// this iteration-adjacency view is the nearest approximation a post-hoc
// render can draw without re-reading the original tables.
func collectDependencyEdges(result *itemsource.Result) []edge {
	byIteration := make(map[int][]int)
	for itemID, iteration := range result.DiscoveredAt {
		byIteration[iteration] = append(byIteration[iteration], itemID)
	}

	var edges []edge
	for iteration, items := range byIteration {
		prior, ok := byIteration[iteration-1]
		if !ok || iteration <= 0 {
			continue
		}
		sort.Ints(items)
		sort.Ints(prior)
		for i, itemID := range items {
			edges = append(edges, edge{from: prior[i%len(prior)], to: itemID})
		}
	}
	return edges
}

func drawFixpointEdges(canvas *svg.SVG, edges []edge, positions map[int]position) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})
	for _, e := range edges {
		fromPos, fromOK := positions[e.from]
		toPos, toOK := positions[e.to]
		if !fromOK || !toOK {
			continue
		}
		canvas.Line(int(fromPos.X), int(fromPos.Y), int(toPos.X), int(toPos.Y),
			"stroke:#4a5568;stroke-width:1;opacity:0.5")
	}
}

func drawFixpointNodes(canvas *svg.SVG, ids []int, positions map[int]position, result *itemsource.Result, opts GraphOptions) {
	for _, id := range ids {
		pos, ok := positions[id]
		if !ok {
			continue
		}
		iteration := result.DiscoveredAt[id]
		color := iterationColor(iteration)
		canvas.Circle(int(pos.X), int(pos.Y), opts.NodeRadius,
			fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:1;opacity:0.9", color))
		canvas.Text(int(pos.X), int(pos.Y)+opts.NodeRadius+12, fmt.Sprintf("%d", id),
			"text-anchor:middle;font-size:9px;font-family:monospace;fill:#e2e8f0")
	}
}

// iterationColor maps a discovery iteration to a cool-to-hot color, mirroring
// a heatmap: iteration 0 (Phase 1, or an immediately-available item) is cool
// blue, and each later fixpoint pass shifts warmer.
func iterationColor(iteration int) string {
	switch {
	case iteration <= 0:
		return "#3b82f6"
	case iteration == 1:
		return "#10b981"
	case iteration == 2:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

func drawIterationLegend(canvas *svg.SVG, result *itemsource.Result, opts GraphOptions) {
	legendX := opts.Margin
	legendY := opts.Height - opts.Margin

	maxIteration := 0
	for _, it := range result.DiscoveredAt {
		if it > maxIteration {
			maxIteration = it
		}
	}

	canvas.Text(legendX, legendY-60, "Discovery iteration", "font-size:12px;font-weight:bold;fill:#e2e8f0")

	entries := []struct {
		label string
		color string
	}{
		{"0 (phase 1)", iterationColor(0)},
		{"1", iterationColor(1)},
		{"2", iterationColor(2)},
	}
	if maxIteration > 2 {
		entries = append(entries, struct {
			label string
			color string
		}{"3+", iterationColor(3)})
	}

	y := legendY - 40
	for _, e := range entries {
		canvas.Circle(legendX+6, y, 6, fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:1", e.color))
		canvas.Text(legendX+20, y+4, e.label, "font-size:10px;fill:#cbd5e0")
		y += 16
	}
}
