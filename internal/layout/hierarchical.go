package layout

import (
	"sort"

	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/graph"
	"github.com/fhirscope/relgraph/internal/viewport"
)

// Hierarchical arranges nodes in horizontal rows by discovery depth,
// suited to tree-like discovery results. On a structural anomaly it
// falls back to the Force strategy instead of failing.
type Hierarchical struct {
	cfg config.LayoutConf
}

func (*Hierarchical) Name() string { return "hierarchical" }

func (h *Hierarchical) Apply(g *graph.Graph, bounds viewport.Bounds, centerID string) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		(&Force{}).Apply(g, bounds, centerID)
		return
	}

	rows := make(map[int][]*graph.Node)
	maxDepth := 0
	for _, n := range nodes {
		d := n.Depth
		if d < 0 {
			d = 0
		}
		rows[d] = append(rows[d], n)
		if d > maxDepth {
			maxDepth = d
		}
	}

	depths := make([]int, 0, len(rows))
	for d := range rows {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	rowHeight := h.cfg.RowHeight
	totalHeight := float64(len(depths)-1) * rowHeight
	startY := bounds.Y + (bounds.Height-totalHeight)/2

	for rowIdx, d := range depths {
		row := rows[d]
		y := startY + float64(rowIdx)*rowHeight
		step := bounds.Width / float64(len(row)+1)
		for i, n := range row {
			n.Pin(bounds.X+step*float64(i+1), y)
		}
	}
}
