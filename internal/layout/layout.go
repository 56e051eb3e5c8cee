package layout

import (
	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/graph"
	"github.com/fhirscope/relgraph/internal/viewport"
)

// Strategy assigns or constrains node coordinates for one graph.
// Apply mutates node positions (and pins) directly; the caller reheats
// the simulation afterwards. Switching strategies never requires
// rebuilding the graph.
type Strategy interface {
	Name() string
	Apply(g *graph.Graph, bounds viewport.Bounds, centerID string)
}

// ForName returns the strategy for a wire name, defaulting to Force for
// unknown names.
func ForName(name string, cfg config.LayoutConf) Strategy {
	switch name {
	case "radial":
		return &Radial{cfg: cfg}
	case "hierarchical":
		return &Hierarchical{cfg: cfg}
	case "circular":
		return &Circular{cfg: cfg}
	default:
		return &Force{}
	}
}

// Force releases every pin and lets the simulation alone determine the
// final layout.
type Force struct{}

func (*Force) Name() string { return "force" }

func (*Force) Apply(g *graph.Graph, _ viewport.Bounds, _ string) {
	for _, n := range g.Nodes() {
		n.Unpin()
	}
}
