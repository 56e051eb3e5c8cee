package layout

import (
	"math"

	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/graph"
	"github.com/fhirscope/relgraph/internal/viewport"
)

// Radial pins a designated center node at the viewport center and
// arranges the remaining nodes on concentric rings by discovery depth.
type Radial struct {
	cfg config.LayoutConf
}

func (*Radial) Name() string { return "radial" }

func (r *Radial) Apply(g *graph.Graph, bounds viewport.Bounds, centerID string) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}
	if centerID == "" || g.Node(centerID) == nil {
		centerID = g.Root()
	}
	center := bounds.Center()

	var satellites []*graph.Node
	for _, n := range nodes {
		if n.ID == centerID {
			n.Pin(center.X, center.Y)
			continue
		}
		satellites = append(satellites, n)
	}

	count := len(satellites)
	for i, n := range satellites {
		depth := n.Depth
		if depth < 1 {
			depth = 1
		}
		radius := r.cfg.RadialBaseRadius + float64(depth-1)*r.cfg.RadialDepthStep
		angle := float64(i) / float64(count) * 2 * math.Pi
		n.Pin(center.X+radius*math.Cos(angle), center.Y+radius*math.Sin(angle))
	}
}

// Circular places every node evenly on a single circle sized to the
// viewport.
type Circular struct {
	cfg config.LayoutConf
}

func (*Circular) Name() string { return "circular" }

func (c *Circular) Apply(g *graph.Graph, bounds viewport.Bounds, _ string) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}
	center := bounds.Center()
	radius := math.Min(bounds.Width, bounds.Height)/2 - c.cfg.CircularMargin
	if radius < 1 {
		radius = 1
	}
	count := len(nodes)
	for i, n := range nodes {
		angle := float64(i) / float64(count) * 2 * math.Pi
		n.Pin(center.X+radius*math.Cos(angle), center.Y+radius*math.Sin(angle))
	}
}
