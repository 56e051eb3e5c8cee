package layout_test

import (
	"math"
	"testing"

	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/graph"
	"github.com/fhirscope/relgraph/internal/layout"
	"github.com/fhirscope/relgraph/internal/viewport"
)

var bounds = viewport.Bounds{Width: 800, Height: 600}

func layoutConf() config.LayoutConf {
	return config.Default().Layout
}

func patientGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	if err := g.AddNode(&graph.Node{ID: "Patient/1", ResourceType: "Patient", Depth: 0}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(&graph.Node{ID: "Observation/1", ResourceType: "Observation", Depth: 1}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddLink(graph.Link{SourceID: "Patient/1", TargetID: "Observation/1", Field: "subject"}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	return g
}

func TestRadialPlacesCenterAndFirstSatellite(t *testing.T) {
	g := patientGraph(t)
	layout.ForName("radial", layoutConf()).Apply(g, bounds, "Patient/1")

	center := g.Node("Patient/1")
	if center.X != 400 || center.Y != 300 {
		t.Fatalf("center at (%v, %v), want viewport center (400, 300)", center.X, center.Y)
	}
	if !center.Pinned() {
		t.Fatal("center node must be pinned")
	}

	// Single depth-1 satellite: radius 150 along angle 0.
	sat := g.Node("Observation/1")
	if math.Abs(sat.X-550) > 1e-9 || math.Abs(sat.Y-300) > 1e-9 {
		t.Fatalf("satellite at (%v, %v), want (550, 300)", sat.X, sat.Y)
	}
	if !sat.Pinned() {
		t.Fatal("satellite must be pinned")
	}
}

func TestRadialFallsBackToRootCenter(t *testing.T) {
	g := patientGraph(t)
	layout.ForName("radial", layoutConf()).Apply(g, bounds, "Nonexistent/9")

	if c := g.Node("Patient/1"); c.X != 400 || c.Y != 300 {
		t.Fatalf("unknown center id must fall back to the root, got (%v, %v)", c.X, c.Y)
	}
}

func TestLayoutRoundTripPreservesIdentity(t *testing.T) {
	g := patientGraph(t)
	before := g.NodeCount()

	layout.ForName("force", layoutConf()).Apply(g, bounds, "")
	layout.ForName("radial", layoutConf()).Apply(g, bounds, "Patient/1")
	layout.ForName("force", layoutConf()).Apply(g, bounds, "")

	if g.NodeCount() != before {
		t.Fatalf("node count changed: %d -> %d", before, g.NodeCount())
	}
	for _, n := range g.Nodes() {
		if n.Pinned() {
			t.Fatalf("force layout must release pin on %s", n.ID)
		}
	}
	if g.Node("Patient/1") == nil || g.Node("Observation/1") == nil {
		t.Fatal("node identity lost across layout switches")
	}
}

func TestHierarchicalRowsByDepth(t *testing.T) {
	g := patientGraph(t)
	if err := g.AddNode(&graph.Node{ID: "Observation/2", ResourceType: "Observation", Depth: 1}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	layout.ForName("hierarchical", layoutConf()).Apply(g, bounds, "")

	root := g.Node("Patient/1")
	a := g.Node("Observation/1")
	b := g.Node("Observation/2")
	if a.Y != b.Y {
		t.Fatalf("same-depth nodes in different rows: %v vs %v", a.Y, b.Y)
	}
	if root.Y >= a.Y {
		t.Fatalf("depth 0 row (%v) must sit above depth 1 row (%v)", root.Y, a.Y)
	}
	if a.X == b.X {
		t.Fatal("row nodes must be spread horizontally")
	}
}

func TestHierarchicalEmptyGraphDoesNotPanic(t *testing.T) {
	g := graph.New()
	layout.ForName("hierarchical", layoutConf()).Apply(g, bounds, "")
}

func TestCircularPlacesAllNodesOnOneCircle(t *testing.T) {
	g := patientGraph(t)
	if err := g.AddNode(&graph.Node{ID: "Condition/1", ResourceType: "Condition", Depth: 1}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	cfg := layoutConf()
	layout.ForName("circular", cfg).Apply(g, bounds, "")

	want := math.Min(bounds.Width, bounds.Height)/2 - cfg.CircularMargin
	for _, n := range g.Nodes() {
		r := math.Hypot(n.X-400, n.Y-300)
		if math.Abs(r-want) > 1e-9 {
			t.Fatalf("node %s at radius %v, want %v", n.ID, r, want)
		}
	}
}

func TestForNameDefaultsToForce(t *testing.T) {
	if got := layout.ForName("bogus", layoutConf()).Name(); got != "force" {
		t.Fatalf("unknown strategy resolved to %q, want force", got)
	}
}
