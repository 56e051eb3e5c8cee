package sim_test

import (
	"math"
	"testing"

	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/graph"
	"github.com/fhirscope/relgraph/internal/sim"
	"github.com/fhirscope/relgraph/internal/viewport"
)

var testBounds = viewport.Bounds{Width: 800, Height: 600}

func simConf() config.SimulationConf {
	cfg := config.Default()
	return cfg.Simulation
}

func pairGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	g.AddNode(&graph.Node{ID: "Patient/1", Radius: 10})
	g.AddNode(&graph.Node{ID: "Observation/1", Depth: 1, Radius: 10})
	if err := g.AddLink(graph.Link{SourceID: "Patient/1", TargetID: "Observation/1", Field: "subject", Strength: 1}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	return g
}

func TestStepIsNoOpWithoutGraph(t *testing.T) {
	s := sim.New(simConf(), testBounds)
	s.Step(1.0 / 60) // must not panic
	if s.Running() {
		t.Fatal("empty simulation must not be running")
	}
}

func TestLinkForceApproachesTargetDistance(t *testing.T) {
	g := pairGraph(t)
	a := g.Node("Patient/1")
	b := g.Node("Observation/1")
	a.X, a.Y = 100, 300
	b.X, b.Y = 700, 300 // 600 apart, target distance is 100

	s := sim.New(simConf(), testBounds)
	s.SetGraph(g)
	for i := 0; i < 300; i++ {
		s.Step(1.0 / 60)
	}

	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	if dist > 300 {
		t.Fatalf("distance after settle = %v, want well below starting 600", dist)
	}
}

func TestSimulationSettles(t *testing.T) {
	g := pairGraph(t)
	s := sim.New(simConf(), testBounds)
	s.SetGraph(g)

	// Alpha decays ~2.3% per tick; 600 ticks is far past the settle
	// point for alpha_min 0.001.
	for i := 0; i < 600; i++ {
		s.Step(1.0 / 60)
	}
	if !s.Settled() {
		t.Fatalf("alpha = %v, expected settled", s.Alpha())
	}
	if s.Running() {
		t.Fatal("settled simulation must stop running")
	}

	a := g.Node("Patient/1")
	x, y := a.X, a.Y
	s.Step(1.0 / 60)
	if a.X != x || a.Y != y {
		t.Fatal("Step after settle must be a no-op")
	}
}

func TestPinnedNodeDoesNotMove(t *testing.T) {
	g := pairGraph(t)
	n := g.Node("Patient/1")
	n.Pin(400, 300)

	s := sim.New(simConf(), testBounds)
	s.SetGraph(g)
	for i := 0; i < 120; i++ {
		s.Step(1.0 / 60)
	}

	if n.X != 400 || n.Y != 300 {
		t.Fatalf("pinned node moved to (%v, %v)", n.X, n.Y)
	}
}

func TestStopAndStartAreIdempotent(t *testing.T) {
	g := pairGraph(t)
	s := sim.New(simConf(), testBounds)
	s.SetGraph(g)

	s.Stop()
	s.Stop() // stopping while not running is a no-op
	if s.Running() {
		t.Fatal("expected stopped")
	}

	n := g.Node("Patient/1")
	x := n.X
	s.Step(1.0 / 60)
	if n.X != x {
		t.Fatal("stopped simulation must not move nodes")
	}

	s.Start()
	s.Start()
	if !s.Running() {
		t.Fatal("expected running after Start")
	}
}

func TestReheatRestartsSettledSimulation(t *testing.T) {
	g := pairGraph(t)
	s := sim.New(simConf(), testBounds)
	s.SetGraph(g)
	for i := 0; i < 600; i++ {
		s.Step(1.0 / 60)
	}
	if !s.Settled() {
		t.Fatal("expected settled before reheat")
	}

	s.Reheat(0.5)
	if s.Settled() {
		t.Fatal("reheat must lift alpha above the settle threshold")
	}
	if !s.Running() {
		t.Fatal("reheat must restart the loop")
	}
}

func TestBoundaryClamp(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.Node{ID: "Patient/1", Radius: 10})
	n := g.Node("Patient/1")
	n.X, n.Y = 5000, -5000

	s := sim.New(simConf(), testBounds)
	s.SetGraph(g)
	s.Step(1.0 / 60)

	cfg := simConf()
	if n.X > testBounds.Width-cfg.BoundsPadding || n.Y < cfg.BoundsPadding {
		t.Fatalf("node left the padded viewport: (%v, %v)", n.X, n.Y)
	}
}

func TestChargeForceSeparatesUnlinkedNodes(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.Node{ID: "Patient/1", Radius: 10})
	g.AddNode(&graph.Node{ID: "Patient/2", Radius: 10})
	a, b := g.Node("Patient/1"), g.Node("Patient/2")
	a.X, a.Y = 400, 300
	b.X, b.Y = 405, 300

	s := sim.New(simConf(), testBounds)
	s.SetGraph(g)
	for i := 0; i < 60; i++ {
		s.Step(1.0 / 60)
	}

	if dist := math.Hypot(b.X-a.X, b.Y-a.Y); dist < 20 {
		t.Fatalf("distance = %v, repulsion should separate the pair", dist)
	}
}
