package pathfind_test

import (
	"errors"
	"testing"

	"github.com/fhirscope/relgraph/internal/graph"
	"github.com/fhirscope/relgraph/internal/pathfind"
)

func buildGraph(t *testing.T, nodes []string, edges [][2]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for i, id := range nodes {
		if err := g.AddNode(&graph.Node{ID: id, Depth: i}); err != nil {
			t.Fatalf("AddNode %s: %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddLink(graph.Link{SourceID: e[0], TargetID: e[1], Field: "ref"}); err != nil {
			t.Fatalf("AddLink %v: %v", e, err)
		}
	}
	return g
}

func TestFindPathsShortestFirst(t *testing.T) {
	// A—B—C plus the direct shortcut A—C.
	g := buildGraph(t,
		[]string{"A", "B", "C"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"A", "C"}},
	)

	paths, err := pathfind.FindPaths(g, "A", "C", 2)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) < 2 {
		t.Fatalf("paths = %d, want at least 2", len(paths))
	}
	if paths[0].Hops() != 1 {
		t.Fatalf("first path hops = %d, want 1", paths[0].Hops())
	}
	if paths[1].Hops() != 2 {
		t.Fatalf("second path hops = %d, want 2", paths[1].Hops())
	}
}

func TestFindPathsTerminatesOnCycle(t *testing.T) {
	// Triangle A—B—C—A; a generous depth must still terminate and
	// return only simple paths.
	g := buildGraph(t,
		[]string{"A", "B", "C"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}},
	)

	paths, err := pathfind.FindPaths(g, "A", "C", 5)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	for _, p := range paths {
		seen := map[string]bool{}
		for i, step := range p.Steps {
			if i == 0 {
				seen[step.FromNodeID] = true
			}
			if seen[step.ToNodeID] {
				t.Fatalf("path repeats node %s: %v", step.ToNodeID, p)
			}
			seen[step.ToNodeID] = true
		}
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %d, want 2 (direct and via B)", len(paths))
	}
}

func TestFindPathsValidation(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, [][2]string{{"A", "B"}})

	if _, err := pathfind.FindPaths(g, "A", "A", 3); !errors.Is(err, pathfind.ErrSameEndpoints) {
		t.Fatalf("same endpoints error = %v, want ErrSameEndpoints", err)
	}
	if _, err := pathfind.FindPaths(g, "A", "Z", 3); err == nil {
		t.Fatal("expected error for unknown target")
	}
	if _, err := pathfind.FindPaths(g, "Z", "A", 3); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestFindPathsNoRouteIsEmptyNotError(t *testing.T) {
	g := buildGraph(t, []string{"A", "B", "C", "D"}, [][2]string{{"A", "B"}, {"C", "D"}})

	paths, err := pathfind.FindPaths(g, "A", "D", 6)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("paths = %d, want 0", len(paths))
	}
}

func TestFindPathsRespectsMaxDepth(t *testing.T) {
	// Chain A—B—C—D: the only path needs 3 hops.
	g := buildGraph(t, []string{"A", "B", "C", "D"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}})

	paths, err := pathfind.FindPaths(g, "A", "D", 2)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("paths within depth 2 = %d, want 0", len(paths))
	}

	paths, err = pathfind.FindPaths(g, "A", "D", 3)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) != 1 || paths[0].Hops() != 3 {
		t.Fatalf("paths = %v, want one 3-hop path", paths)
	}
}

func TestPathStepsCarryRelationshipFields(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.Node{ID: "Patient/1"})
	g.AddNode(&graph.Node{ID: "Observation/1"})
	g.AddLink(graph.Link{SourceID: "Patient/1", TargetID: "Observation/1", Field: "subject"})

	paths, err := pathfind.FindPaths(g, "Patient/1", "Observation/1", 1)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("paths = %d, want 1", len(paths))
	}
	if got := paths[0].Steps[0].Field; got != "subject" {
		t.Fatalf("field = %q, want subject", got)
	}
}
