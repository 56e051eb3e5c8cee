package pathfind

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fhirscope/relgraph/internal/graph"
	"github.com/fhirscope/relgraph/internal/metrics"
)

// ErrSameEndpoints rejects path queries where source and target are the
// same node; a trivial zero-hop path is never a useful answer.
var ErrSameEndpoints = errors.New("pathfind: source and target are the same node")

// Step is one hop of a discovered path.
type Step struct {
	FromNodeID string `json:"fromNodeId"`
	ToNodeID   string `json:"toNodeId"`
	Field      string `json:"field"`
}

// Path is a simple path (no repeated nodes) between two nodes.
type Path struct {
	Steps []Step `json:"steps"`
}

// Hops returns the path length in edges.
func (p Path) Hops() int { return len(p.Steps) }

type partial struct {
	nodes   []string
	visited map[string]struct{}
}

// FindPaths enumerates every simple path between source and target up to
// maxDepth hops, treating links as undirected, sorted shortest-first
// with ties in traversal order. No path within maxDepth yields an empty
// slice, not an error. Each branch carries its own visited set, so the
// search terminates on cyclic graphs while still finding all simple
// paths.
func FindPaths(g *graph.Graph, sourceID, targetID string, maxDepth int) ([]Path, error) {
	if sourceID == targetID {
		return nil, ErrSameEndpoints
	}
	if g.Node(sourceID) == nil {
		return nil, fmt.Errorf("pathfind: unknown source node %q", sourceID)
	}
	if g.Node(targetID) == nil {
		return nil, fmt.Errorf("pathfind: unknown target node %q", targetID)
	}
	if maxDepth < 1 {
		return []Path{}, nil
	}
	metrics.PathQueries.Inc()

	// Relationship field per undirected endpoint pair, first link wins.
	fields := make(map[string]string, len(g.Links()))
	for _, l := range g.Links() {
		key := pairKey(l.SourceID, l.TargetID)
		if _, ok := fields[key]; !ok {
			fields[key] = l.Field
		}
	}

	var found []Path
	frontier := []partial{{
		nodes:   []string{sourceID},
		visited: map[string]struct{}{sourceID: {}},
	}}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []partial
		for _, p := range frontier {
			last := p.nodes[len(p.nodes)-1]
			for _, neighbor := range sortedNeighbors(g, last) {
				if _, seen := p.visited[neighbor]; seen {
					continue
				}
				if neighbor == targetID {
					found = append(found, materialize(append(p.nodes[:len(p.nodes):len(p.nodes)], neighbor), fields))
					continue
				}
				visited := make(map[string]struct{}, len(p.visited)+1)
				for id := range p.visited {
					visited[id] = struct{}{}
				}
				visited[neighbor] = struct{}{}
				next = append(next, partial{
					nodes:   append(p.nodes[:len(p.nodes):len(p.nodes)], neighbor),
					visited: visited,
				})
			}
		}
		frontier = next
	}

	// BFS already yields ascending hop counts; the sort is a stable
	// guarantee of the contract, not a reordering in practice.
	sort.SliceStable(found, func(i, j int) bool { return found[i].Hops() < found[j].Hops() })
	return found, nil
}

// sortedNeighbors returns a node's neighbors in deterministic order so
// tie-breaking by traversal order is reproducible.
func sortedNeighbors(g *graph.Graph, id string) []string {
	set := g.Neighbors(id)
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func materialize(nodes []string, fields map[string]string) Path {
	steps := make([]Step, 0, len(nodes)-1)
	for i := 0; i < len(nodes)-1; i++ {
		steps = append(steps, Step{
			FromNodeID: nodes[i],
			ToNodeID:   nodes[i+1],
			Field:      fields[pairKey(nodes[i], nodes[i+1])],
		})
	}
	return Path{Steps: steps}
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
