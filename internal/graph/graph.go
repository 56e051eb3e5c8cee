package graph

import (
	"errors"
	"math"
)

var (
	// ErrSelfLoop rejects links whose endpoints are the same node.
	ErrSelfLoop = errors.New("graph: self-loop link")
	// ErrDanglingLink rejects links referencing an unknown node.
	ErrDanglingLink = errors.New("graph: link references unknown node")
	// ErrDuplicateNode rejects a second node with an existing id.
	ErrDuplicateNode = errors.New("graph: duplicate node id")
)

// Graph owns the canonical node and link collections plus derived
// adjacency and degree indices. It knows nothing about rendering or
// physics; the simulation mutates node positions through it.
type Graph struct {
	nodes    []*Node // insertion order = discovery order
	nodeByID map[string]*Node
	links    []Link
	linkKeys map[string]struct{}

	adjacency map[string]map[string]struct{}
	degree    map[string]int

	rootID string
}

// New allocates an empty Graph.
func New() *Graph {
	return &Graph{
		nodeByID:  make(map[string]*Node),
		linkKeys:  make(map[string]struct{}),
		adjacency: make(map[string]map[string]struct{}),
		degree:    make(map[string]int),
	}
}

// AddNode registers a node. The first node added becomes the query root
// unless SetRoot overrides it.
func (g *Graph) AddNode(n *Node) error {
	if _, ok := g.nodeByID[n.ID]; ok {
		return ErrDuplicateNode
	}
	g.nodes = append(g.nodes, n)
	g.nodeByID[n.ID] = n
	if g.rootID == "" {
		g.rootID = n.ID
	}
	return nil
}

// AddLink validates and registers a link. Self-loops, links to unknown
// nodes, and duplicate (source, target, field) identities are rejected.
func (g *Graph) AddLink(l Link) error {
	if l.SourceID == l.TargetID {
		return ErrSelfLoop
	}
	if _, ok := g.nodeByID[l.SourceID]; !ok {
		return ErrDanglingLink
	}
	if _, ok := g.nodeByID[l.TargetID]; !ok {
		return ErrDanglingLink
	}
	key := l.Key()
	if _, ok := g.linkKeys[key]; ok {
		return nil // identical relationship already present
	}
	if l.Strength <= 0 || l.Strength > 1 {
		l.Strength = 1
	}
	g.linkKeys[key] = struct{}{}
	g.links = append(g.links, l)
	g.connect(l.SourceID, l.TargetID)
	g.connect(l.TargetID, l.SourceID)
	return nil
}

func (g *Graph) connect(from, to string) {
	set, ok := g.adjacency[from]
	if !ok {
		set = make(map[string]struct{})
		g.adjacency[from] = set
	}
	if _, dup := set[to]; !dup {
		set[to] = struct{}{}
		g.degree[from]++
	}
}

// SetRoot marks the query root node (exempt from orphan filtering).
func (g *Graph) SetRoot(id string) {
	if _, ok := g.nodeByID[id]; ok {
		g.rootID = id
	}
}

// Root returns the query root node id ("" when the graph is empty).
func (g *Graph) Root() string { return g.rootID }

// Node returns a node by id (nil if not found).
func (g *Graph) Node(id string) *Node { return g.nodeByID[id] }

// Nodes returns all nodes in discovery order. Callers must not reorder
// the slice.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Links returns all valid links.
func (g *Graph) Links() []Link { return g.links }

// Neighbors returns the ids adjacent to the given node, treating links
// as undirected.
func (g *Graph) Neighbors(id string) map[string]struct{} { return g.adjacency[id] }

// Degree returns the number of distinct neighbors of a node.
func (g *Graph) Degree(id string) int { return g.degree[id] }

// NodeCount returns the number of registered nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// AssignRadii derives each node's visual radius from its degree,
// clamped to [base, max].
func (g *Graph) AssignRadii(base, perDegree, max float64) {
	for _, n := range g.nodes {
		r := base + perDegree*math.Sqrt(float64(g.degree[n.ID]))
		if r > max {
			r = max
		}
		n.Radius = r
	}
}
