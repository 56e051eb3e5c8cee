package render

import (
	"github.com/fhirscope/relgraph/internal/filter"
	"github.com/fhirscope/relgraph/internal/graph"
	"github.com/fhirscope/relgraph/internal/metrics"
	"github.com/fhirscope/relgraph/internal/selection"
	"github.com/fhirscope/relgraph/internal/style"
	"github.com/fhirscope/relgraph/internal/viewport"
)

// Bridge translates visible-subgraph snapshots into minimal add/update/
// remove draw operations keyed by node id and link key. Unchanged
// entities emit nothing, which keeps host-side visuals stable across
// frames for drag, hover, and animation continuity.
type Bridge struct {
	cullThreshold int
	prevNodes     map[string]Circle
	prevLinks     map[string]Line
}

// NewBridge creates an empty bridge. Above cullThreshold nodes,
// off-viewport nodes and labels are hidden (not removed) each frame.
func NewBridge(cullThreshold int) *Bridge {
	return &Bridge{
		cullThreshold: cullThreshold,
		prevNodes:     make(map[string]Circle),
		prevLinks:     make(map[string]Line),
	}
}

// Reset forgets all previous state, forcing the next Diff to re-add
// everything. Used after a wholesale graph replacement.
func (b *Bridge) Reset() {
	b.prevNodes = make(map[string]Circle)
	b.prevLinks = make(map[string]Line)
}

// Diff computes the operations turning the previously emitted scene
// into the given visible snapshot.
func (b *Bridge) Diff(res filter.Result, sel *selection.Manager, vp *viewport.Controller) []Op {
	cull := len(res.Nodes) > b.cullThreshold
	var visRect viewport.Bounds
	if cull {
		visRect = vp.VisibleWorldRect()
	}

	hlNodes, hlLinks := highlightSets(sel)

	var ops []Op

	nextNodes := make(map[string]Circle, len(res.Nodes))
	pos := make(map[string]*graph.Node, len(res.Nodes))
	for _, n := range res.Nodes {
		pos[n.ID] = n
		_, highlighted := hlNodes[n.ID]
		hidden := cull && !inRect(visRect, n.X, n.Y, n.Radius)
		c := Circle{
			X:           n.X,
			Y:           n.Y,
			Radius:      n.Radius,
			Color:       style.ColorForType(n.ResourceType),
			Label:       n.Display,
			ShowLabel:   !hidden,
			Selected:    sel.IsSelected(n.ID),
			Highlighted: highlighted,
			Hidden:      hidden,
		}
		nextNodes[n.ID] = c

		prev, existed := b.prevNodes[n.ID]
		switch {
		case !existed:
			ops = append(ops, Op{Kind: OpAddNode, ID: n.ID, Circle: ref(c)})
		case prev != c:
			ops = append(ops, Op{Kind: OpUpdateNode, ID: n.ID, Circle: ref(c)})
		}
	}
	for id := range b.prevNodes {
		if _, ok := nextNodes[id]; !ok {
			ops = append(ops, Op{Kind: OpRemoveNode, ID: id})
		}
	}

	nextLinks := make(map[string]Line, len(res.Links))
	for _, l := range res.Links {
		a, bn := pos[l.SourceID], pos[l.TargetID]
		if a == nil || bn == nil {
			continue
		}
		key := l.Key()
		_, highlighted := hlLinks[key]
		line := Line{
			X1:          a.X,
			Y1:          a.Y,
			X2:          bn.X,
			Y2:          bn.Y,
			Dashed:      l.Kind != graph.KindDirect,
			Highlighted: highlighted,
			Hidden: cull &&
				!inRect(visRect, a.X, a.Y, a.Radius) &&
				!inRect(visRect, bn.X, bn.Y, bn.Radius),
		}
		nextLinks[key] = line

		prev, existed := b.prevLinks[key]
		switch {
		case !existed:
			ops = append(ops, Op{Kind: OpAddLink, ID: key, Line: ref(line)})
		case prev != line:
			ops = append(ops, Op{Kind: OpUpdateLink, ID: key, Line: ref(line)})
		}
	}
	for key := range b.prevLinks {
		if _, ok := nextLinks[key]; !ok {
			ops = append(ops, Op{Kind: OpRemoveLink, ID: key})
		}
	}

	b.prevNodes = nextNodes
	b.prevLinks = nextLinks

	for _, op := range ops {
		metrics.RenderOps.WithLabelValues(string(op.Kind)).Inc()
	}
	return ops
}

// highlightSets flattens the selection manager's highlighted paths into
// node-id and link-key membership sets.
func highlightSets(sel *selection.Manager) (map[string]struct{}, map[string]struct{}) {
	nodes := make(map[string]struct{})
	links := make(map[string]struct{})
	for _, p := range sel.HighlightedPaths() {
		for _, step := range p.Steps {
			nodes[step.FromNodeID] = struct{}{}
			nodes[step.ToNodeID] = struct{}{}
			links[graph.Link{
				SourceID: step.FromNodeID,
				TargetID: step.ToNodeID,
				Field:    step.Field,
			}.Key()] = struct{}{}
		}
	}
	if src, tgt := sel.PathEndpoints(); src != "" {
		nodes[src] = struct{}{}
		if tgt != "" {
			nodes[tgt] = struct{}{}
		}
	}
	return nodes, links
}

func inRect(r viewport.Bounds, x, y, radius float64) bool {
	return x+radius >= r.X && x-radius <= r.X+r.Width &&
		y+radius >= r.Y && y-radius <= r.Y+r.Height
}

func ref[T any](v T) *T { return &v }
