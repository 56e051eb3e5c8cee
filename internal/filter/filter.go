package filter

import (
	"time"

	"github.com/fhirscope/relgraph/internal/graph"
)

// DateRange bounds a node's last-updated timestamp (inclusive).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Spec describes which subset of the canonical graph is visible.
// Zero-valued fields mean "no restriction"; the zero Spec passes the
// whole graph through unchanged.
type Spec struct {
	IncludedResourceTypes      map[string]struct{} `json:"-"`
	IncludedRelationshipFields map[string]struct{} `json:"-"`
	DateRange                  *DateRange          `json:"dateRange,omitempty"`
	ShowOrphans                bool                `json:"showOrphans"`
	MaxDepth                   int                 `json:"maxDepth"` // 0 = unlimited
}

// Default returns the spec that shows everything.
func Default() Spec {
	return Spec{ShowOrphans: true}
}

// Result is the visible subgraph derived from one Apply call.
type Result struct {
	Nodes []*graph.Node
	Links []graph.Link
}

// Apply derives the visible subgraph. It is pure and idempotent; the
// canonical graph is never mutated. Rule order: resource-type and date
// inclusion first, then relationship-field inclusion on the surviving
// links, then the depth cut, then orphan removal (the query root is
// exempt even when all its neighbors are filtered out).
func Apply(g *graph.Graph, spec Spec) Result {
	visible := make(map[string]struct{}, g.NodeCount())
	for _, n := range g.Nodes() {
		if !includeType(spec, n.ResourceType) {
			continue
		}
		if !includeDate(spec, n.LastUpdated) {
			continue
		}
		if spec.MaxDepth > 0 && n.Depth > spec.MaxDepth {
			continue
		}
		visible[n.ID] = struct{}{}
	}

	var links []graph.Link
	incident := make(map[string]int)
	for _, l := range g.Links() {
		if _, ok := visible[l.SourceID]; !ok {
			continue
		}
		if _, ok := visible[l.TargetID]; !ok {
			continue
		}
		if !includeField(spec, l.Field) {
			continue
		}
		links = append(links, l)
		incident[l.SourceID]++
		incident[l.TargetID]++
	}

	root := g.Root()
	var nodes []*graph.Node
	for _, n := range g.Nodes() {
		if _, ok := visible[n.ID]; !ok {
			continue
		}
		if !spec.ShowOrphans && incident[n.ID] == 0 && n.ID != root {
			continue
		}
		nodes = append(nodes, n)
	}

	return Result{Nodes: nodes, Links: links}
}

func includeType(spec Spec, resourceType string) bool {
	if len(spec.IncludedResourceTypes) == 0 {
		return true
	}
	_, ok := spec.IncludedResourceTypes[resourceType]
	return ok
}

func includeField(spec Spec, field string) bool {
	if len(spec.IncludedRelationshipFields) == 0 {
		return true
	}
	_, ok := spec.IncludedRelationshipFields[field]
	return ok
}

// includeDate keeps nodes with unknown timestamps; a missing
// meta.lastUpdated is not grounds for hiding a resource.
func includeDate(spec Spec, t time.Time) bool {
	if spec.DateRange == nil || t.IsZero() {
		return true
	}
	if !spec.DateRange.Start.IsZero() && t.Before(spec.DateRange.Start) {
		return false
	}
	if !spec.DateRange.End.IsZero() && t.After(spec.DateRange.End) {
		return false
	}
	return true
}
