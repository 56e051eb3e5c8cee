package graph_test

import (
	"errors"
	"testing"

	"github.com/fhirscope/relgraph/internal/discovery"
	"github.com/fhirscope/relgraph/internal/graph"
)

func newNode(id string, depth int) *graph.Node {
	return &graph.Node{ID: id, ResourceType: "Patient", Depth: depth}
}

func TestAddLinkValidation(t *testing.T) {
	tests := []struct {
		name    string
		link    graph.Link
		wantErr error
	}{
		{"valid", graph.Link{SourceID: "Patient/1", TargetID: "Observation/1", Field: "subject"}, nil},
		{"self loop", graph.Link{SourceID: "Patient/1", TargetID: "Patient/1", Field: "self"}, graph.ErrSelfLoop},
		{"dangling source", graph.Link{SourceID: "Patient/99", TargetID: "Observation/1", Field: "subject"}, graph.ErrDanglingLink},
		{"dangling target", graph.Link{SourceID: "Patient/1", TargetID: "Observation/99", Field: "subject"}, graph.ErrDanglingLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			if err := g.AddNode(newNode("Patient/1", 0)); err != nil {
				t.Fatalf("AddNode: %v", err)
			}
			if err := g.AddNode(newNode("Observation/1", 1)); err != nil {
				t.Fatalf("AddNode: %v", err)
			}
			err := g.AddLink(tt.link)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddLink error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDuplicateLinksCollapse(t *testing.T) {
	g := graph.New()
	g.AddNode(newNode("Patient/1", 0))
	g.AddNode(newNode("Observation/1", 1))

	// Same unordered pair + field in both directions is one link.
	if err := g.AddLink(graph.Link{SourceID: "Patient/1", TargetID: "Observation/1", Field: "subject"}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if err := g.AddLink(graph.Link{SourceID: "Observation/1", TargetID: "Patient/1", Field: "subject"}); err != nil {
		t.Fatalf("AddLink reversed: %v", err)
	}
	if got := len(g.Links()); got != 1 {
		t.Fatalf("links = %d, want 1", got)
	}
	if got := g.Degree("Patient/1"); got != 1 {
		t.Fatalf("degree = %d, want 1", got)
	}
}

func TestBuildDropsInvalidLinks(t *testing.T) {
	resp := &discovery.Response{
		Source: discovery.Source{ResourceType: "Patient", ResourceID: "1"},
		Nodes: []discovery.RawNode{
			{ID: "Patient/1", ResourceType: "Patient", Depth: 0},
			{ID: "Observation/1", ResourceType: "Observation", Depth: 1},
		},
		Links: []discovery.RawLink{
			{Source: "Patient/1", Target: "Observation/1", Field: "subject", Kind: "direct"},
			{Source: "Patient/1", Target: "Patient/1", Field: "self"},
			{Source: "Patient/1", Target: "Condition/404", Field: "condition"},
		},
	}

	g, err := graph.Build(resp)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(g.Links()); got != 1 {
		t.Fatalf("links = %d, want 1 (invalid ones dropped)", got)
	}
	// Link validity invariant: every retained link references two
	// distinct existing nodes.
	for _, l := range g.Links() {
		if l.SourceID == l.TargetID {
			t.Fatalf("retained self-loop %v", l)
		}
		if g.Node(l.SourceID) == nil || g.Node(l.TargetID) == nil {
			t.Fatalf("retained dangling link %v", l)
		}
	}
	if g.Root() != "Patient/1" {
		t.Fatalf("root = %q, want Patient/1", g.Root())
	}
}

func TestBuildRejectsMissingNodeList(t *testing.T) {
	if _, err := graph.Build(&discovery.Response{}); err == nil {
		t.Fatal("expected validation error for missing node list")
	}
	if _, err := graph.Build(nil); err == nil {
		t.Fatal("expected validation error for nil response")
	}
}

func TestAssignRadii(t *testing.T) {
	g := graph.New()
	g.AddNode(newNode("Patient/1", 0))
	g.AddNode(newNode("Observation/1", 1))
	g.AddNode(newNode("Observation/2", 1))
	g.AddLink(graph.Link{SourceID: "Patient/1", TargetID: "Observation/1", Field: "subject"})
	g.AddLink(graph.Link{SourceID: "Patient/1", TargetID: "Observation/2", Field: "subject"})

	g.AssignRadii(12, 3, 16)

	hub := g.Node("Patient/1")
	leaf := g.Node("Observation/1")
	if hub.Radius <= leaf.Radius {
		t.Fatalf("hub radius %v should exceed leaf radius %v", hub.Radius, leaf.Radius)
	}
	if hub.Radius > 16 {
		t.Fatalf("radius %v exceeds clamp", hub.Radius)
	}
}

func TestLinkKeyIsUnordered(t *testing.T) {
	a := graph.Link{SourceID: "Patient/1", TargetID: "Observation/1", Field: "subject"}
	b := graph.Link{SourceID: "Observation/1", TargetID: "Patient/1", Field: "subject"}
	if a.Key() != b.Key() {
		t.Fatalf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	c := graph.Link{SourceID: "Patient/1", TargetID: "Observation/1", Field: "performer"}
	if a.Key() == c.Key() {
		t.Fatal("different fields must yield different keys")
	}
}
