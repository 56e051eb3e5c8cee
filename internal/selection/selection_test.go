package selection_test

import (
	"testing"

	"github.com/fhirscope/relgraph/internal/pathfind"
	"github.com/fhirscope/relgraph/internal/selection"
)

func TestSingleSelect(t *testing.T) {
	m := selection.NewManager()
	m.Select("Patient/1", selection.ModeSingle)

	if m.State() != selection.SingleSelected {
		t.Fatalf("state = %s, want single_selected", m.State())
	}
	if m.Primary() != "Patient/1" {
		t.Fatalf("primary = %q", m.Primary())
	}

	// Selecting another node replaces, not extends.
	m.Select("Observation/1", selection.ModeSingle)
	if m.IsSelected("Patient/1") {
		t.Fatal("previous single selection must be replaced")
	}
}

func TestToggleMultiSelect(t *testing.T) {
	m := selection.NewManager()
	m.Toggle("Patient/1")
	m.Toggle("Observation/1")
	if m.State() != selection.MultiSelected {
		t.Fatalf("state = %s, want multi_selected", m.State())
	}
	if len(m.Selected()) != 2 {
		t.Fatalf("selected = %d, want 2", len(m.Selected()))
	}

	m.Toggle("Observation/1")
	if m.State() != selection.SingleSelected {
		t.Fatalf("state = %s, want single_selected after shrink", m.State())
	}
	m.Toggle("Patient/1")
	if m.State() != selection.Idle {
		t.Fatalf("state = %s, want idle after emptying", m.State())
	}
}

func TestPathPickingTransitions(t *testing.T) {
	m := selection.NewManager()
	m.BeginPathPicking()
	if m.State() != selection.PickingPathSource {
		t.Fatalf("state = %s, want picking_path_source", m.State())
	}

	if run := m.ClickNode("Patient/1"); run {
		t.Fatal("first click must not trigger a search")
	}
	if m.State() != selection.PickingPathTarget {
		t.Fatalf("state = %s, want picking_path_target", m.State())
	}

	// Clicking the source again is a no-op, not a toggle-off.
	if run := m.ClickNode("Patient/1"); run {
		t.Fatal("re-clicking the source must be ignored")
	}
	if src, _ := m.PathEndpoints(); src != "Patient/1" {
		t.Fatalf("source lost: %q", src)
	}
	if m.State() != selection.PickingPathTarget {
		t.Fatalf("state = %s, want picking_path_target unchanged", m.State())
	}

	if run := m.ClickNode("Observation/1"); !run {
		t.Fatal("second distinct click must trigger the search")
	}
	if m.State() != selection.PathSelected {
		t.Fatalf("state = %s, want path_selected", m.State())
	}
	src, tgt := m.PathEndpoints()
	if src != "Patient/1" || tgt != "Observation/1" {
		t.Fatalf("endpoints = %q -> %q", src, tgt)
	}

	// A third click restarts with the clicked node as the new source.
	if run := m.ClickNode("Condition/1"); run {
		t.Fatal("restart click must not trigger a search")
	}
	if m.State() != selection.PickingPathTarget {
		t.Fatalf("state = %s, want picking_path_target after restart", m.State())
	}
	if src, tgt := m.PathEndpoints(); src != "Condition/1" || tgt != "" {
		t.Fatalf("endpoints after restart = %q -> %q", src, tgt)
	}
}

func TestSetPathEndpoints(t *testing.T) {
	m := selection.NewManager()

	m.SetPathEndpoints("Patient/1", "")
	if m.State() != selection.PickingPathTarget {
		t.Fatalf("state = %s, want picking_path_target", m.State())
	}

	m.SetPathEndpoints("Patient/1", "Observation/1")
	if m.State() != selection.PathSelected {
		t.Fatalf("state = %s, want path_selected", m.State())
	}

	m.SetPathEndpoints("", "")
	if m.State() != selection.PickingPathSource {
		t.Fatalf("state = %s, want picking_path_source", m.State())
	}
}

func TestClearResetsEverything(t *testing.T) {
	m := selection.NewManager()
	m.BeginPathPicking()
	m.ClickNode("Patient/1")
	m.ClickNode("Observation/1")
	m.SetHighlightedPaths([]pathfind.Path{{Steps: []pathfind.Step{
		{FromNodeID: "Patient/1", ToNodeID: "Observation/1", Field: "subject"},
	}}})

	m.Clear()
	if m.State() != selection.Idle {
		t.Fatalf("state = %s, want idle", m.State())
	}
	if src, tgt := m.PathEndpoints(); src != "" || tgt != "" {
		t.Fatal("endpoints must be cleared")
	}
	if len(m.HighlightedPaths()) != 0 {
		t.Fatal("highlight must be cleared")
	}
}
