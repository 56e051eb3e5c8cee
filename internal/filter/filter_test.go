package filter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhirscope/relgraph/internal/filter"
	"github.com/fhirscope/relgraph/internal/graph"
)

func patientObservationGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.AddNode(&graph.Node{ID: "Patient/1", ResourceType: "Patient", Depth: 0}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "Observation/1", ResourceType: "Observation", Depth: 1}))
	require.NoError(t, g.AddLink(graph.Link{SourceID: "Patient/1", TargetID: "Observation/1", Field: "subject"}))
	return g
}

func nodeIDs(res filter.Result) []string {
	ids := make([]string, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestApply(t *testing.T) {
	t.Run("default spec returns full graph", func(t *testing.T) {
		g := patientObservationGraph(t)
		res := filter.Apply(g, filter.Default())
		assert.Len(t, res.Nodes, 2)
		assert.Len(t, res.Links, 1)
	})

	t.Run("orphan removal exempts the query root", func(t *testing.T) {
		g := patientObservationGraph(t)
		spec := filter.Spec{
			IncludedResourceTypes: map[string]struct{}{"Patient": {}},
			ShowOrphans:           false,
		}
		res := filter.Apply(g, spec)
		assert.Equal(t, []string{"Patient/1"}, nodeIDs(res))
		assert.Empty(t, res.Links)
	})

	t.Run("orphans kept when showOrphans is true", func(t *testing.T) {
		g := patientObservationGraph(t)
		spec := filter.Spec{
			IncludedRelationshipFields: map[string]struct{}{"performer": {}},
			ShowOrphans:                true,
		}
		res := filter.Apply(g, spec)
		assert.Len(t, res.Nodes, 2, "field filter drops the link but not the nodes")
		assert.Empty(t, res.Links)
	})

	t.Run("type exclusion drops incident links", func(t *testing.T) {
		g := patientObservationGraph(t)
		spec := filter.Spec{
			IncludedResourceTypes: map[string]struct{}{"Patient": {}},
			ShowOrphans:           true,
		}
		res := filter.Apply(g, spec)
		assert.Equal(t, []string{"Patient/1"}, nodeIDs(res))
		assert.Empty(t, res.Links, "links to hidden nodes cannot remain")
	})

	t.Run("depth cut", func(t *testing.T) {
		g := patientObservationGraph(t)
		require.NoError(t, g.AddNode(&graph.Node{ID: "DiagnosticReport/1", ResourceType: "DiagnosticReport", Depth: 2}))
		require.NoError(t, g.AddLink(graph.Link{SourceID: "Observation/1", TargetID: "DiagnosticReport/1", Field: "result"}))

		res := filter.Apply(g, filter.Spec{ShowOrphans: true, MaxDepth: 1})
		assert.ElementsMatch(t, []string{"Patient/1", "Observation/1"}, nodeIDs(res))
		assert.Len(t, res.Links, 1)
	})

	t.Run("date range keeps undated nodes", func(t *testing.T) {
		g := graph.New()
		old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, g.AddNode(&graph.Node{ID: "Patient/1", ResourceType: "Patient", LastUpdated: old}))
		require.NoError(t, g.AddNode(&graph.Node{ID: "Observation/1", ResourceType: "Observation"}))

		spec := filter.Spec{
			ShowOrphans: true,
			DateRange: &filter.DateRange{
				Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		}
		res := filter.Apply(g, spec)
		assert.Equal(t, []string{"Observation/1"}, nodeIDs(res))
	})
}

func TestApplyIsIdempotent(t *testing.T) {
	g := patientObservationGraph(t)
	require.NoError(t, g.AddNode(&graph.Node{ID: "Condition/1", ResourceType: "Condition", Depth: 1}))
	require.NoError(t, g.AddLink(graph.Link{SourceID: "Patient/1", TargetID: "Condition/1", Field: "subject"}))

	spec := filter.Spec{
		IncludedResourceTypes: map[string]struct{}{"Patient": {}, "Condition": {}},
		ShowOrphans:           false,
	}

	first := filter.Apply(g, spec)
	second := filter.Apply(g, spec)
	assert.ElementsMatch(t, nodeIDs(first), nodeIDs(second))
	assert.Equal(t, len(first.Links), len(second.Links))
}

func TestApplyDoesNotMutateGraph(t *testing.T) {
	g := patientObservationGraph(t)
	spec := filter.Spec{IncludedResourceTypes: map[string]struct{}{"Patient": {}}}

	filter.Apply(g, spec)
	assert.Equal(t, 2, g.NodeCount(), "canonical graph must stay intact")
	assert.Len(t, g.Links(), 1)
}
