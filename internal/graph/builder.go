package graph

import (
	"errors"
	"log/slog"

	"github.com/fhirscope/relgraph/internal/discovery"
	"github.com/fhirscope/relgraph/internal/metrics"
)

// Build constructs a validated Graph from a discovery response.
// Invalid links (self-loops, dangling endpoints) are dropped and counted,
// never fatal; a single summary line is logged when anything was dropped.
func Build(resp *discovery.Response) (*Graph, error) {
	if resp == nil || resp.Nodes == nil {
		return nil, discovery.Validationf("graph: discovery response has no node list")
	}

	g := New()
	for _, rn := range resp.Nodes {
		if rn.ID == "" {
			metrics.LinksDropped.WithLabelValues("node_missing_id").Inc()
			continue
		}
		n := &Node{
			ID:           rn.ID,
			ResourceType: rn.ResourceType,
			Display:      rn.Display,
			Depth:        rn.Depth,
			LastUpdated:  rn.LastUpdated,
		}
		if err := g.AddNode(n); err != nil {
			// Duplicate ids in a response are a backend quirk, not fatal.
			continue
		}
	}

	rootID := resp.Source.ResourceType + "/" + resp.Source.ResourceID
	g.SetRoot(rootID)

	var selfLoops, dangling int
	for _, rl := range resp.Links {
		l := Link{
			SourceID: rl.Source,
			TargetID: rl.Target,
			Field:    rl.Field,
			Kind:     ParseKind(rl.Kind),
			Strength: rl.Strength,
		}
		switch err := g.AddLink(l); {
		case err == nil:
		case errors.Is(err, ErrSelfLoop):
			selfLoops++
			metrics.LinksDropped.WithLabelValues("self_loop").Inc()
		case errors.Is(err, ErrDanglingLink):
			dangling++
			metrics.LinksDropped.WithLabelValues("dangling").Inc()
		}
	}
	if selfLoops > 0 || dangling > 0 {
		slog.Warn("dropped invalid discovery links",
			"root", rootID, "self_loops", selfLoops, "dangling", dangling)
	}

	return g, nil
}
