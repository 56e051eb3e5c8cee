package session

import (
	"sort"
	"sync"

	"github.com/fhirscope/relgraph/internal/render"
	"github.com/fhirscope/relgraph/internal/selection"
	"github.com/fhirscope/relgraph/internal/viewport"
)

// frameBuffer accumulates draw operations between client polls. It is
// the default Surface when the host does not supply one.
type frameBuffer struct {
	mu  sync.Mutex
	ops []render.Op
}

func (b *frameBuffer) Draw(ops []render.Op) {
	b.mu.Lock()
	b.ops = append(b.ops, ops...)
	b.mu.Unlock()
}

func (b *frameBuffer) drain() []render.Op {
	b.mu.Lock()
	defer b.mu.Unlock()
	ops := b.ops
	b.ops = nil
	return ops
}

// SelectionView is the read model of the selection state machine.
type SelectionView struct {
	State      selection.State `json:"state"`
	Primary    string          `json:"primary,omitempty"`
	Selected   []string        `json:"selected,omitempty"`
	PathSource string          `json:"pathSource,omitempty"`
	PathTarget string          `json:"pathTarget,omitempty"`
	PathCount  int             `json:"pathCount"`
}

// Frame is one snapshot handed to the host: pending draw operations
// plus the current transform and state summary. An empty graph is a
// valid empty state, not an error; Error carries the recoverable
// banner message without blanking the working view.
type Frame struct {
	SessionID string             `json:"sessionId"`
	Transform viewport.Transform `json:"transform"`
	Ops       []render.Op        `json:"ops"`
	Selection SelectionView      `json:"selection"`
	Alpha     float64            `json:"alpha"`
	Settled   bool               `json:"settled"`
	NodeCount int                `json:"nodeCount"`
	LinkCount int                `json:"linkCount"`
	Empty     bool               `json:"empty"`
	Error     string             `json:"error,omitempty"`
}

// Frame drains pending draw operations and snapshots session state.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ops []render.Op
	if fb, ok := s.surface.(*frameBuffer); ok {
		ops = fb.drain()
	}

	selected := make([]string, 0, len(s.sel.Selected()))
	for id := range s.sel.Selected() {
		selected = append(selected, id)
	}
	sort.Strings(selected)
	src, tgt := s.sel.PathEndpoints()

	return Frame{
		SessionID: s.ID,
		Transform: s.vp.Transform(),
		Ops:       ops,
		Selection: SelectionView{
			State:      s.sel.State(),
			Primary:    s.sel.Primary(),
			Selected:   selected,
			PathSource: src,
			PathTarget: tgt,
			PathCount:  len(s.sel.HighlightedPaths()),
		},
		Alpha:     s.sim.Alpha(),
		Settled:   s.sim.Settled(),
		NodeCount: s.g.NodeCount(),
		LinkCount: len(s.g.Links()),
		Empty:     s.g.NodeCount() == 0,
		Error:     s.lastErr,
	}
}
