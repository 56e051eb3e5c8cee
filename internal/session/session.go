package session

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/discovery"
	"github.com/fhirscope/relgraph/internal/filter"
	"github.com/fhirscope/relgraph/internal/graph"
	"github.com/fhirscope/relgraph/internal/layout"
	"github.com/fhirscope/relgraph/internal/lifecycle"
	"github.com/fhirscope/relgraph/internal/metrics"
	"github.com/fhirscope/relgraph/internal/pathfind"
	"github.com/fhirscope/relgraph/internal/render"
	"github.com/fhirscope/relgraph/internal/selection"
	"github.com/fhirscope/relgraph/internal/sim"
	"github.com/fhirscope/relgraph/internal/viewport"
)

// Session is one live graph-exploration session. It exclusively owns
// its GraphModel, simulation, viewport transform, and selection state;
// HTTP handlers and async continuations funnel every mutation through
// the session mutex, and continuations check the active flag so a
// closed session is never mutated by a late response.
type Session struct {
	ID string

	mu     sync.Mutex
	active bool
	cfg    *config.EngineConfig

	g        *graph.Graph
	sim      *sim.Simulation
	strategy layout.Strategy
	vp       *viewport.Controller
	sel      *selection.Manager
	spec     filter.Spec
	bridge   *render.Bridge

	requests *lifecycle.Manager
	search   *lifecycle.Debouncer

	surface  render.Surface
	dirty    bool
	lastErr  string
	lastSeen time.Time

	stopTick  func()
	closeOnce sync.Once
}

// Open creates and starts a session over the given viewport. The
// surface receives incremental draw operations each frame; pass nil to
// use an internal frame buffer drained by Frame().
func Open(cfg *config.EngineConfig, client discovery.Client, bounds viewport.Bounds, surface render.Surface) *Session {
	s := &Session{
		ID:       uuid.New().String(),
		active:   true,
		cfg:      cfg,
		g:        graph.New(),
		sim:      sim.New(cfg.Simulation, bounds),
		strategy: &layout.Force{},
		vp:       viewport.NewController(bounds, cfg.Viewport.MinScale, cfg.Viewport.MaxScale),
		sel:      selection.NewManager(),
		spec:     filter.Default(),
		bridge:   render.NewBridge(cfg.Render.CullThreshold),
		requests: lifecycle.NewManager(client, cfg.Lifecycle),
		search:   lifecycle.NewDebouncer(time.Duration(cfg.Lifecycle.DebounceMs) * time.Millisecond),
		lastSeen: time.Now(),
	}
	if surface == nil {
		surface = &frameBuffer{}
	}
	s.surface = surface
	s.startTicker()
	metrics.ActiveSessions.Inc()
	return s
}

// startTicker drives the bounded-rate step/diff loop. The ticker rate
// caps simulation CPU regardless of how often clients poll.
func (s *Session) startTicker() {
	interval := time.Second / time.Duration(s.cfg.Simulation.TickRateHz)
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	s.stopTick = func() {
		ticker.Stop()
		close(done)
	}
	go func() {
		for {
			select {
			case <-ticker.C:
				s.tick(interval.Seconds())
			case <-done:
				return
			}
		}
	}()
}

// tick is the per-frame suspension point: one simulation step, then an
// incremental diff when anything moved or an intent dirtied the scene.
func (s *Session) tick(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	stepped := s.sim.Running()
	s.sim.Step(dt)
	if !stepped && !s.dirty {
		return
	}
	s.dirty = false
	res := filter.Apply(s.g, s.spec)
	ops := s.bridge.Diff(res, s.sel, s.vp)
	if len(ops) > 0 {
		s.surface.Draw(ops)
	}
}

// Discover starts relationship discovery for one resource and swaps the
// graph in when the response arrives. A failed discovery leaves the
// previous graph displayed and records a recoverable error message.
func (s *Session) Discover(resourceType, resourceID string, depth int) bool {
	s.touch()
	opts := discovery.Options{Depth: depth, IncludeCounts: true}
	return s.requests.Discover(resourceType, resourceID, opts, func(resp *discovery.Response, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.active {
			return
		}
		if err != nil {
			s.lastErr = err.Error()
			slog.Warn("discovery failed", "session", s.ID, "resource", resourceType+"/"+resourceID, "err", err)
			return
		}
		g, err := graph.Build(resp)
		if err != nil {
			s.lastErr = err.Error()
			return
		}
		nr := s.cfg.NodeRadius
		g.AssignRadii(nr.Base, nr.PerDegree, nr.Max)

		s.g = g
		s.lastErr = ""
		s.sel.Clear()
		s.spec = filter.Default()
		s.bridge.Reset()
		s.strategy.Apply(s.g, s.vp.Bounds(), s.g.Root())
		s.sim.SetGraph(s.g)
		s.fitLocked()
		s.dirty = true
	})
}

// SetLayout switches the position-assignment strategy without touching
// the graph, then reheats so the new constraints take effect.
func (s *Session) SetLayout(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.strategy = layout.ForName(name, s.cfg.Layout)
	s.strategy.Apply(s.g, s.vp.Bounds(), s.g.Root())
	s.sim.Reheat(s.cfg.Simulation.ReheatAlpha)
	s.dirty = true
}

// SetFilter installs a new visibility spec; only the visible subset
// changes, never the canonical graph.
func (s *Session) SetFilter(spec filter.Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.spec = spec
	s.dirty = true
}

// ClickNode feeds a node click through the selection state machine,
// running a local path search when both endpoints become set.
func (s *Session) ClickNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if s.g.Node(id) == nil {
		return
	}
	if s.sel.ClickNode(id) {
		s.findPathsLocked()
	}
	s.dirty = true
}

// SelectNode replaces the selection under the given mode.
func (s *Session) SelectNode(id string, mode selection.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.sel.Select(id, mode)
	s.dirty = true
}

// ToggleNode flips a node's multi-selection membership.
func (s *Session) ToggleNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.sel.Toggle(id)
	s.dirty = true
}

// ClearSelection resets selection and path-highlight state.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.sel.Clear()
	s.dirty = true
}

// BeginPathPicking enters the path-picking selection mode.
func (s *Session) BeginPathPicking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.sel.BeginPathPicking()
	s.dirty = true
}

// FindPaths runs a local bounded-depth path search between two nodes
// and highlights the results.
func (s *Session) FindPaths(sourceID, targetID string, maxDepth int) ([]pathfind.Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if maxDepth <= 0 {
		maxDepth = s.cfg.Pathfind.DefaultMaxDepth
	}
	if maxDepth > s.cfg.Pathfind.MaxDepthLimit {
		maxDepth = s.cfg.Pathfind.MaxDepthLimit
	}
	paths, err := pathfind.FindPaths(s.g, sourceID, targetID, maxDepth)
	if err != nil {
		return nil, err
	}
	s.sel.SetPathEndpoints(sourceID, targetID)
	s.sel.SetHighlightedPaths(paths)
	s.dirty = true
	return paths, nil
}

func (s *Session) findPathsLocked() {
	src, tgt := s.sel.PathEndpoints()
	paths, err := pathfind.FindPaths(s.g, src, tgt, s.cfg.Pathfind.DefaultMaxDepth)
	if err != nil {
		s.lastErr = err.Error()
		return
	}
	s.sel.SetHighlightedPaths(paths)
}

// DragStart pins a node for the duration of a drag and reheats so the
// rest of the layout reacts.
func (s *Session) DragStart(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if n := s.g.Node(id); n != nil {
		n.Pin(n.X, n.Y)
		s.sim.Reheat(s.cfg.Simulation.ReheatAlpha)
	}
}

// DragMove updates the dragged node's pinned position (world coords).
func (s *Session) DragMove(id string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.Node(id); n != nil {
		n.Pin(x, y)
		s.dirty = true
	}
}

// DragEnd releases the node back to the simulation.
func (s *Session) DragEnd(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.Node(id); n != nil {
		n.Unpin()
		s.sim.Reheat(s.cfg.Simulation.ReheatAlpha)
	}
}

// Zoom multiplies the view scale, clamped to the configured range.
func (s *Session) Zoom(factor float64) viewport.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.dirty = true
	return s.vp.ZoomBy(factor)
}

// Pan shifts the view by a screen-space delta.
func (s *Session) Pan(dx, dy float64) viewport.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.dirty = true
	return s.vp.PanBy(dx, dy)
}

// Fit frames every visible node inside the viewport.
func (s *Session) Fit() viewport.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.dirty = true
	return s.fitLocked()
}

func (s *Session) fitLocked() viewport.Transform {
	res := filter.Apply(s.g, s.spec)
	circles := make([]viewport.NodeCircle, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		circles = append(circles, viewport.NodeCircle{X: n.X, Y: n.Y, Radius: n.Radius})
	}
	return s.vp.FitToBounds(circles, s.cfg.Viewport.FitPadding)
}

// ResetView restores the identity transform.
func (s *Session) ResetView() viewport.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.dirty = true
	return s.vp.Reset()
}

// Resize updates the screen viewport and the simulation's boundary box.
func (s *Session) Resize(b viewport.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.vp.Resize(b)
	s.sim.SetBounds(b)
	s.dirty = true
}

// Search coalesces free-text input and, after the quiet period, selects
// and centers the first node whose display or id matches.
func (s *Session) Search(query string) {
	s.touch()
	s.search.Trigger(query, func(q string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.active {
			return
		}
		q = strings.ToLower(strings.TrimSpace(q))
		if q == "" {
			return
		}
		for _, n := range s.g.Nodes() {
			if strings.Contains(strings.ToLower(n.Display), q) ||
				strings.Contains(strings.ToLower(n.ID), q) {
				s.sel.Select(n.ID, selection.ModeSingle)
				s.centerOnLocked(n)
				s.dirty = true
				return
			}
		}
	})
}

// centerOnLocked pans so the node sits at the viewport center at the
// current scale.
func (s *Session) centerOnLocked(n *graph.Node) {
	t := s.vp.Transform()
	center := s.vp.Bounds().Center()
	s.vp.PanBy(
		center.X-(n.X*t.Scale+t.TranslateX),
		center.Y-(n.Y*t.Scale+t.TranslateY),
	)
}

// ApplyTuning installs hot-reloaded engine tuning and reheats so the
// new force parameters take visible effect.
func (s *Session) ApplyTuning(cfg *config.EngineConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.cfg = cfg
	s.sim.SetConfig(cfg.Simulation)
	s.dirty = true
}

// IdleSince reports the last time an intent touched this session.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) touchLocked() { s.lastSeen = time.Now() }

// Close tears the session down: in-flight requests cancelled, the
// simulation stopped, timers cleared. Closing twice is a no-op.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.active = false
		s.sim.Stop()
		s.mu.Unlock()
		s.stopTick()
		s.search.Stop()
		s.requests.Close()
		metrics.ActiveSessions.Dec()
	})
}
