package selection

import "github.com/fhirscope/relgraph/internal/pathfind"

// State is the selection state machine's current phase.
type State string

const (
	Idle              State = "idle"
	SingleSelected    State = "single_selected"
	MultiSelected     State = "multi_selected"
	PickingPathSource State = "picking_path_source"
	PickingPathTarget State = "picking_path_target"
	PathSelected      State = "path_selected"
)

// Mode is the user-facing selection mode.
type Mode string

const (
	ModeSingle      Mode = "single"
	ModeMulti       Mode = "multi"
	ModePathPicking Mode = "path_picking"
)

// Manager tracks single/multi selection and path-highlight state,
// independent of rendering.
type Manager struct {
	state   State
	primary string
	set     map[string]struct{}

	pathSource  string
	pathTarget  string
	highlighted []pathfind.Path
}

// NewManager starts in the Idle state.
func NewManager() *Manager {
	return &Manager{state: Idle, set: make(map[string]struct{})}
}

// State returns the current phase.
func (m *Manager) State() State { return m.state }

// Primary returns the primary selected node id ("" when none).
func (m *Manager) Primary() string { return m.primary }

// Selected returns a copy of the selected id set.
func (m *Manager) Selected() map[string]struct{} {
	out := make(map[string]struct{}, len(m.set))
	for id := range m.set {
		out[id] = struct{}{}
	}
	return out
}

// IsSelected reports whether a node is in the selection set.
func (m *Manager) IsSelected(id string) bool {
	_, ok := m.set[id]
	return ok
}

// PathEndpoints returns the current path-picking endpoints.
func (m *Manager) PathEndpoints() (source, target string) {
	return m.pathSource, m.pathTarget
}

// HighlightedPaths returns the paths currently highlighted.
func (m *Manager) HighlightedPaths() []pathfind.Path { return m.highlighted }

// Select replaces the selection with one node under the given mode.
// ModePathPicking enters the path state machine instead.
func (m *Manager) Select(id string, mode Mode) {
	switch mode {
	case ModeMulti:
		m.set[id] = struct{}{}
		m.primary = id
		m.state = MultiSelected
	case ModePathPicking:
		m.BeginPathPicking()
		m.ClickNode(id)
	default:
		m.set = map[string]struct{}{id: {}}
		m.primary = id
		m.state = SingleSelected
	}
}

// Toggle adds or removes a node from the multi-selection set.
func (m *Manager) Toggle(id string) {
	if _, ok := m.set[id]; ok {
		delete(m.set, id)
		if m.primary == id {
			m.primary = ""
		}
	} else {
		m.set[id] = struct{}{}
		m.primary = id
	}
	switch len(m.set) {
	case 0:
		m.state = Idle
	case 1:
		m.state = SingleSelected
		for id := range m.set {
			m.primary = id
		}
	default:
		m.state = MultiSelected
	}
}

// Clear resets everything back to Idle.
func (m *Manager) Clear() {
	m.state = Idle
	m.primary = ""
	m.set = make(map[string]struct{})
	m.pathSource = ""
	m.pathTarget = ""
	m.highlighted = nil
}

// BeginPathPicking enters path-picking mode awaiting the source click.
func (m *Manager) BeginPathPicking() {
	m.state = PickingPathSource
	m.pathSource = ""
	m.pathTarget = ""
	m.highlighted = nil
}

// ClickNode advances the path-picking state machine. It reports whether
// both endpoints are now set and a path search should run. Clicking the
// already-chosen source again is deliberately a no-op so an accidental
// double click cannot lose the picked source.
func (m *Manager) ClickNode(id string) (runSearch bool) {
	switch m.state {
	case PickingPathSource:
		m.pathSource = id
		m.state = PickingPathTarget
		return false
	case PickingPathTarget:
		if id == m.pathSource {
			return false
		}
		m.pathTarget = id
		m.state = PathSelected
		return true
	case PathSelected:
		// A further click restarts picking with the new node as source.
		m.pathSource = id
		m.pathTarget = ""
		m.highlighted = nil
		m.state = PickingPathTarget
		return false
	default:
		m.Select(id, ModeSingle)
		return false
	}
}

// SetPathEndpoints sets endpoints programmatically (e.g., from a form).
// Both set moves straight to PathSelected; only source set awaits the
// target.
func (m *Manager) SetPathEndpoints(source, target string) {
	m.pathSource = source
	m.pathTarget = target
	switch {
	case source != "" && target != "":
		m.state = PathSelected
	case source != "":
		m.state = PickingPathTarget
		m.highlighted = nil
	default:
		m.BeginPathPicking()
	}
}

// SetHighlightedPaths records path results for rendering emphasis.
func (m *Manager) SetHighlightedPaths(paths []pathfind.Path) {
	m.highlighted = paths
}
