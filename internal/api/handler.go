package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/discovery"
	"github.com/fhirscope/relgraph/internal/filter"
	"github.com/fhirscope/relgraph/internal/selection"
	"github.com/fhirscope/relgraph/internal/session"
	"github.com/fhirscope/relgraph/internal/viewport"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	registry *session.Registry
	loader   *config.Loader
	client   discovery.Client
	mux      *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(registry *session.Registry, loader *config.Loader, client discovery.Client) http.Handler {
	h := &Handler{registry: registry, loader: loader, client: client, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/sessions", h.openSession)
	h.mux.HandleFunc("DELETE /v1/sessions/{id}", h.closeSession)
	h.mux.HandleFunc("POST /v1/sessions/{id}/discover", h.discover)
	h.mux.HandleFunc("GET /v1/sessions/{id}/frame", h.frame)
	h.mux.HandleFunc("POST /v1/sessions/{id}/layout", h.setLayout)
	h.mux.HandleFunc("POST /v1/sessions/{id}/filter", h.setFilter)
	h.mux.HandleFunc("POST /v1/sessions/{id}/paths", h.findPaths)
	h.mux.HandleFunc("POST /v1/sessions/{id}/click", h.click)
	h.mux.HandleFunc("POST /v1/sessions/{id}/select", h.selectNode)
	h.mux.HandleFunc("POST /v1/sessions/{id}/drag", h.drag)
	h.mux.HandleFunc("POST /v1/sessions/{id}/viewport", h.viewportOp)
	h.mux.HandleFunc("POST /v1/sessions/{id}/search", h.searchSession)
	h.mux.HandleFunc("GET /v1/statistics", h.statistics)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

func (h *Handler) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	s := h.registry.Get(r.PathValue("id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "unknown session")
	}
	return s
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return false
	}
	return true
}

// POST /v1/sessions — open a new exploration session over a viewport.
func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, http.StatusBadRequest, "viewport width and height must be positive")
		return
	}
	s := h.registry.Open(viewport.Bounds{Width: req.Width, Height: req.Height})
	if s == nil {
		writeError(w, http.StatusServiceUnavailable, "server shutting down")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": s.ID})
}

// DELETE /v1/sessions/{id} — idempotent teardown.
func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	h.registry.Remove(r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]bool{"closed": true})
}

// POST /v1/sessions/{id}/discover — start relationship discovery.
func (h *Handler) discover(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(w, r)
	if s == nil {
		return
	}
	var req struct {
		ResourceType string `json:"resourceType"`
		ResourceID   string `json:"resourceId"`
		Depth        int    `json:"depth"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.ResourceType == "" || req.ResourceID == "" {
		writeError(w, http.StatusBadRequest, "resourceType and resourceId are required")
		return
	}
	started := s.Discover(req.ResourceType, req.ResourceID, req.Depth)
	writeJSON(w, http.StatusAccepted, map[string]bool{"started": started})
}

// GET /v1/sessions/{id}/frame — drain pending draw ops and state.
func (h *Handler) frame(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(w, r)
	if s == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.Frame())
}

// POST /v1/sessions/{id}/layout — switch the layout strategy.
func (h *Handler) setLayout(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(w, r)
	if s == nil {
		return
	}
	var req struct {
		Strategy string `json:"strategy"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.SetLayout(req.Strategy)
	writeJSON(w, http.StatusOK, map[string]string{"strategy": req.Strategy})
}

type filterRequest struct {
	ResourceTypes      []string          `json:"resourceTypes"`
	RelationshipFields []string          `json:"relationshipFields"`
	DateRange          *filter.DateRange `json:"dateRange"`
	ShowOrphans        *bool             `json:"showOrphans"`
	MaxDepth           int               `json:"maxDepth"`
}

// POST /v1/sessions/{id}/filter — derive a new visible subgraph.
func (h *Handler) setFilter(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(w, r)
	if s == nil {
		return
	}
	var req filterRequest
	if !decode(w, r, &req) {
		return
	}
	spec := filter.Spec{
		DateRange:   req.DateRange,
		ShowOrphans: true,
		MaxDepth:    req.MaxDepth,
	}
	if req.ShowOrphans != nil {
		spec.ShowOrphans = *req.ShowOrphans
	}
	if len(req.ResourceTypes) > 0 {
		spec.IncludedResourceTypes = toSet(req.ResourceTypes)
	}
	if len(req.RelationshipFields) > 0 {
		spec.IncludedRelationshipFields = toSet(req.RelationshipFields)
	}
	s.SetFilter(spec)
	writeJSON(w, http.StatusOK, map[string]bool{"applied": true})
}

// POST /v1/sessions/{id}/paths — local bounded-depth path discovery.
func (h *Handler) findPaths(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(w, r)
	if s == nil {
		return
	}
	var req struct {
		SourceID string `json:"sourceId"`
		TargetID string `json:"targetId"`
		MaxDepth int    `json:"maxDepth"`
	}
	if !decode(w, r, &req) {
		return
	}
	paths, err := s.FindPaths(req.SourceID, req.TargetID, req.MaxDepth)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pathCount": len(paths),
		"paths":     paths,
	})
}

// POST /v1/sessions/{id}/click — feed a node click to the selection
// state machine.
func (h *Handler) click(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(w, r)
	if s == nil {
		return
	}
	var req struct {
		NodeID string `json:"nodeId"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.ClickNode(req.NodeID)
	writeJSON(w, http.StatusOK, s.Frame().Selection)
}

// POST /v1/sessions/{id}/select — explicit selection operations.
func (h *Handler) selectNode(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(w, r)
	if s == nil {
		return
	}
	var req struct {
		NodeID string `json:"nodeId"`
		Mode   string `json:"mode"` // single, multi, path_picking, toggle, clear
	}
	if !decode(w, r, &req) {
		return
	}
	switch req.Mode {
	case "clear":
		s.ClearSelection()
	case "toggle":
		s.ToggleNode(req.NodeID)
	case "path_picking":
		s.BeginPathPicking()
	case "multi":
		s.SelectNode(req.NodeID, selection.ModeMulti)
	default:
		s.SelectNode(req.NodeID, selection.ModeSingle)
	}
	writeJSON(w, http.StatusOK, s.Frame().Selection)
}

// POST /v1/sessions/{id}/drag — drag lifecycle in world coordinates.
func (h *Handler) drag(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(w, r)
	if s == nil {
		return
	}
	var req struct {
		NodeID string  `json:"nodeId"`
		Phase  string  `json:"phase"` // start, move, end
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
	}
	if !decode(w, r, &req) {
		return
	}
	switch req.Phase {
	case "start":
		s.DragStart(req.NodeID)
	case "move":
		s.DragMove(req.NodeID, req.X, req.Y)
	case "end":
		s.DragEnd(req.NodeID)
	default:
		writeError(w, http.StatusBadRequest, "phase must be start, move, or end")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// POST /v1/sessions/{id}/viewport — zoom/pan/fit/reset/resize.
func (h *Handler) viewportOp(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(w, r)
	if s == nil {
		return
	}
	var req struct {
		Op     string  `json:"op"`
		Factor float64 `json:"factor"`
		DX     float64 `json:"dx"`
		DY     float64 `json:"dy"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if !decode(w, r, &req) {
		return
	}
	var t viewport.Transform
	switch req.Op {
	case "zoom":
		t = s.Zoom(req.Factor)
	case "pan":
		t = s.Pan(req.DX, req.DY)
	case "fit":
		t = s.Fit()
	case "reset":
		t = s.ResetView()
	case "resize":
		s.Resize(viewport.Bounds{Width: req.Width, Height: req.Height})
		t = s.Frame().Transform
	default:
		writeError(w, http.StatusBadRequest, "op must be zoom, pan, fit, reset, or resize")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// POST /v1/sessions/{id}/search — debounced search-and-focus.
func (h *Handler) searchSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessionFor(w, r)
	if s == nil {
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.Search(req.Query)
	writeJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// GET /v1/statistics — display-only relationship statistics.
func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.client.GetStatistics(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// POST /v1/config/reload — re-read engine tuning and push it to all
// live sessions.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.registry.ApplyTuning(cfg)
	writeJSON(w, http.StatusOK, map[string]bool{"reloaded": true})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — ready once the registry is serving.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"sessions": h.registry.Count(),
	})
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
