package session

import (
	"sync"
	"time"

	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/discovery"
	"github.com/fhirscope/relgraph/internal/viewport"
)

// Registry tracks live sessions by id and expires idle ones.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      *config.EngineConfig
	client   discovery.Client
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg *config.EngineConfig, client discovery.Client) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		client:   client,
	}
}

// Open creates, registers, and returns a new session.
func (r *Registry) Open(bounds viewport.Bounds) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	s := Open(r.cfg, r.client, bounds, nil)
	r.sessions[s.ID] = s
	return s
}

// Get returns a session by id (nil when unknown).
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// Remove closes and forgets one session.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ApplyTuning pushes hot-reloaded engine tuning to every live session.
func (r *Registry) ApplyTuning(cfg *config.EngineConfig) {
	r.mu.Lock()
	r.cfg = cfg
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mu.Unlock()
	for _, s := range live {
		s.ApplyTuning(cfg)
	}
}

// ExpireIdle closes sessions idle longer than maxIdle and returns how
// many were reaped.
func (r *Registry) ExpireIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.IdleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// Close tears down every session. Closing twice is a no-op.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range live {
		s.Close()
	}
}
