package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/discovery"
	"github.com/fhirscope/relgraph/internal/metrics"
)

const statisticsKey = "statistics"

// Manager wraps the external discovery collaborator with the request
// lifecycle rules: at-most-one in-flight request per logical key,
// cancellation of the outstanding discovery when a different resource
// is requested, bounded exponential-backoff retry for transport errors,
// and idempotent teardown. A cancelled request's late resolution never
// reaches its callback.
type Manager struct {
	client discovery.Client
	cfg    config.LifecycleConf

	mu        sync.Mutex
	inflight  map[string]*request
	discovery *request // the single outstanding graph-discovery request
	closed    bool
	wg        sync.WaitGroup
}

type request struct {
	key    string
	cancel context.CancelFunc
}

// NewManager wraps client with the configured lifecycle rules.
func NewManager(client discovery.Client, cfg config.LifecycleConf) *Manager {
	return &Manager{
		client:   client,
		cfg:      cfg,
		inflight: make(map[string]*request),
	}
}

// Discover starts relationship discovery for one resource. The logical
// key is "<resourceType>/<resourceId>": a second request for the same
// key while one is outstanding is suppressed (not queued) and Discover
// returns false. A request for a different resource cancels the
// outstanding discovery first. onDone runs with the result only if the
// request is still current when it resolves.
func (m *Manager) Discover(resourceType, resourceID string, opts discovery.Options, onDone func(*discovery.Response, error)) bool {
	key := resourceType + "/" + resourceID

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	if _, dup := m.inflight[key]; dup {
		m.mu.Unlock()
		metrics.DiscoveryRequests.WithLabelValues("deduped").Inc()
		return false
	}
	if m.discovery != nil {
		m.dropLocked(m.discovery)
		metrics.DiscoveryRequests.WithLabelValues("cancelled").Inc()
	}
	ctx, cancel := context.WithCancel(context.Background())
	req := &request{key: key, cancel: cancel}
	m.inflight[key] = req
	m.discovery = req
	m.mu.Unlock()

	metrics.DiscoveryRequests.WithLabelValues("started").Inc()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		start := time.Now()
		resp, err := m.withRetry(ctx, func() (*discovery.Response, error) {
			return m.client.DiscoverRelationships(ctx, resourceType, resourceID, opts)
		})
		metrics.DiscoveryDuration.Observe(float64(time.Since(start).Milliseconds()))
		m.finish(req, func() { onDone(resp, err) })
		if err != nil {
			metrics.DiscoveryRequests.WithLabelValues("failed").Inc()
		} else {
			metrics.DiscoveryRequests.WithLabelValues("succeeded").Inc()
		}
	}()
	return true
}

// FindPaths delegates path discovery to the backend, deduplicated per
// endpoint pair. It does not cancel graph discovery.
func (m *Manager) FindPaths(sourceType, sourceID, targetType, targetID string, maxDepth int, onDone func(*discovery.PathsResponse, error)) bool {
	key := "paths:" + sourceType + "/" + sourceID + "->" + targetType + "/" + targetID
	ctx, req, ok := m.begin(key)
	if !ok {
		return false
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		resp, err := m.client.FindRelationshipPaths(ctx, sourceType, sourceID, targetType, targetID, maxDepth)
		m.finish(req, func() { onDone(resp, err) })
	}()
	return true
}

// Statistics fetches display-only statistics under a fixed dedup key.
func (m *Manager) Statistics(onDone func(*discovery.Statistics, error)) bool {
	ctx, req, ok := m.begin(statisticsKey)
	if !ok {
		return false
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		stats, err := m.client.GetStatistics(ctx)
		m.finish(req, func() { onDone(stats, err) })
	}()
	return true
}

// begin registers an in-flight request unless one exists for the key.
func (m *Manager) begin(key string) (context.Context, *request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, nil, false
	}
	if _, dup := m.inflight[key]; dup {
		metrics.DiscoveryRequests.WithLabelValues("deduped").Inc()
		return nil, nil, false
	}
	ctx, cancel := context.WithCancel(context.Background())
	req := &request{key: key, cancel: cancel}
	m.inflight[key] = req
	return ctx, req, true
}

// finish delivers a result unless the request was cancelled or the
// manager closed while it was in flight.
func (m *Manager) finish(req *request, deliver func()) {
	m.mu.Lock()
	current, ok := m.inflight[req.key]
	stale := m.closed || !ok || current != req
	if !stale {
		delete(m.inflight, req.key)
		if m.discovery == req {
			m.discovery = nil
		}
		req.cancel() // release the context now that the request is done
	}
	m.mu.Unlock()
	if stale {
		return
	}
	deliver()
}

// dropLocked cancels a request and forgets it. Caller holds m.mu.
func (m *Manager) dropLocked(req *request) {
	req.cancel()
	delete(m.inflight, req.key)
	if m.discovery == req {
		m.discovery = nil
	}
}

// withRetry retries fn on transport errors with doubling backoff.
// Validation errors and context cancellation are terminal.
func (m *Manager) withRetry(ctx context.Context, fn func() (*discovery.Response, error)) (*discovery.Response, error) {
	delay := time.Duration(m.cfg.RetryBaseMs) * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= m.cfg.RetryAttempts; attempt++ {
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if discovery.IsValidation(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt == m.cfg.RetryAttempts {
			break
		}
		metrics.DiscoveryRetries.Inc()
		slog.Warn("discovery attempt failed, retrying",
			"attempt", attempt, "delay", delay, "err", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
	}
	return nil, lastErr
}

// Close cancels every in-flight request and rejects future ones.
// Calling Close twice is a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for _, req := range m.inflight {
		req.cancel()
	}
	m.inflight = make(map[string]*request)
	m.discovery = nil
	m.mu.Unlock()
	m.wg.Wait()
}
