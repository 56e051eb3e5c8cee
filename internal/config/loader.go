package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader reads the engine tuning YAML and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *EngineConfig
	onChange []func(*EngineConfig)
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Config returns the current (latest) configuration.
func (l *Loader) Config() *EngineConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*EngineConfig)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads tuning on file
// changes. Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					cfg, err := l.load()
					if err != nil {
						// Keep the old tuning on a bad edit.
						continue
					}
					l.swap(cfg)
				}
			case <-w.Errors:
				// Ignore watcher errors.
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload forces an immediate re-read of the config file.
func (l *Loader) Reload() (*EngineConfig, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.swap(cfg)
	return cfg, nil
}

func (l *Loader) swap(cfg *EngineConfig) {
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*EngineConfig), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
}

func (l *Loader) load() (*EngineConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config with every field at its default value,
// usable without a config file.
func Default() *EngineConfig {
	cfg := &EngineConfig{Version: "v1"}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued tuning fields in place.
func ApplyDefaults(cfg *EngineConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.SessionIdleTimeoutMs == 0 {
		cfg.Server.SessionIdleTimeoutMs = 30 * 60 * 1000
	}
	s := &cfg.Simulation
	if s.AlphaDecay == 0 {
		s.AlphaDecay = 0.0228 // 1 - 0.001^(1/300), ~300 ticks to settle
	}
	if s.AlphaMin == 0 {
		s.AlphaMin = 0.001
	}
	if s.ReheatAlpha == 0 {
		s.ReheatAlpha = 0.5
	}
	if s.VelocityDecay == 0 {
		s.VelocityDecay = 0.4
	}
	if s.TickRateHz == 0 {
		s.TickRateHz = 60
	}
	if s.Link.Distance == 0 {
		s.Link.Distance = 100
	}
	if s.Link.Strength == 0 {
		s.Link.Strength = 0.7
	}
	if s.Charge.Strength == 0 {
		s.Charge.Strength = -300
	}
	if s.Charge.MaxDistance == 0 {
		s.Charge.MaxDistance = 500
	}
	if s.Collision.Padding == 0 {
		s.Collision.Padding = 4
	}
	if s.Collision.Strength == 0 {
		s.Collision.Strength = 0.7
	}
	if s.Collision.Iterations == 0 {
		s.Collision.Iterations = 1
	}
	if s.Center.Strength == 0 {
		s.Center.Strength = 0.05
	}
	if s.BoundsPadding == 0 {
		s.BoundsPadding = 40
	}
	if cfg.Layout.RadialBaseRadius == 0 {
		cfg.Layout.RadialBaseRadius = 150
	}
	if cfg.Layout.RadialDepthStep == 0 {
		cfg.Layout.RadialDepthStep = 120
	}
	if cfg.Layout.CircularMargin == 0 {
		cfg.Layout.CircularMargin = 60
	}
	if cfg.Layout.RowHeight == 0 {
		cfg.Layout.RowHeight = 140
	}
	if cfg.Viewport.MinScale == 0 {
		cfg.Viewport.MinScale = 0.1
	}
	if cfg.Viewport.MaxScale == 0 {
		cfg.Viewport.MaxScale = 4.0
	}
	if cfg.Viewport.FitPadding == 0 {
		cfg.Viewport.FitPadding = 50
	}
	if cfg.NodeRadius.Base == 0 {
		cfg.NodeRadius.Base = 12
	}
	if cfg.NodeRadius.PerDegree == 0 {
		cfg.NodeRadius.PerDegree = 3
	}
	if cfg.NodeRadius.Max == 0 {
		cfg.NodeRadius.Max = 30
	}
	if cfg.Render.CullThreshold == 0 {
		cfg.Render.CullThreshold = 100
	}
	if cfg.Pathfind.DefaultMaxDepth == 0 {
		cfg.Pathfind.DefaultMaxDepth = 4
	}
	if cfg.Pathfind.MaxDepthLimit == 0 {
		cfg.Pathfind.MaxDepthLimit = 8
	}
	if cfg.Lifecycle.RetryAttempts == 0 {
		cfg.Lifecycle.RetryAttempts = 3
	}
	if cfg.Lifecycle.RetryBaseMs == 0 {
		cfg.Lifecycle.RetryBaseMs = 250
	}
	if cfg.Lifecycle.DebounceMs == 0 {
		cfg.Lifecycle.DebounceMs = 300
	}
	if cfg.Lifecycle.RequestTimeoutMs == 0 {
		cfg.Lifecycle.RequestTimeoutMs = 15000
	}
}
