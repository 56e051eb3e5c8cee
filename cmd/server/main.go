package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fhirscope/relgraph/internal/api"
	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/discovery"
	"github.com/fhirscope/relgraph/internal/session"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("RELGRAPH_ADDR", ""), "HTTP listen address (overrides config)")
	cfgPath := flag.String("config", envOr("RELGRAPH_CONFIG", "configs/engine.yaml"), "Path to engine tuning YAML")
	discoveryURL := flag.String("discovery-url", envOr("RELGRAPH_DISCOVERY_URL", ""), "Base URL of the relationship discovery service (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *discoveryURL != "" {
		cfg.Server.DiscoveryURL = *discoveryURL
	}
	if cfg.Server.DiscoveryURL == "" {
		slog.Error("discovery service URL is required (flag, env, or config)")
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	// ── Collaborators and session registry ───────────────────────────────────
	client := discovery.NewHTTPClient(cfg.Server.DiscoveryURL,
		time.Duration(cfg.Lifecycle.RequestTimeoutMs)*time.Millisecond)
	registry := session.NewRegistry(cfg, client)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.EngineConfig) {
		if err := config.Validate(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		registry.ApplyTuning(newCfg)
		slog.Info("engine tuning hot-reloaded")
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── Idle-session reaper ───────────────────────────────────────────────────
	reaperCtx, reaperCancel := context.WithCancel(context.Background())
	defer reaperCancel()
	go func() {
		idle := time.Duration(cfg.Server.SessionIdleTimeoutMs) * time.Millisecond
		ticker := time.NewTicker(idle / 4)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := registry.ExpireIdle(idle); n > 0 {
					slog.Info("expired idle sessions", "count", n)
				}
			case <-reaperCtx.Done():
				return
			}
		}
	}()

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(registry, loader, client)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr, "discovery", cfg.Server.DiscoveryURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	registry.Close()
	slog.Info("goodbye")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
