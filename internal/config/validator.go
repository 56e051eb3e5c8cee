package config

import (
	"fmt"
	"strings"
)

// Validate checks the tuning for:
//   - Required top-level fields
//   - Physically sensible force parameters (repulsion negative, decays in (0,1))
//   - Scale and depth bound ordering
func Validate(cfg *EngineConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	s := cfg.Simulation
	if s.AlphaDecay <= 0 || s.AlphaDecay >= 1 {
		errs = append(errs, fmt.Sprintf("simulation.alpha_decay must be in (0,1), got %v", s.AlphaDecay))
	}
	if s.AlphaMin <= 0 || s.AlphaMin >= 1 {
		errs = append(errs, fmt.Sprintf("simulation.alpha_min must be in (0,1), got %v", s.AlphaMin))
	}
	if s.VelocityDecay <= 0 || s.VelocityDecay >= 1 {
		errs = append(errs, fmt.Sprintf("simulation.velocity_decay must be in (0,1), got %v", s.VelocityDecay))
	}
	if s.Link.Distance <= 0 {
		errs = append(errs, "simulation.link.distance must be positive")
	}
	if s.Charge.Strength >= 0 {
		errs = append(errs, fmt.Sprintf("simulation.charge.strength must be negative (repulsion), got %v", s.Charge.Strength))
	}
	if s.TickRateHz <= 0 || s.TickRateHz > 240 {
		errs = append(errs, fmt.Sprintf("simulation.tick_rate_hz must be in [1,240], got %d", s.TickRateHz))
	}

	v := cfg.Viewport
	if v.MinScale <= 0 || v.MaxScale <= 0 || v.MinScale >= v.MaxScale {
		errs = append(errs, fmt.Sprintf("viewport scales must satisfy 0 < min < max, got [%v, %v]", v.MinScale, v.MaxScale))
	}

	if cfg.Layout.RadialBaseRadius <= 0 {
		errs = append(errs, "layout.radial_base_radius must be positive")
	}

	p := cfg.Pathfind
	if p.DefaultMaxDepth <= 0 || p.DefaultMaxDepth > p.MaxDepthLimit {
		errs = append(errs, fmt.Sprintf("pathfind depths must satisfy 0 < default <= limit, got %d/%d", p.DefaultMaxDepth, p.MaxDepthLimit))
	}

	lc := cfg.Lifecycle
	if lc.RetryAttempts < 1 || lc.RetryAttempts > 10 {
		errs = append(errs, fmt.Sprintf("lifecycle.retry_attempts must be in [1,10], got %d", lc.RetryAttempts))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
