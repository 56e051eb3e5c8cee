package config

// EngineConfig is the top-level YAML structure for engine tuning.
type EngineConfig struct {
	Version    string         `yaml:"version"`
	Server     ServerConf     `yaml:"server"`
	Simulation SimulationConf `yaml:"simulation"`
	Layout     LayoutConf     `yaml:"layout"`
	Viewport   ViewportConf   `yaml:"viewport"`
	NodeRadius NodeRadiusConf `yaml:"node_radius"`
	Render     RenderConf     `yaml:"render"`
	Pathfind   PathfindConf   `yaml:"pathfind"`
	Lifecycle  LifecycleConf  `yaml:"lifecycle"`
}

// ServerConf holds HTTP server and collaborator endpoints.
type ServerConf struct {
	Addr                 string `yaml:"addr"`
	DiscoveryURL         string `yaml:"discovery_url"`
	SessionIdleTimeoutMs int    `yaml:"session_idle_timeout_ms"`
}

// SimulationConf holds physics tuning for the force simulation.
type SimulationConf struct {
	AlphaDecay    float64       `yaml:"alpha_decay"`
	AlphaMin      float64       `yaml:"alpha_min"`
	ReheatAlpha   float64       `yaml:"reheat_alpha"`
	VelocityDecay float64       `yaml:"velocity_decay"`
	TickRateHz    int           `yaml:"tick_rate_hz"`
	Link          LinkForce     `yaml:"link"`
	Charge        ChargeForce   `yaml:"charge"`
	Collision     CollideForce  `yaml:"collision"`
	Center        CenterForce   `yaml:"center"`
	BoundsPadding float64       `yaml:"bounds_padding"`
}

// LinkForce attracts connected nodes toward a target distance.
type LinkForce struct {
	Distance float64 `yaml:"distance"`
	Strength float64 `yaml:"strength"`
}

// ChargeForce repels all node pairs (negative = repulsion).
type ChargeForce struct {
	Strength    float64 `yaml:"strength"`
	MaxDistance float64 `yaml:"max_distance"`
}

// CollideForce keeps node circles from overlapping.
type CollideForce struct {
	Padding    float64 `yaml:"padding"`
	Strength   float64 `yaml:"strength"`
	Iterations int     `yaml:"iterations"`
}

// CenterForce pulls the layout toward the viewport center.
type CenterForce struct {
	Strength float64 `yaml:"strength"`
}

// LayoutConf holds geometric parameters for the non-force layouts.
type LayoutConf struct {
	RadialBaseRadius float64 `yaml:"radial_base_radius"`
	RadialDepthStep  float64 `yaml:"radial_depth_step"`
	CircularMargin   float64 `yaml:"circular_margin"`
	RowHeight        float64 `yaml:"row_height"`
}

// ViewportConf bounds the zoom transform.
type ViewportConf struct {
	MinScale   float64 `yaml:"min_scale"`
	MaxScale   float64 `yaml:"max_scale"`
	FitPadding float64 `yaml:"fit_padding"`
}

// NodeRadiusConf derives visual radii from node degree.
type NodeRadiusConf struct {
	Base      float64 `yaml:"base"`
	PerDegree float64 `yaml:"per_degree"`
	Max       float64 `yaml:"max"`
}

// RenderConf tunes large-graph degradation.
type RenderConf struct {
	CullThreshold int `yaml:"cull_threshold"`
}

// PathfindConf bounds path discovery depth.
type PathfindConf struct {
	DefaultMaxDepth int `yaml:"default_max_depth"`
	MaxDepthLimit   int `yaml:"max_depth_limit"`
}

// LifecycleConf tunes the discovery request wrapper.
type LifecycleConf struct {
	RetryAttempts    int `yaml:"retry_attempts"`
	RetryBaseMs      int `yaml:"retry_base_ms"`
	DebounceMs       int `yaml:"debounce_ms"`
	RequestTimeoutMs int `yaml:"request_timeout_ms"`
}
