package sim

import (
	"math"

	"github.com/fhirscope/relgraph/internal/config"
	"github.com/fhirscope/relgraph/internal/graph"
	"github.com/fhirscope/relgraph/internal/metrics"
	"github.com/fhirscope/relgraph/internal/viewport"
)

// Simulation runs the continuous force-directed physics loop. It owns
// node position and velocity fields while hot; once alpha cools below
// alpha_min the simulation settles and Step becomes a no-op until
// reheated.
type Simulation struct {
	g      *graph.Graph
	cfg    config.SimulationConf
	bounds viewport.Bounds

	alpha   float64
	running bool
}

// New creates a stopped simulation with no graph.
func New(cfg config.SimulationConf, bounds viewport.Bounds) *Simulation {
	return &Simulation{cfg: cfg, bounds: bounds}
}

// SetGraph swaps in a new graph, seeds positions for nodes that have
// none, and reheats to full energy.
func (s *Simulation) SetGraph(g *graph.Graph) {
	s.g = g
	s.seedPositions()
	s.alpha = 1.0
	s.running = true
}

// seedPositions places unpositioned nodes on a deterministic
// phyllotaxis spiral around the viewport center, so initial frames are
// reproducible without a random source.
func (s *Simulation) seedPositions() {
	center := s.bounds.Center()
	const initialRadius = 10.0
	initialAngle := math.Pi * (3 - math.Sqrt(5)) // golden angle
	for i, n := range s.g.Nodes() {
		if n.X != 0 || n.Y != 0 || n.Pinned() {
			continue
		}
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		n.X = center.X + r*math.Cos(a)
		n.Y = center.Y + r*math.Sin(a)
	}
}

// Reheat resets the cooling parameter and restarts the simulation.
// Typical values: 1.0 after a graph swap, ~0.3-0.5 after a drag or
// parameter change.
func (s *Simulation) Reheat(alpha float64) {
	if alpha <= 0 {
		alpha = s.cfg.ReheatAlpha
	}
	if alpha > 1 {
		alpha = 1
	}
	if alpha > s.alpha {
		s.alpha = alpha
	}
	s.running = s.g != nil
}

// Stop halts the simulation. Stopping while not running is a no-op.
func (s *Simulation) Stop() { s.running = false }

// Start resumes a stopped simulation without changing alpha.
// Starting an already-running simulation is a no-op.
func (s *Simulation) Start() {
	if s.g != nil && s.alpha >= s.cfg.AlphaMin {
		s.running = true
	}
}

// Running reports whether Step currently advances positions.
func (s *Simulation) Running() bool { return s.running }

// Settled reports whether the layout has stabilized.
func (s *Simulation) Settled() bool { return s.alpha < s.cfg.AlphaMin }

// Alpha returns the current cooling parameter.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetConfig swaps force parameters and reheats so the new forces take
// visible effect.
func (s *Simulation) SetConfig(cfg config.SimulationConf) {
	s.cfg = cfg
	s.Reheat(cfg.ReheatAlpha)
}

// SetBounds updates the viewport rectangle the centering and boundary
// forces target.
func (s *Simulation) SetBounds(b viewport.Bounds) { s.bounds = b }

// Step advances all free nodes by one integration tick. dt is accepted
// for contract symmetry with the host scheduler; each call is one
// nominal tick and non-positive dt is ignored.
func (s *Simulation) Step(dt float64) {
	if !s.running || s.g == nil || dt <= 0 {
		return
	}
	if s.alpha < s.cfg.AlphaMin {
		s.running = false
		metrics.SimulationSettled.Inc()
		return
	}

	nodes := s.g.Nodes()
	s.applyLinkForce()
	s.applyChargeForce(nodes)
	s.applyCenterForce(nodes)
	s.integrate(nodes)
	for i := 0; i < s.cfg.Collision.Iterations; i++ {
		s.applyCollision(nodes)
	}
	s.clampToBounds(nodes)

	s.alpha -= s.alpha * s.cfg.AlphaDecay
	metrics.SimulationTicks.Inc()
}

// integrate applies accumulated velocities with decay, honoring pins.
func (s *Simulation) integrate(nodes []*graph.Node) {
	retain := 1 - s.cfg.VelocityDecay
	for _, n := range nodes {
		if n.Pinned() {
			n.X, n.Y = *n.FX, *n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= retain
		n.VY *= retain
		n.X += n.VX
		n.Y += n.VY
	}
}
