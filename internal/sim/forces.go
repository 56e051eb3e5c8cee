package sim

import (
	"math"

	"github.com/fhirscope/relgraph/internal/graph"
)

const minDistance = 1e-3

// applyLinkForce attracts connected nodes toward the configured target
// distance. Higher-strength links pull harder; the correction is split
// between both endpoints.
func (s *Simulation) applyLinkForce() {
	target := s.cfg.Link.Distance
	base := s.cfg.Link.Strength * s.alpha
	for _, l := range s.g.Links() {
		a := s.g.Node(l.SourceID)
		b := s.g.Node(l.TargetID)
		if a == nil || b == nil {
			continue
		}
		dx := b.X + b.VX - a.X - a.VX
		dy := b.Y + b.VY - a.Y - a.VY
		dist := math.Hypot(dx, dy)
		if dist < minDistance {
			dist = minDistance
		}
		k := (dist - target) / dist * base * l.Strength
		fx := dx * k / 2
		fy := dy * k / 2
		b.VX -= fx
		b.VY -= fy
		a.VX += fx
		a.VY += fy
	}
}

// applyChargeForce repels every node pair with inverse-distance-squared
// falloff. O(n²) is fine at the tens-to-low-hundreds scale this engine
// targets.
func (s *Simulation) applyChargeForce(nodes []*graph.Node) {
	strength := s.cfg.Charge.Strength * s.alpha
	maxDist2 := s.cfg.Charge.MaxDistance * s.cfg.Charge.MaxDistance
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			if d2 > maxDist2 {
				continue
			}
			if d2 < minDistance {
				d2 = minDistance
			}
			// strength is negative, so f pushes the pair apart.
			f := strength / d2
			dist := math.Sqrt(d2)
			fx := dx / dist * f
			fy := dy / dist * f
			a.VX += fx
			a.VY += fy
			b.VX -= fx
			b.VY -= fy
		}
	}
}

// applyCenterForce gently pulls every free node toward the viewport
// center so disconnected components do not drift apart forever.
func (s *Simulation) applyCenterForce(nodes []*graph.Node) {
	center := s.bounds.Center()
	k := s.cfg.Center.Strength * s.alpha
	for _, n := range nodes {
		if n.Pinned() {
			continue
		}
		n.VX += (center.X - n.X) * k
		n.VY += (center.Y - n.Y) * k
	}
}

// applyCollision separates overlapping node circles (radius + padding)
// by moving positions directly, which converges faster than a velocity
// nudge for hard constraints.
func (s *Simulation) applyCollision(nodes []*graph.Node) {
	pad := s.cfg.Collision.Padding
	strength := s.cfg.Collision.Strength
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Hypot(dx, dy)
			minSep := a.Radius + b.Radius + pad
			if dist >= minSep {
				continue
			}
			if dist < minDistance {
				// Coincident nodes: separate along a fixed axis.
				dx, dy, dist = minSep, 0, minSep
			}
			overlap := (minSep - dist) / dist * strength
			sx := dx * overlap / 2
			sy := dy * overlap / 2
			if !a.Pinned() {
				a.X -= sx
				a.Y -= sy
			}
			if !b.Pinned() {
				b.X += sx
				b.Y += sy
			}
		}
	}
}

// clampToBounds keeps every node inside the padded viewport rectangle.
func (s *Simulation) clampToBounds(nodes []*graph.Node) {
	pad := s.cfg.BoundsPadding
	minX := s.bounds.X + pad
	minY := s.bounds.Y + pad
	maxX := s.bounds.X + s.bounds.Width - pad
	maxY := s.bounds.Y + s.bounds.Height - pad
	if minX >= maxX || minY >= maxY {
		return
	}
	for _, n := range nodes {
		if n.Pinned() {
			continue
		}
		if n.X < minX {
			n.X, n.VX = minX, 0
		} else if n.X > maxX {
			n.X, n.VX = maxX, 0
		}
		if n.Y < minY {
			n.Y, n.VY = minY, 0
		} else if n.Y > maxY {
			n.Y, n.VY = maxY, 0
		}
	}
}
