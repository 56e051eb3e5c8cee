package graph

import (
	"fmt"
	"strings"
	"time"
)

// LinkKind discriminates how a relationship was discovered.
type LinkKind string

const (
	KindDirect    LinkKind = "direct"
	KindReverse   LinkKind = "reverse"
	KindOneToMany LinkKind = "one-to-many"
)

// ParseKind maps a raw discovery kind onto a LinkKind, defaulting to direct.
func ParseKind(s string) LinkKind {
	switch LinkKind(strings.ToLower(s)) {
	case KindReverse:
		return KindReverse
	case KindOneToMany:
		return KindOneToMany
	default:
		return KindDirect
	}
}

// Node is one FHIR resource vertex. Position fields are owned by the
// simulation while it is hot; FX/FY, when non-nil, pin the node so forces
// cannot move it.
type Node struct {
	ID           string // "<ResourceType>/<resourceId>", immutable
	ResourceType string
	Display      string
	Depth        int       // hops from the query root, assigned at discovery
	LastUpdated  time.Time // resource meta.lastUpdated, zero when unknown

	X, Y   float64
	VX, VY float64
	FX, FY *float64

	Radius float64
}

// Pinned reports whether the node is exempt from simulation forces.
func (n *Node) Pinned() bool { return n.FX != nil && n.FY != nil }

// Pin fixes the node at (x, y).
func (n *Node) Pin(x, y float64) {
	n.X, n.Y = x, y
	n.FX, n.FY = &x, &y
}

// Unpin releases the node back to the simulation.
func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// Link is one relationship edge between two existing nodes.
type Link struct {
	SourceID string
	TargetID string
	Field    string
	Kind     LinkKind
	Strength float64 // (0, 1], pull weight for the link force
}

// Key returns the link's diffing identity: the unordered endpoint pair
// plus the relationship field.
func (l Link) Key() string {
	a, b := l.SourceID, l.TargetID
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s|%s", a, b, l.Field)
}
