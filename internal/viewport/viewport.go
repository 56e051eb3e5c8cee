package viewport

import "math"

// Point is a 2D coordinate in either screen or world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the rectangle's midpoint.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Transform is the current zoom/pan affine transform.
// screen = world*Scale + Translate.
type Transform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Scale      float64 `json:"scale"`
}

// Identity is the untransformed view.
var Identity = Transform{Scale: 1}

// Controller owns the zoom/pan transform for one session. All changes
// resolve to a single current Transform; callers animate transitions
// themselves if they want to.
type Controller struct {
	bounds    Bounds
	transform Transform
	minScale  float64
	maxScale  float64
}

// NewController creates a controller over the given screen viewport.
func NewController(bounds Bounds, minScale, maxScale float64) *Controller {
	return &Controller{
		bounds:    bounds,
		transform: Identity,
		minScale:  minScale,
		maxScale:  maxScale,
	}
}

// Transform returns the current view transform.
func (c *Controller) Transform() Transform { return c.transform }

// Bounds returns the screen viewport rectangle.
func (c *Controller) Bounds() Bounds { return c.bounds }

// Resize updates the screen viewport rectangle.
func (c *Controller) Resize(b Bounds) { c.bounds = b }

// ZoomBy multiplies the current scale by factor, clamped to the
// configured range, keeping the viewport center fixed in world space.
func (c *Controller) ZoomBy(factor float64) Transform {
	old := c.transform.Scale
	next := clamp(old*factor, c.minScale, c.maxScale)
	if next == old {
		return c.transform
	}
	// Keep the world point under the viewport center stationary.
	center := c.bounds.Center()
	world := c.ScreenToWorld(center)
	c.transform.Scale = next
	c.transform.TranslateX = center.X - world.X*next
	c.transform.TranslateY = center.Y - world.Y*next
	return c.transform
}

// PanBy shifts the view by a screen-space delta.
func (c *Controller) PanBy(dx, dy float64) Transform {
	c.transform.TranslateX += dx
	c.transform.TranslateY += dy
	return c.transform
}

// Reset restores the identity transform.
func (c *Controller) Reset() Transform {
	c.transform = Identity
	return c.transform
}

// NodeCircle is the minimal node geometry FitToBounds needs.
type NodeCircle struct {
	X, Y, Radius float64
}

// FitToBounds computes the minimal scale/translate that fits every node
// circle plus padding inside the viewport, clamped to the scale range.
// An empty node set resets to identity.
func (c *Controller) FitToBounds(nodes []NodeCircle, padding float64) Transform {
	if len(nodes) == 0 {
		return c.Reset()
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X-n.Radius)
		minY = math.Min(minY, n.Y-n.Radius)
		maxX = math.Max(maxX, n.X+n.Radius)
		maxY = math.Max(maxY, n.Y+n.Radius)
	}
	w := maxX - minX + 2*padding
	h := maxY - minY + 2*padding
	scale := 1.0
	if w > 0 && h > 0 {
		scale = math.Min(c.bounds.Width/w, c.bounds.Height/h)
	}
	scale = clamp(scale, c.minScale, c.maxScale)

	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	center := c.bounds.Center()
	c.transform = Transform{
		TranslateX: center.X - cx*scale,
		TranslateY: center.Y - cy*scale,
		Scale:      scale,
	}
	return c.transform
}

// ScreenToWorld inverts the transform for hit-testing.
func (c *Controller) ScreenToWorld(p Point) Point {
	t := c.transform
	return Point{
		X: (p.X - t.TranslateX) / t.Scale,
		Y: (p.Y - t.TranslateY) / t.Scale,
	}
}

// WorldToScreen applies the transform.
func (c *Controller) WorldToScreen(p Point) Point {
	t := c.transform
	return Point{
		X: p.X*t.Scale + t.TranslateX,
		Y: p.Y*t.Scale + t.TranslateY,
	}
}

// VisibleWorldRect returns the world-space rectangle currently shown,
// used by the render bridge to cull off-viewport nodes.
func (c *Controller) VisibleWorldRect() Bounds {
	tl := c.ScreenToWorld(Point{X: c.bounds.X, Y: c.bounds.Y})
	br := c.ScreenToWorld(Point{X: c.bounds.X + c.bounds.Width, Y: c.bounds.Y + c.bounds.Height})
	return Bounds{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
