// Package camera maps the toroidal world onto a screen viewport.
package camera

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/torus"
)

// Camera controls the viewport into the simulation world.
// The scale is uniform on both axes; positions are measured by the shortest
// toroidal offset from the camera centre.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float64

	// Zoom is screen units per world unit
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	Space torus.Space

	MinZoom, MaxZoom float64
}

// New creates a camera centered on the world, zoomed so the world fills the viewport.
func New(viewportW, viewportH float64, space torus.Space) *Camera {
	c := &Camera{
		X:         space.W / 2,
		Y:         space.H / 2,
		ViewportW: viewportW,
		ViewportH: viewportH,
		Space:     space,
		MaxZoom:   4.0,
	}
	c.MinZoom = c.fillZoom()
	c.Zoom = c.MinZoom
	return c
}

// fillZoom is the smallest zoom at which the world covers the whole viewport.
func (c *Camera) fillZoom() float64 {
	return max(c.ViewportW/c.Space.W, c.ViewportH/c.Space.H)
}

// Fit zooms out until the whole world is visible, letterboxing the long axis.
func (c *Camera) Fit() {
	c.X, c.Y = c.Space.W/2, c.Space.H/2
	c.MinZoom = min(c.ViewportW/c.Space.W, c.ViewportH/c.Space.H)
	c.Zoom = c.MinZoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	dx, dy := c.Space.DxDy(c.X, c.Y, wx, wy)
	return c.ViewportW/2 + dx*c.Zoom, c.ViewportH/2 + dy*c.Zoom
}

// ScreenToWorld converts screen coordinates to wrapped world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	dx := (sx - c.ViewportW/2) / c.Zoom
	dy := (sy - c.ViewportH/2) / c.Zoom
	return c.Space.WrapPos(c.X+dx, c.Y+dy)
}

// Scale converts a world length to screen units.
func (c *Camera) Scale(l float64) float64 {
	return l * c.Zoom
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float64) bool {
	dx, dy := c.Space.DxDy(c.X, c.Y, wx, wy)
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return abs(dx) <= halfW && abs(dy) <= halfH
}

// GhostPositions appends extra screen positions for a circle straddling the
// edge of the visible area, so it is drawn on both sides of the seam.
// The primary position is not included.
func (c *Camera) GhostPositions(dst []r2.Vec, wx, wy, radius float64) []r2.Vec {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	dx, dy := c.Space.DxDy(c.X, c.Y, wx, wy)

	var gx, gy float64
	hGhost, vGhost := false, false
	switch {
	case dx > halfW-radius && dx < halfW+radius:
		gx, hGhost = dx-c.Space.W, true
	case dx < -halfW+radius && dx > -halfW-radius:
		gx, hGhost = dx+c.Space.W, true
	}
	switch {
	case dy > halfH-radius && dy < halfH+radius:
		gy, vGhost = dy-c.Space.H, true
	case dy < -halfH+radius && dy > -halfH-radius:
		gy, vGhost = dy+c.Space.H, true
	}

	screen := func(dx, dy float64) r2.Vec {
		return r2.Vec{X: c.ViewportW/2 + dx*c.Zoom, Y: c.ViewportH/2 + dy*c.Zoom}
	}
	if hGhost {
		dst = append(dst, screen(gx, dy))
	}
	if vGhost {
		dst = append(dst, screen(dx, gy))
	}
	if hGhost && vGhost {
		dst = append(dst, screen(gx, gy))
	}
	return dst
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float64, space torus.Space) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.Space = space
	c.X, c.Y = space.WrapPos(c.X, c.Y)
	c.MinZoom = c.fillZoom()
	c.Zoom = clamp(c.Zoom, c.MinZoom, c.MaxZoom)
}

// Pan moves the camera by the given delta in screen units, wrapping around the world.
func (c *Camera) Pan(dx, dy float64) {
	c.X, c.Y = c.Space.WrapPos(c.X+dx/c.Zoom, c.Y+dy/c.Zoom)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the world centre at minimum zoom.
func (c *Camera) Reset() {
	c.X = c.Space.W / 2
	c.Y = c.Space.H / 2
	c.Zoom = c.MinZoom
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
