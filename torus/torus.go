// Package torus provides wrap-around geometry for a 2D plane whose axes both wrap.
//
// Every targeting, force and proximity computation must go through Vector (or the
// helpers built on it). Raw subtraction breaks at the seams.
package torus

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Wrap maps v into [0, size).
func Wrap(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	// math.Mod can return size for tiny negative inputs after the add.
	if v >= size {
		v -= size
	}
	return v
}

// Delta returns the shortest signed distance equivalent to d, in (-size/2, size/2].
func Delta(d, size float64) float64 {
	if size <= 0 {
		return d
	}
	d = math.Mod(d, size)
	half := size / 2
	if d > half {
		d -= size
	} else if d <= -half {
		d += size
	}
	return d
}

// Space is a torus with periods W and H.
type Space struct {
	W, H float64
}

// New returns a torus of the given size.
func New(w, h float64) Space {
	return Space{W: w, H: h}
}

// WrapPos wraps a point into [0,W)x[0,H).
func (s Space) WrapPos(x, y float64) (float64, float64) {
	return Wrap(x, s.W), Wrap(y, s.H)
}

// WrapVec wraps a point into [0,W)x[0,H).
func (s Space) WrapVec(p r2.Vec) r2.Vec {
	return r2.Vec{X: Wrap(p.X, s.W), Y: Wrap(p.Y, s.H)}
}

// DxDy returns the minimal displacement from (ax,ay) to (bx,by).
func (s Space) DxDy(ax, ay, bx, by float64) (dx, dy float64) {
	return Delta(bx-ax, s.W), Delta(by-ay, s.H)
}

// Vector returns the minimal-magnitude displacement from a to b.
func (s Space) Vector(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: Delta(b.X-a.X, s.W), Y: Delta(b.Y-a.Y, s.H)}
}

// Dist returns the toroidal distance between (ax,ay) and (bx,by).
func (s Space) Dist(ax, ay, bx, by float64) float64 {
	return math.Sqrt(s.DistSq(ax, ay, bx, by))
}

// DistSq returns the squared toroidal distance between (ax,ay) and (bx,by).
func (s Space) DistSq(ax, ay, bx, by float64) float64 {
	dx, dy := s.DxDy(ax, ay, bx, by)
	return dx*dx + dy*dy
}

// MaxDist is the largest distance any two points can be apart.
func (s Space) MaxDist() float64 {
	return math.Hypot(s.W, s.H) / 2
}
