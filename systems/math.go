package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Clamp functions for common value ranges

// clampFloat clamps v between minVal and maxVal.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// Random helpers

// randRange returns a uniform sample in [lo, hi).
func randRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// randIntRange returns a uniform integer in [lo, hi].
func randIntRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// randSign returns -1 or +1.
func randSign(rng *rand.Rand) float64 {
	if rng.Float64() < 0.5 {
		return -1
	}
	return 1
}

// triangular returns the mean of three uniform samples in [-1, 1].
// It approximates a bell-shaped spread around zero.
func triangular(rng *rand.Rand) float64 {
	return (rng.Float64()+rng.Float64()+rng.Float64())/3*2 - 1
}

// randUnit returns a random unit vector.
func randUnit(rng *rand.Rand) r2.Vec {
	a := rng.Float64() * 2 * math.Pi
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

// Vector helpers

// degenerateDist is the distance below which a direction is undefined.
const degenerateDist = 1e-6

// unitOr returns v normalised, or a random unit vector when v is degenerate.
func unitOr(rng *rand.Rand, v r2.Vec) (r2.Vec, float64) {
	d := r2.Norm(v)
	if d < degenerateDist {
		return randUnit(rng), 0
	}
	return r2.Scale(1/d, v), d
}

// clampMagnitude scales v down to at most maxLen.
func clampMagnitude(v r2.Vec, maxLen float64) r2.Vec {
	n2 := r2.Norm2(v)
	if n2 > maxLen*maxLen && n2 > 0 {
		return r2.Scale(maxLen/math.Sqrt(n2), v)
	}
	return v
}

// frameDecay converts a per-1/60s factor into the factor for dt seconds.
func frameDecay(factor, dt float64) float64 {
	return math.Pow(factor, dt*60)
}
