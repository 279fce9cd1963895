package systems

import (
	"math"
	"math/rand"
)

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}

// randomDirection returns a unit vector at a uniform random angle.
func randomDirection(rng *rand.Rand) (dx, dy float64) {
	angle := rng.Float64() * 2 * math.Pi
	return math.Cos(angle), math.Sin(angle)
}

// normalize returns the unit vector along (dx, dy) and its length.
// A zero vector stays zero.
func normalize(dx, dy float64) (nx, ny, length float64) {
	length = math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return 0, 0, 0
	}
	return dx / length, dy / length, length
}
