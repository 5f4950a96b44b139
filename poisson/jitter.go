package poisson

import (
	"math"
	"math/rand"

	"github.com/paulmach/orb"
)

// Jitter displaces each point by a random offset with uniform angle and
// uniform magnitude in [0, variation). It is a cosmetic pass applied to
// exported coordinates only: the result is intentionally NOT re-checked
// against the containment and minimum-distance guarantees, so a variation
// close to the sampling distance can push exported points over either one.
// Keeping it outside the sampler leaves room for a stricter re-validating
// mode without touching the core.
func Jitter(points []orb.Point, variation float64, rng *rand.Rand) []orb.Point {
	if variation <= 0 {
		return points
	}

	out := make([]orb.Point, len(points))
	for i, p := range points {
		angle := 2 * math.Pi * rng.Float64()
		dist := variation * rng.Float64()
		out[i] = orb.Point{
			p[0] + dist*math.Cos(angle),
			p[1] + dist*math.Sin(angle),
		}
	}
	return out
}
