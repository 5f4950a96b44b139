// Package poisson fills polygons with points using grid-accelerated
// Poisson-disc sampling. The result looks naturally scattered ("blue
// noise") while guaranteeing a minimum pairwise distance, which is what
// keeps generated vegetation from clumping or lining up on a grid.
package poisson

import (
	"errors"
	"math"
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrSeedPlacement is returned when no valid initial point is found inside
// the polygon within MaxSeedAttempts draws. Typical causes are degenerate
// geometry (zero area) or a polygon far smaller than its bounding box.
var ErrSeedPlacement = errors.New("no valid initial point found in polygon")

// Sampler generates a Poisson-disc distribution inside a single polygon.
// It holds per-pass state and is not safe for concurrent use; create one
// per polygon.
type Sampler struct {
	cfg   Config
	rng   *rand.Rand
	bound orb.Bound

	grid   *grid
	points []orb.Point
	active []int
}

// NewSampler prepares a sampling pass over the polygon's bounding box.
// The rng is the only source of randomness, so a seeded source makes the
// pass reproducible.
func NewSampler(cfg Config, bound orb.Bound, rng *rand.Rand) *Sampler {
	cfg = cfg.withDefaults()
	return &Sampler{
		cfg:   cfg,
		rng:   rng,
		bound: bound,
		grid:  newGrid(bound, cfg.MinDistance),
	}
}

// Sample fills the polygon and returns the accepted points in acceptance
// order. On ErrSeedPlacement the returned slice is empty; the error is
// scoped to this polygon.
func Sample(poly orb.Polygon, cfg Config, rng *rand.Rand) ([]orb.Point, error) {
	s := NewSampler(cfg, poly.Bound(), rng)
	return s.Run(poly)
}

// Run executes the Seeding and Growing phases until the active list is
// exhausted.
func (s *Sampler) Run(poly orb.Polygon) ([]orb.Point, error) {
	if err := s.seed(poly); err != nil {
		return nil, err
	}

	for len(s.active) > 0 {
		// Expand a uniformly random active point. The selection order only
		// shapes the spatial pattern, not the distance or containment
		// guarantees.
		ai := s.rng.Intn(len(s.active))
		from := s.points[s.active[ai]]

		if !s.grow(poly, from) {
			// Retired for good; the point itself stays in the result set.
			s.active[ai] = s.active[len(s.active)-1]
			s.active = s.active[:len(s.active)-1]
		}
	}

	return s.points, nil
}

func (s *Sampler) seed(poly orb.Polygon) error {
	w := s.bound.Max[0] - s.bound.Min[0]
	h := s.bound.Max[1] - s.bound.Min[1]

	for range s.cfg.MaxSeedAttempts {
		p := orb.Point{
			s.bound.Min[0] + s.rng.Float64()*w,
			s.bound.Min[1] + s.rng.Float64()*h,
		}
		if planar.PolygonContains(poly, p) {
			s.accept(p)
			return nil
		}
	}
	return ErrSeedPlacement
}

// grow tries to place one new point in the annulus around from, reporting
// whether a candidate was accepted.
func (s *Sampler) grow(poly orb.Polygon, from orb.Point) bool {
	for range s.cfg.MaxAttemptsPerPoint {
		angle := 2 * math.Pi * s.rng.Float64()
		// Radius in [minDistance, 2*minDistance): far enough from the source
		// by construction, close enough that the grid halo covers the rest.
		radius := s.cfg.MinDistance + s.cfg.MinDistance*s.rng.Float64()

		p := orb.Point{
			from[0] + radius*math.Cos(angle),
			from[1] + radius*math.Sin(angle),
		}

		if p[0] < s.bound.Min[0] || p[0] >= s.bound.Max[0] ||
			p[1] < s.bound.Min[1] || p[1] >= s.bound.Max[1] {
			continue
		}
		if !planar.PolygonContains(poly, p) {
			continue
		}
		if s.grid.hasNeighborWithin(p, s.cfg.MinDistance, s.points) {
			continue
		}

		s.accept(p)
		return true
	}
	return false
}

func (s *Sampler) accept(p orb.Point) {
	idx := len(s.points)
	s.points = append(s.points, p)
	s.active = append(s.active, idx)
	s.grid.insert(p, idx)
}
