package poisson

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/fogleman/poissondisc"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func square100() orb.Polygon {
	return orb.Polygon{{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {0, 0}}}
}

func minPairwiseDistance(points []orb.Point) float64 {
	best := math.Inf(1)
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			dx := points[i][0] - points[j][0]
			dy := points[i][1] - points[j][1]
			if d := math.Sqrt(dx*dx + dy*dy); d < best {
				best = d
			}
		}
	}
	return best
}

func TestSampleSquare(t *testing.T) {
	poly := square100()
	cfg := Config{MinDistance: 10}

	points, err := Sample(poly, cfg, newTestRand(1))
	if err != nil {
		t.Fatal(err)
	}

	// A 100x100 square at min distance 10 settles around 140 points; a wide
	// band catches broken sampling without flaking on the randomness.
	if len(points) < 90 || len(points) > 200 {
		t.Fatalf("unexpected point count %d", len(points))
	}
	if d := minPairwiseDistance(points); d < cfg.MinDistance-1e-9 {
		t.Fatalf("pairwise distance %v below min distance %v", d, cfg.MinDistance)
	}
	for _, p := range points {
		if !planar.PolygonContains(poly, p) {
			t.Fatalf("point %v outside polygon", p)
		}
	}
}

func TestSampleHoleExcluded(t *testing.T) {
	poly := orb.Polygon{
		{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {0, 0}},
		{{40, 40}, {60, 40}, {60, 60}, {40, 60}, {40, 40}},
	}

	points, err := Sample(poly, Config{MinDistance: 5}, newTestRand(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(points) == 0 {
		t.Fatal("expected points in the ring around the hole")
	}
	for _, p := range points {
		if p[0] > 40 && p[0] < 60 && p[1] > 40 && p[1] < 60 {
			t.Fatalf("point %v inside the hole", p)
		}
	}
}

func TestSampleConcavePolygon(t *testing.T) {
	// An L-shape: the bounding box's upper-right quadrant is outside.
	poly := orb.Polygon{{
		{0, 0}, {100, 0}, {100, 50}, {50, 50}, {50, 100}, {0, 100}, {0, 0},
	}}

	points, err := Sample(poly, Config{MinDistance: 8}, newTestRand(3))
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range points {
		if p[0] > 50 && p[1] > 50 {
			t.Fatalf("point %v in the notch outside the polygon", p)
		}
	}
}

func TestSampleDegeneratePolygon(t *testing.T) {
	// Collinear ring, zero area: no seed can land inside.
	poly := orb.Polygon{{{0, 0}, {10, 10}, {20, 20}, {0, 0}}}

	_, err := Sample(poly, Config{MinDistance: 1}, newTestRand(4))
	if !errors.Is(err, ErrSeedPlacement) {
		t.Fatalf("expected ErrSeedPlacement, got %v", err)
	}
}

func TestSampleDeterministicWithSeed(t *testing.T) {
	poly := square100()
	cfg := Config{MinDistance: 10}

	a, err := Sample(poly, cfg, newTestRand(42))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Sample(poly, cfg, newTestRand(42))
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != len(b) {
		t.Fatalf("runs with the same seed produced %d and %d points", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{MinDistance: 10}).Validate(); err != nil {
		t.Fatal(err)
	}
	if err := (Config{MinDistance: 0}).Validate(); err == nil {
		t.Fatal("expected error for zero min distance")
	}
	if err := (Config{MinDistance: -3}).Validate(); err == nil {
		t.Fatal("expected error for negative min distance")
	}
}

func TestJitter(t *testing.T) {
	rng := newTestRand(5)
	points := []orb.Point{{10, 10}, {20, 20}, {30, 30}}

	if got := Jitter(points, 0, rng); &got[0] != &points[0] {
		t.Fatal("zero variation should return the input unchanged")
	}

	const variation = 1.5
	moved := Jitter(points, variation, rng)
	if len(moved) != len(points) {
		t.Fatalf("expected %d points, got %d", len(points), len(moved))
	}
	for i := range moved {
		dx := moved[i][0] - points[i][0]
		dy := moved[i][1] - points[i][1]
		if d := math.Sqrt(dx*dx + dy*dy); d >= variation {
			t.Fatalf("point %d displaced by %v, want < %v", i, d, variation)
		}
	}
}

func BenchmarkSample(b *testing.B) {
	poly := square100()
	cfg := Config{MinDistance: 5}
	rng := newTestRand(1)

	b.ReportAllocs()
	for range b.N {
		if _, err := Sample(poly, cfg, rng); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSampleLibraryBaseline runs the bbox-only sampler the polygon-aware
// one is measured against. It has no containment filtering, so it is a floor,
// not an equivalent.
func BenchmarkSampleLibraryBaseline(b *testing.B) {
	b.ReportAllocs()
	for range b.N {
		poissondisc.Sample(0, 0, 100, 100, 5, DefaultMaxAttemptsPerPoint, nil)
	}
}
