package poisson

import (
	"math"

	"github.com/paulmach/orb"
)

// grid is the uniform acceleration structure for neighbor lookups during one
// sampling pass. The cell size is minDistance/sqrt(2), so a cell can hold at
// most one point that respects the minimum distance, and checking the 3x3
// block around a candidate's cell covers every point that could be too
// close. Cells store an index into the sampler's points slice, -1 when
// empty.
type grid struct {
	bound    orb.Bound
	cellSize float64
	width    int
	height   int
	cells    []int
}

func newGrid(bound orb.Bound, minDistance float64) *grid {
	cellSize := minDistance / math.Sqrt2
	// The extra cell keeps points on the max edge of the bound addressable.
	width := int(math.Ceil((bound.Max[0]-bound.Min[0])/cellSize)) + 1
	height := int(math.Ceil((bound.Max[1]-bound.Min[1])/cellSize)) + 1

	cells := make([]int, width*height)
	for i := range cells {
		cells[i] = -1
	}

	return &grid{
		bound:    bound,
		cellSize: cellSize,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

func (g *grid) cellOf(p orb.Point) (cx, cy int, ok bool) {
	cx = int((p[0] - g.bound.Min[0]) / g.cellSize)
	cy = int((p[1] - g.bound.Min[1]) / g.cellSize)
	if cx < 0 || cx >= g.width || cy < 0 || cy >= g.height {
		return 0, 0, false
	}
	return cx, cy, true
}

// insert records an accepted point. The target cell must be empty: the cell
// size together with the minimum-distance rejection makes a second insert
// into the same cell unreachable, so an occupied cell is a bug in the
// sampler, not a runtime condition.
func (g *grid) insert(p orb.Point, idx int) {
	cx, cy, ok := g.cellOf(p)
	if !ok {
		return
	}
	cell := cy*g.width + cx
	if g.cells[cell] != -1 {
		panic("poisson: grid cell already occupied")
	}
	g.cells[cell] = idx
}

// hasNeighborWithin reports whether any accepted point lies closer than
// minDistance to p. Only the 3x3 block of cells around p's cell is scanned,
// short-circuiting on the first violation.
func (g *grid) hasNeighborWithin(p orb.Point, minDistance float64, points []orb.Point) bool {
	cx, cy, ok := g.cellOf(p)
	if !ok {
		return false
	}

	minDistSq := minDistance * minDistance
	for y := max(cy-1, 0); y <= min(cy+1, g.height-1); y++ {
		for x := max(cx-1, 0); x <= min(cx+1, g.width-1); x++ {
			idx := g.cells[y*g.width+x]
			if idx == -1 {
				continue
			}
			other := points[idx]
			dx := p[0] - other[0]
			dy := p[1] - other[1]
			if dx*dx+dy*dy < minDistSq {
				return true
			}
		}
	}
	return false
}
