// Package rowindex answers "which input row's polygon contains this point".
// The preview UI uses it to map a clicked map position back to the CSV row
// it came from. Bounding boxes go into a qtree; exact containment is
// settled with a planar ray cast on the candidates.
package rowindex

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/qtree"

	"github.com/vegepoly/vegepoly/polyparse"
)

// Entry is one indexed row with its parsed geometry.
type Entry struct {
	Row     polyparse.Row
	Polygon orb.Polygon
}

type Index struct {
	mu      sync.RWMutex
	entries []Entry
	qt      qtree.QTree
}

func New() *Index {
	return &Index{}
}

// FromRows parses and indexes every row that carries a valid polygon.
// Invalid rows are skipped; they simply cannot be located.
func FromRows(rows []polyparse.Row) *Index {
	idx := New()
	for _, row := range rows {
		poly, err := row.Polygon()
		if err != nil {
			continue
		}
		idx.Insert(row, poly)
	}
	return idx
}

func (idx *Index) Insert(row polyparse.Row, poly orb.Polygon) {
	bound := poly.Bound()

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.qt.Insert(bound.Min, bound.Max, uint64(len(idx.entries)))
	idx.entries = append(idx.entries, Entry{Row: row, Polygon: poly})
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Locate returns the first indexed row whose polygon contains the point.
func (idx *Index) Locate(point orb.Point) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out Entry
	found := false

	idx.qt.Search(point, point, func(_, _ [2]float64, data interface{}) bool {
		entry := idx.entries[data.(uint64)]
		if planar.PolygonContains(entry.Polygon, point) {
			out = entry
			found = true
			return false
		}
		return true
	})

	return out, found
}
