package vegmodel

import "github.com/paulmach/orb"

// PointRecord is a single generated vegetation point as it leaves the
// pipeline: final (jittered) coordinates plus the opaque type value.
type PointRecord struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	TypeValue int     `json:"type_value"`
}

func RecordFromPoint(p orb.Point, typeValue int) PointRecord {
	return PointRecord{X: p[0], Y: p[1], TypeValue: typeValue}
}

func (r PointRecord) Point() orb.Point {
	return orb.Point{r.X, r.Y}
}
