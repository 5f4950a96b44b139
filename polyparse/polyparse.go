// Package polyparse turns CSV export rows into orb polygons.
//
// The input files are semicolon- or tab-delimited exports where one column
// carries the zone geometry as WKT. Rows are matched by substring, the WKT
// fragment is cut out of the row and parsed; everything around it is
// ignored.
package polyparse

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

var (
	// ErrNoPolygonData marks rows that carry no WKT polygon at all.
	ErrNoPolygonData = errors.New("no polygon data")
	// ErrMultiPolygon marks rows with MULTIPOLYGON geometry, which the
	// generator does not accept.
	ErrMultiPolygon = errors.New("MULTIPOLYGON is not supported")
	// ErrMalformedPolygon marks rows whose geometry parsed but fails basic
	// validity (fewer than 3 distinct exterior vertices).
	ErrMalformedPolygon = errors.New("malformed polygon")
)

// Row is one data line of the input file, header excluded.
type Row struct {
	// Line is the 1-based line number in the source file, kept for error
	// messages.
	Line int
	Raw  string
}

// ReadRows loads every non-empty data row of the file. The first line is
// always treated as a header and skipped.
func ReadRows(path string) ([]Row, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	lines := strings.Split(string(content), "\n")
	rows := make([]Row, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, Row{Line: i + 1, Raw: line})
	}
	return rows, nil
}

// CountRows returns the number of data rows ReadRows would yield.
func CountRows(path string) (int, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Polygon extracts and parses the WKT polygon carried by the row.
func (r Row) Polygon() (orb.Polygon, error) {
	return ParsePolygon(r.Raw)
}

// ParsePolygon extracts the WKT POLYGON fragment of a raw row and parses it
// into a closed, validated orb.Polygon.
func ParsePolygon(raw string) (orb.Polygon, error) {
	if strings.Contains(raw, "MULTIPOLYGON") {
		return nil, ErrMultiPolygon
	}
	start := strings.Index(raw, "POLYGON((")
	if start < 0 {
		return nil, ErrNoPolygonData
	}

	fragment, ok := cutBalanced(raw[start:])
	if !ok {
		return nil, fmt.Errorf("%w: unbalanced parentheses", ErrMalformedPolygon)
	}

	geom, err := wkt.Unmarshal(fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPolygon, err.Error())
	}
	poly, ok := geom.(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: geometry is %T", ErrMalformedPolygon, geom)
	}

	for i := range poly {
		closeRing(&poly[i])
	}
	if err := Validate(poly); err != nil {
		return nil, err
	}
	return poly, nil
}

// Validate checks the basic ring invariants: a present exterior ring with at
// least 3 distinct vertices, and no empty hole rings. Self-intersection is
// not detected; a self-intersecting ring yields whatever parity the
// containment ray cast produces.
func Validate(poly orb.Polygon) error {
	if len(poly) == 0 {
		return fmt.Errorf("%w: no rings", ErrMalformedPolygon)
	}
	for i, ring := range poly {
		n := distinctVertices(ring)
		if n < 3 {
			if i == 0 {
				return fmt.Errorf("%w: exterior ring has %d distinct vertices", ErrMalformedPolygon, n)
			}
			return fmt.Errorf("%w: hole %d has %d distinct vertices", ErrMalformedPolygon, i, n)
		}
	}
	return nil
}

// cutBalanced returns the prefix of s up to and including the parenthesis
// that closes the first opening one.
func cutBalanced(s string) (string, bool) {
	depth := 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

func closeRing(ring *orb.Ring) {
	if len(*ring) > 1 && !ring.Closed() {
		*ring = append(*ring, (*ring)[0])
	}
}

func distinctVertices(ring orb.Ring) int {
	seen := make(map[orb.Point]struct{}, len(ring))
	for _, p := range ring {
		seen[p] = struct{}{}
	}
	return len(seen)
}
