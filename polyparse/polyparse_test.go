package polyparse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
)

func TestParsePolygonFromRow(t *testing.T) {
	raw := "42;Zone A;POLYGON((0 0,100 0,100 100,0 100,0 0));some;trailing;fields"

	poly, err := ParsePolygon(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(poly) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(poly))
	}
	if len(poly[0]) != 5 {
		t.Fatalf("expected 5 vertices, got %d", len(poly[0]))
	}
	if !poly[0].Closed() {
		t.Fatal("exterior ring not closed")
	}
}

func TestParsePolygonWithHole(t *testing.T) {
	raw := "7;POLYGON((0 0,100 0,100 100,0 100,0 0),(40 40,60 40,60 60,40 60,40 40));x"

	poly, err := ParsePolygon(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(poly) != 2 {
		t.Fatalf("expected exterior + hole, got %d rings", len(poly))
	}
	if !poly[1].Closed() {
		t.Fatal("hole ring not closed")
	}
}

func TestParsePolygonClosesOpenRing(t *testing.T) {
	poly, err := ParsePolygon("POLYGON((0 0,10 0,10 10,0 10))")
	if err != nil {
		t.Fatal(err)
	}
	ring := poly[0]
	if ring[0] != ring[len(ring)-1] {
		t.Fatalf("ring not closed: first %v last %v", ring[0], ring[len(ring)-1])
	}
}

func TestParsePolygonErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"no geometry", "42;Zone A;;", ErrNoPolygonData},
		{"multipolygon", "1;MULTIPOLYGON(((0 0,1 0,1 1,0 0)))", ErrMultiPolygon},
		{"unbalanced", "1;POLYGON((0 0,1 0,1 1", ErrMalformedPolygon},
		{"garbage coordinates", "1;POLYGON((a b,c d,e f))", ErrMalformedPolygon},
		{"collapsed ring", "1;POLYGON((0 0,1 1,0 0))", ErrMalformedPolygon},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePolygon(tc.raw)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestReadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.csv")
	content := "id;name;geometry\n" +
		"1;a;POLYGON((0 0,1 0,1 1,0 0))\n" +
		"\n" +
		"2;b;POLYGON((5 5,6 5,6 6,5 5))\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}
	// Line numbers are positions in the file, not in the parsed slice.
	if rows[0].Line != 2 || rows[1].Line != 4 {
		t.Fatalf("unexpected line numbers %d, %d", rows[0].Line, rows[1].Line)
	}

	n, err := CountRows(path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("CountRows = %d, want 2", n)
	}
}

func TestReadRowsMissingFile(t *testing.T) {
	if _, err := ReadRows(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRowPolygon(t *testing.T) {
	row := Row{Line: 3, Raw: "9;POLYGON((0 0,4 0,4 4,0 4,0 0))"}
	poly, err := row.Polygon()
	if err != nil {
		t.Fatal(err)
	}
	if got := poly.Bound(); got.Max != (orb.Point{4, 4}) {
		t.Fatalf("unexpected bound %v", got)
	}
}
