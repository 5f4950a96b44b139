package vegmodel

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestDefaultParams(t *testing.T) {
	cases := []struct {
		vegetationType int
		want           Params
	}{
		{TypeTrees, Params{VegetationType: 1, Density: 10, Variation: 1, TypeValue: 10}},
		{TypeSurfaces, Params{VegetationType: 2, Density: 5, Variation: 0.5, TypeValue: 20}},
		{TypeRocailles, Params{VegetationType: 3, Density: 3, Variation: 0.3, TypeValue: 30}},
		// Unknown types keep their code but use the tree profile.
		{9, Params{VegetationType: 9, Density: 10, Variation: 1, TypeValue: 10}},
	}
	for _, tc := range cases {
		if got := DefaultParams(tc.vegetationType); got != tc.want {
			t.Fatalf("DefaultParams(%d) = %+v, want %+v", tc.vegetationType, got, tc.want)
		}
	}
}

func TestParamsValidate(t *testing.T) {
	if err := (Params{VegetationType: 1, Density: 10, Variation: 0}).Validate(); err != nil {
		t.Fatal(err)
	}
	if err := (Params{VegetationType: 1, Density: 0}).Validate(); err == nil {
		t.Fatal("expected error for zero density")
	}
	if err := (Params{VegetationType: 1, Density: 5, Variation: -0.5}).Validate(); err == nil {
		t.Fatal("expected error for negative variation")
	}
}

func TestTypeName(t *testing.T) {
	names := map[int]string{1: "Trees", 2: "Surfaces", 3: "Rocailles", 99: "Items"}
	for code, want := range names {
		if got := TypeName(code); got != want {
			t.Fatalf("TypeName(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestRecordRoundTrip(t *testing.T) {
	p := orb.Point{12.5, -3.75}
	rec := RecordFromPoint(p, 20)
	if rec.X != p[0] || rec.Y != p[1] || rec.TypeValue != 20 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Point() != p {
		t.Fatalf("Point() = %v, want %v", rec.Point(), p)
	}
}
