package vegmodel

import "fmt"

// Vegetation type codes used across the CSV tooling and the UI.
const (
	TypeTrees     = 1
	TypeSurfaces  = 2
	TypeRocailles = 3
)

// Params controls one generation run. Density is the minimum distance
// between two generated points, in the coordinate units of the input
// polygons. Variation is the magnitude of the cosmetic jitter applied to
// exported coordinates. TypeValue is copied verbatim into every output
// record and never interpreted by the generator.
type Params struct {
	VegetationType int     `json:"vegetation_type"`
	Density        float64 `json:"density"`
	Variation      float64 `json:"variation"`
	TypeValue      int     `json:"type_value"`
}

func (p Params) Validate() error {
	if p.Density <= 0 {
		return fmt.Errorf("density must be positive, got %v", p.Density)
	}
	if p.Variation < 0 {
		return fmt.Errorf("variation must be non-negative, got %v", p.Variation)
	}
	return nil
}

// DefaultParams returns the built-in profile for a vegetation type.
// Unknown types fall back to the tree profile.
func DefaultParams(vegetationType int) Params {
	switch vegetationType {
	case TypeTrees:
		return Params{VegetationType: TypeTrees, Density: 10.0, Variation: 1.0, TypeValue: 10}
	case TypeSurfaces:
		return Params{VegetationType: TypeSurfaces, Density: 5.0, Variation: 0.5, TypeValue: 20}
	case TypeRocailles:
		return Params{VegetationType: TypeRocailles, Density: 3.0, Variation: 0.3, TypeValue: 30}
	default:
		return Params{VegetationType: vegetationType, Density: 10.0, Variation: 1.0, TypeValue: 10}
	}
}

// TypeName returns the display name for a vegetation type code.
func TypeName(vegetationType int) string {
	switch vegetationType {
	case TypeTrees:
		return "Trees"
	case TypeSurfaces:
		return "Surfaces"
	case TypeRocailles:
		return "Rocailles"
	default:
		return "Items"
	}
}
