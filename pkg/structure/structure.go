// Package structure turns projected S-entry rows into crystal
// structure objects. Builders are pluggable per flavor, so alternative
// object models can be swapped in without touching the retrieval core.
package structure

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tilde-lab/mpds-client-go/pkg/projection"
)

// StructureFields is the S-entry field list a buildable row must end
// with, in order.
var StructureFields = []projection.Selector{
	projection.Path("cell_abc"),
	projection.Path("sg_n"),
	projection.Path("setting"),
	projection.Path("basis_noneq"),
	projection.Path("els_noneq"),
}

// Site is one non-equivalent atomic position.
type Site struct {
	// Element is the chemical element symbol.
	Element string

	// Position is the fractional coordinate within the unit cell.
	Position [3]float64
}

// Structure is a crystal structure assembled from an MPDS S-entry.
type Structure struct {
	// CellABC holds a, b, c (angstrom) and alpha, beta, gamma (degrees).
	CellABC [6]float64

	// SpaceGroup is the space group number (1-230).
	SpaceGroup int

	// Setting is the space group setting ("1", "2" or empty).
	Setting string

	// Lattice holds the lattice vectors derived from CellABC, rows are
	// vectors.
	Lattice [3][3]float64

	// Sites are the non-equivalent atomic positions. Symmetry
	// expansion is left to downstream tooling.
	Sites []Site
}

// Builder constructs a structure object from a projected data row that
// ends with the StructureFields columns.
type Builder interface {
	// Build returns (nil, nil) for rows carrying no atomic basis: such
	// rows are either P-entries matching the search criterion or
	// low-quality structures with unit cell parameters only.
	Build(row projection.Row) (*Structure, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Builder{}
)

// Register makes a builder available under the given flavor name.
func Register(flavor string, b Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[flavor] = b
}

// ForFlavor returns the builder registered under flavor. Availability
// is a configuration-time capability check: an unknown flavor is an
// error here, never a runtime type failure later.
func ForFlavor(flavor string) (Builder, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	b, ok := registry[flavor]
	if !ok {
		return nil, fmt.Errorf("crystal structure treatment unavailable for flavor %q (have %v)", flavor, Flavors())
	}
	return b, nil
}

// Flavors lists the registered builder names, sorted.
func Flavors() []string {
	flavors := make([]string, 0, len(registry))
	for name := range registry {
		flavors = append(flavors, name)
	}
	sort.Strings(flavors)
	return flavors
}

func init() {
	Register("cell", cellBuilder{})
}

// cellBuilder is the built-in flavor: lattice vectors computed
// directly from cell parameters, sites kept as the non-equivalent
// basis.
type cellBuilder struct{}

func (cellBuilder) Build(row projection.Row) (*Structure, error) {
	if len(row) == 0 || isEmptyValue(row[len(row)-1]) {
		return nil, nil
	}

	if len(row) < 5 {
		return nil, fmt.Errorf(
			"must supply a data row that ends with the entries " +
				"'cell_abc', 'sg_n', 'setting', 'basis_noneq', 'els_noneq'")
	}

	n := len(row)

	cellABC, err := toFloat6(row[n-5])
	if err != nil {
		return nil, fmt.Errorf("cell_abc: %w", err)
	}

	sgn, err := toInt(row[n-4])
	if err != nil {
		return nil, fmt.Errorf("sg_n: %w", err)
	}

	setting, _ := row[n-3].(string)

	basis, err := toCoords(row[n-2])
	if err != nil {
		return nil, fmt.Errorf("basis_noneq: %w", err)
	}

	els, err := toStrings(row[n-1])
	if err != nil {
		return nil, fmt.Errorf("els_noneq: %w", err)
	}

	if len(basis) != len(els) {
		return nil, fmt.Errorf("basis_noneq has %d sites but els_noneq has %d elements", len(basis), len(els))
	}

	sites := make([]Site, len(els))
	for i := range els {
		sites[i] = Site{Element: els[i], Position: basis[i]}
	}

	return &Structure{
		CellABC:    cellABC,
		SpaceGroup: sgn,
		Setting:    setting,
		Lattice:    latticeFromParameters(cellABC),
		Sites:      sites,
	}, nil
}

// latticeFromParameters converts cell parameters to lattice vectors in
// the standard crystallographic orientation: a along x, b in the xy
// plane.
func latticeFromParameters(cell [6]float64) [3][3]float64 {
	a, b, c := cell[0], cell[1], cell[2]
	alpha := cell[3] * math.Pi / 180
	beta := cell[4] * math.Pi / 180
	gamma := cell[5] * math.Pi / 180

	cosAlpha, cosBeta, cosGamma := math.Cos(alpha), math.Cos(beta), math.Cos(gamma)
	sinGamma := math.Sin(gamma)

	cx := c * cosBeta
	cy := c * (cosAlpha - cosBeta*cosGamma) / sinGamma
	cz := math.Sqrt(math.Max(0, c*c-cx*cx-cy*cy))

	return [3][3]float64{
		{a, 0, 0},
		{b * cosGamma, b * sinGamma, 0},
		{cx, cy, cz},
	}
}

func isEmptyValue(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case []any:
		return len(value) == 0
	case []string:
		return len(value) == 0
	case string:
		return value == ""
	default:
		return false
	}
}

func toFloat(v any) (float64, error) {
	switch value := v.(type) {
	case float64:
		return value, nil
	case int:
		return float64(value), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func toInt(v any) (int, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func toFloat6(v any) ([6]float64, error) {
	var out [6]float64

	list, ok := v.([]any)
	if !ok {
		return out, fmt.Errorf("expected list of 6 numbers, got %T", v)
	}
	if len(list) != 6 {
		return out, fmt.Errorf("expected 6 cell parameters, got %d", len(list))
	}

	for i, item := range list {
		f, err := toFloat(item)
		if err != nil {
			return out, err
		}
		out[i] = f
	}
	return out, nil
}

func toCoords(v any) ([][3]float64, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list of coordinates, got %T", v)
	}

	coords := make([][3]float64, len(list))
	for i, item := range list {
		triple, ok := item.([]any)
		if !ok || len(triple) != 3 {
			return nil, fmt.Errorf("site %d: expected 3 fractional coordinates", i)
		}
		for j, coord := range triple {
			f, err := toFloat(coord)
			if err != nil {
				return nil, fmt.Errorf("site %d: %w", i, err)
			}
			coords[i][j] = f
		}
	}
	return coords, nil
}

func toStrings(v any) ([]string, error) {
	switch value := v.(type) {
	case []string:
		return value, nil
	case []any:
		out := make([]string, len(value))
		for i, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %T", i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of element symbols, got %T", v)
	}
}
