package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tilde-lab/mpds-client-go/internal/testutil"
)

// structureEntry builds a full S-entry with an atomic basis, as the
// facet endpoint serves it for props=atomic structure.
func structureEntry(entry string) map[string]any {
	return map[string]any{
		"object_type":      "S",
		"entry":            entry,
		"chemical_formula": "NaCl",
		"phase_id":         1,
		"sg_n":             225,
		"cell_abc":         []any{5.64, 5.64, 5.64, 90.0, 90.0, 90.0},
		"setting":          "1",
		"basis_noneq":      []any{[]any{0.0, 0.0, 0.0}, []any{0.5, 0.5, 0.5}},
		"els_noneq":        []any{"Na", "Cl"},
	}
}

// basislessEntry has cell parameters only, no atomic positions.
func basislessEntry(entry string) map[string]any {
	return map[string]any{
		"object_type":      "S",
		"entry":            entry,
		"chemical_formula": "NaCl",
		"phase_id":         1,
		"sg_n":             225,
		"cell_abc":         []any{5.64, 5.64, 5.64, 90.0, 90.0, 90.0},
		"setting":          "1",
		"basis_noneq":      []any{},
		"els_noneq":        []any{},
	}
}

func TestGetCrystals(t *testing.T) {
	mock := testutil.NewMockMPDS()
	defer mock.Close()

	mock.SetPage("", 0, testutil.PageResponse{
		Records: []map[string]any{
			structureEntry("S1"),
			basislessEntry("S2"),
			structureEntry("S3"),
		},
		Count:  3,
		NPages: 1,
	})

	c := newTestClient(t, mock.URL())

	crystals, err := c.GetCrystals(context.Background(), Query{"elements": "Na-Cl"}, nil, "cell")
	if err != nil {
		t.Fatalf("GetCrystals() error: %v", err)
	}

	// Basisless rows are skipped, not errors.
	if len(crystals) != 2 {
		t.Fatalf("len(crystals) = %d, want 2", len(crystals))
	}

	got := crystals[0]
	if got.SpaceGroup != 225 {
		t.Errorf("SpaceGroup = %d, want 225", got.SpaceGroup)
	}
	if got.CellABC[0] != 5.64 {
		t.Errorf("CellABC[0] = %v, want 5.64", got.CellABC[0])
	}
	if len(got.Sites) != 2 || got.Sites[0].Element != "Na" || got.Sites[1].Element != "Cl" {
		t.Errorf("Sites = %+v", got.Sites)
	}

	// The search is forced to atomic structures.
	var sent map[string]any
	if err := json.Unmarshal([]byte(mock.LastQuery), &sent); err != nil {
		t.Fatalf("q param is not JSON: %v", err)
	}
	if sent["props"] != "atomic structure" {
		t.Errorf("q props = %v, want atomic structure", sent["props"])
	}
	if sent["elements"] != "Na-Cl" {
		t.Errorf("q elements = %v, want Na-Cl", sent["elements"])
	}
}

func TestGetCrystals_QueryNotMutated(t *testing.T) {
	mock := testutil.NewMockMPDS()
	defer mock.Close()

	mock.SetPage("", 0, testutil.PageResponse{
		Records: []map[string]any{structureEntry("S1")},
		Count:   1,
		NPages:  1,
	})

	c := newTestClient(t, mock.URL())

	query := Query{"elements": "Na-Cl"}
	if _, err := c.GetCrystals(context.Background(), query, nil, "cell"); err != nil {
		t.Fatalf("GetCrystals() error: %v", err)
	}

	if _, ok := query["props"]; ok {
		t.Error("caller query was mutated with props")
	}
}

func TestGetCrystals_UnknownFlavor(t *testing.T) {
	mock := testutil.NewMockMPDS()
	defer mock.Close()

	c := newTestClient(t, mock.URL())

	_, err := c.GetCrystals(context.Background(), Query{"elements": "Na-Cl"}, nil, "ase")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != ErrorKindConfig {
		t.Fatalf("GetCrystals() error = %v, want config APIError", err)
	}
	if mock.GetRequestCount() != 0 {
		t.Errorf("requests = %d, want 0 (fail before any request)", mock.GetRequestCount())
	}
}

func TestGetCrystals_MalformedEntry(t *testing.T) {
	mock := testutil.NewMockMPDS()
	defer mock.Close()

	bad := structureEntry("S1")
	bad["cell_abc"] = []any{5.64, 5.64}

	mock.SetPage("", 0, testutil.PageResponse{
		Records: []map[string]any{bad},
		Count:   1,
		NPages:  1,
	})

	c := newTestClient(t, mock.URL())

	_, err := c.GetCrystals(context.Background(), Query{"elements": "Na-Cl"}, nil, "cell")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != ErrorKindProtocol {
		t.Fatalf("GetCrystals() error = %v, want protocol APIError", err)
	}
}
