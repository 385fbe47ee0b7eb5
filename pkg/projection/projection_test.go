package projection

import (
	"errors"
	"testing"
)

func structureRecord() map[string]any {
	return map[string]any{
		"object_type":      "S",
		"phase_id":         float64(1234),
		"chemical_formula": "SrTiO3",
		"sg_n":             float64(99),
		"entry":            "S251615",
	}
}

func propertyRecord() map[string]any {
	return map[string]any{
		"object_type": "P",
		"sample": map[string]any{
			"material": map[string]any{
				"phase_id":         float64(1234),
				"chemical_formula": "SrTiO3",
				"entry":            "P100001",
				"condition": []any{
					map[string]any{
						"scalar": []any{
							map[string]any{"value": float64(300)},
						},
					},
				},
			},
			"measurement": []any{
				map[string]any{
					"property": map[string]any{
						"name":   "band gap",
						"units":  "eV",
						"scalar": float64(3.25),
					},
				},
			},
		},
	}
}

func TestCompile_InvalidPath(t *testing.T) {
	_, err := Compile(FieldSpec{
		KindStructure: {Path("entry[")},
	})
	if err == nil {
		t.Fatal("Compile() with invalid path expression succeeded, want error")
	}
}

func TestCompile_EmptyIsIdentity(t *testing.T) {
	for _, spec := range []FieldSpec{nil, {}} {
		compiled, err := Compile(spec)
		if err != nil {
			t.Fatalf("Compile(%v) error: %v", spec, err)
		}
		if !compiled.Identity() {
			t.Errorf("Compile(%v).Identity() = false, want true", spec)
		}
	}
}

func TestProject_IdentityPassesRecordThrough(t *testing.T) {
	for _, spec := range []FieldSpec{nil, {}} {
		compiled, err := Compile(spec)
		if err != nil {
			t.Fatalf("Compile(%v) error: %v", spec, err)
		}

		record := structureRecord()
		row, err := compiled.Project(record)
		if err != nil {
			t.Fatalf("Project() error: %v", err)
		}
		if len(row) != 1 {
			t.Fatalf("Project() row = %v, want single pass-through column", row)
		}

		got, ok := row[0].(map[string]any)
		if !ok || got["entry"] != "S251615" {
			t.Errorf("row[0] = %v, want the raw record", row[0])
		}
	}
}

func TestProject_RowWidth(t *testing.T) {
	spec := FieldSpec{
		KindStructure: {Path("phase_id"), Path("entry"), Const{Value: "A"}},
	}
	compiled, err := Compile(spec)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	row, err := compiled.Project(structureRecord())
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if len(row) != 3 {
		t.Errorf("Project() row width = %d, want 3", len(row))
	}
	if compiled.Width(KindStructure) != 3 {
		t.Errorf("Width(S) = %d, want 3", compiled.Width(KindStructure))
	}
}

func TestProject_PathAndConstSelectors(t *testing.T) {
	spec := FieldSpec{
		KindProperty: {
			Path("sample.material.phase_id"),
			Path("sample.measurement[0].property.name"),
			Path("sample.measurement[0].property.scalar"),
			Const{Value: "eV"},
		},
	}
	compiled, err := Compile(spec)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	row, err := compiled.Project(propertyRecord())
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}

	want := []any{float64(1234), "band gap", float64(3.25), "eV"}
	if len(row) != len(want) {
		t.Fatalf("row = %v, want %v", row, want)
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d] = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestProject_MissingPathYieldsNil(t *testing.T) {
	spec := FieldSpec{
		KindStructure: {Path("no.such.field")},
	}
	compiled, err := Compile(spec)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	row, err := compiled.Project(structureRecord())
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if len(row) != 1 || row[0] != nil {
		t.Errorf("row = %v, want [nil]", row)
	}
}

func TestProject_UnknownKind(t *testing.T) {
	compiled, err := Compile(FieldSpec{
		KindStructure: {Path("entry")},
	})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	tests := []struct {
		name   string
		record map[string]any
	}{
		{"unknown tag", map[string]any{"object_type": "X", "entry": "X1"}},
		{"missing tag", map[string]any{"entry": "X1"}},
		{"non-string tag", map[string]any{"object_type": float64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := compiled.Project(tt.record)
			if !errors.Is(err, ErrUnknownKind) {
				t.Errorf("Project() error = %v, want ErrUnknownKind", err)
			}
			if row != nil {
				t.Errorf("Project() row = %v, want nil on unknown kind", row)
			}
		})
	}
}

func TestProject_KindAbsentFromSpec(t *testing.T) {
	// A known kind without selectors is legal and projects to an empty
	// row; only unrecognized discriminators are rejected.
	compiled, err := Compile(FieldSpec{
		KindProperty: {Path("sample.material.entry")},
	})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	row, err := compiled.Project(structureRecord())
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if len(row) != 0 {
		t.Errorf("Project() row width = %d, want 0", len(row))
	}
}

func TestDefaultFieldSpec_Compiles(t *testing.T) {
	compiled, err := Compile(DefaultFieldSpec())
	if err != nil {
		t.Fatalf("Compile(DefaultFieldSpec()) error: %v", err)
	}

	if got := compiled.Width(KindProperty); got != len(DefaultTitles) {
		t.Errorf("Width(P) = %d, want %d", got, len(DefaultTitles))
	}
	if got := compiled.Width(KindDiagram); got != len(DefaultTitles) {
		t.Errorf("Width(C) = %d, want %d", got, len(DefaultTitles))
	}
	if got := compiled.Width(KindStructure); got != len(DefaultTitles)-1 {
		t.Errorf("Width(S) = %d, want %d", got, len(DefaultTitles)-1)
	}

	row, err := compiled.Project(propertyRecord())
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if row[0] != float64(1234) || row[4] != "band gap" {
		t.Errorf("default projection row = %v", row)
	}
}
