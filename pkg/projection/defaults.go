package projection

// DefaultFieldSpec returns the field specification used when a caller
// asks for data without naming fields. P and C rows carry seven
// columns matching DefaultTitles; S rows carry six, leaving the Value
// column empty in a mixed table.
func DefaultFieldSpec() FieldSpec {
	return FieldSpec{
		KindStructure: {
			Path("phase_id"),
			Path("chemical_formula"),
			Path("sg_n"),
			Path("entry"),
			Const{Value: "crystal structure"},
			Const{Value: "A"},
		},
		KindProperty: {
			Path("sample.material.phase_id"),
			Path("sample.material.chemical_formula"),
			Path("sample.material.condition[0].scalar[0].value"),
			Path("sample.material.entry"),
			Path("sample.measurement[0].property.name"),
			Path("sample.measurement[0].property.units"),
			Path("sample.measurement[0].property.scalar"),
		},
		KindDiagram: {
			Const{Value: nil},
			Path("title"),
			Const{Value: nil},
			Path("entry"),
			Const{Value: "phase diagram"},
			Path("naxes"),
			Path("arity"),
		},
	}
}

// DefaultTitles are the column names matching DefaultFieldSpec.
var DefaultTitles = []string{"Phase", "Formula", "SG", "Entry", "Property", "Units", "Value"}
