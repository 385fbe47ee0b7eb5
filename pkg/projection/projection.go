// Package projection compiles a field specification into a reusable
// extractor and flattens heterogeneous MPDS records into fixed-width
// rows. Selectors are either JMESPath expressions evaluated against
// the raw record, or constants injected as synthetic columns.
package projection

import (
	"errors"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// Kind discriminates the three MPDS record schemata.
type Kind string

const (
	// KindStructure tags S-entries (crystal structures).
	KindStructure Kind = "S"

	// KindProperty tags P-entries (physical property measurements).
	KindProperty Kind = "P"

	// KindDiagram tags C-entries (phase diagrams).
	KindDiagram Kind = "C"
)

// kindTag is the discriminator field carried by every record.
const kindTag = "object_type"

// ErrUnknownKind is returned when a record's discriminator matches none
// of the known kinds. This indicates a schema mismatch between client
// and server and is never silently skipped.
var ErrUnknownKind = errors.New("unknown data type")

// Selector picks one column value out of a raw record.
type Selector interface {
	selector()
}

// Path selects by a JMESPath expression, e.g.
// "sample.measurement[0].property.scalar".
type Path string

// Const ignores the record and always yields the same value. Used to
// inject derived columns absent from some sub-schemata, e.g. a unit
// label.
type Const struct {
	Value any
}

func (Path) selector()  {}
func (Const) selector() {}

// FieldSpec maps a record kind to the ordered selectors producing that
// kind's row. Kinds absent from the spec project to zero-width rows.
type FieldSpec map[Kind][]Selector

// Row is one projected result: a fixed-width ordered sequence of
// values, width equal to the selector count of the record's kind.
type Row []any

type compiledSelector struct {
	expr     *jmespath.JMESPath // nil for constants
	constant any
}

// CompiledSpec is an executable field specification. Compiled once per
// retrieval and immutable thereafter.
type CompiledSpec struct {
	columns map[Kind][]compiledSelector
}

// Compile turns spec into an executable form. A syntactically invalid
// path expression fails compilation. A nil or empty spec compiles to
// the identity projection (see Identity).
func Compile(spec FieldSpec) (*CompiledSpec, error) {
	if len(spec) == 0 {
		return &CompiledSpec{}, nil
	}

	columns := make(map[Kind][]compiledSelector, len(spec))
	for kind, selectors := range spec {
		compiled := make([]compiledSelector, 0, len(selectors))
		for _, sel := range selectors {
			switch s := sel.(type) {
			case Path:
				expr, err := jmespath.Compile(string(s))
				if err != nil {
					return nil, fmt.Errorf("compile selector %q for kind %s: %w", string(s), kind, err)
				}
				compiled = append(compiled, compiledSelector{expr: expr})
			case Const:
				compiled = append(compiled, compiledSelector{constant: s.Value})
			default:
				return nil, fmt.Errorf("unsupported selector %T for kind %s", sel, kind)
			}
		}
		columns[kind] = compiled
	}

	return &CompiledSpec{columns: columns}, nil
}

// Identity reports whether the spec performs no projection, i.e. the
// caller wants raw records passed through unmodified.
func (c *CompiledSpec) Identity() bool {
	return c == nil || len(c.columns) == 0
}

// Project flattens record into a row. The record's discriminator must
// name one of the known kinds; anything else fails with ErrUnknownKind.
// A known kind without selectors yields an empty row. The identity
// projection passes the raw record through as a single-column row
// without inspecting the discriminator.
func (c *CompiledSpec) Project(record map[string]any) (Row, error) {
	if c.Identity() {
		return Row{record}, nil
	}

	tag, _ := record[kindTag].(string)

	switch Kind(tag) {
	case KindStructure, KindProperty, KindDiagram:
	default:
		return nil, fmt.Errorf("%w: object_type %q", ErrUnknownKind, tag)
	}

	selectors := c.columns[Kind(tag)]
	row := make(Row, 0, len(selectors))
	for _, sel := range selectors {
		if sel.expr != nil {
			value, err := sel.expr.Search(record)
			if err != nil {
				return nil, fmt.Errorf("evaluate selector for kind %s: %w", tag, err)
			}
			row = append(row, value)
			continue
		}
		row = append(row, sel.constant)
	}

	return row, nil
}

// Width returns the row width for kind, zero when the kind is absent.
func (c *CompiledSpec) Width(kind Kind) int {
	if c == nil {
		return 0
	}
	return len(c.columns[kind])
}
