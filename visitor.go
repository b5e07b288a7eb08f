package xrow

// Visitor receives the shape of one row-bound value, one method per shape.
// The package implements it twice: the cell encoder (Marshal, MarshalNamed)
// reads through the supplied pointers, and the row decoder (Scan) writes
// through them. Descriptions always pass pointers so a single hand-written
// description serves both directions.
type Visitor interface {
	// Scalar describes a single-column value. v points at any supported
	// scalar type (bool, integers, floats, string, []byte, time.Time,
	// pointer-to-scalar, unit struct).
	Scalar(v any) error

	// Tuple describes a positional shape, one column per element, in order.
	Tuple(elems ...any) error

	// Fields describes a named-field shape. Columns are matched by name,
	// not position.
	Fields(fields ...Field) error

	// MapOf describes a map shape. m points at a map whose key type has a
	// textual form. Named binding indexes the entries by key; decoding
	// produces one entry per declared column.
	MapOf(m any) error

	// Variant describes an enumerated value: a single Text column holding
	// one of the enum's declared variant names.
	Variant(e Enum) error
}

// Field is one named slot of a Fields description. Value points at the
// field's storage.
type Field struct {
	Name  string
	Value any
}

// Shaper lets a type describe its own row shape instead of going through
// the reflection describer. Implement it on the pointer type:
//
//	type point struct{ x, y int64 }
//
//	func (p *point) DescribeRow(v xrow.Visitor) error {
//		return v.Fields(
//			xrow.Field{Name: "x", Value: &p.x},
//			xrow.Field{Name: "y", Value: &p.y},
//		)
//	}
type Shaper interface {
	DescribeRow(v Visitor) error
}

// Enum is an enumerated type whose variants carry no payload. It serializes
// as a Text cell holding the active variant's name; decoding matches the
// column text against Variants and rejects anything else with
// [ErrUnknownVariant].
type Enum interface {
	// Variant returns the active variant's name.
	Variant() string
	// Variants returns every declared variant name.
	Variants() []string
}

// VariantSetter must be implemented on the pointer type of any Enum that is
// a decode destination.
type VariantSetter interface {
	SetVariant(name string)
}
