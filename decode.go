package xrow

import (
	"database/sql"
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Scan reconstructs one value of type T from a declared column list and one
// row of cells in the same order.
//
// Scalars decode from the single column; slices, arrays, and Shaper tuples
// decode positionally and must match the column count exactly; structs and
// maps match columns by name, exact and case-sensitive. A struct field whose
// column is absent fails with [ErrMissingColumn]; kind conflicts fail with
// [ErrTypeMismatch]; narrowing out of range fails with [ErrValueTooLarge],
// including a negative Integer presented to an unsigned destination.
func Scan[T any](columns []string, row []Cell) (T, error) {
	var out T
	if len(columns) != len(row) {
		return out, fmt.Errorf("%w: row has %d values for %d declared columns", ErrArityMismatch, len(row), len(columns))
	}
	dec := &rowDecoder{cols: columns, row: row}
	if err := describeRoot(&out, dec); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// rowDecoder is the deserialize-side Visitor. It writes decoded cells
// through description pointers, matching declared column names.
type rowDecoder struct {
	cols []string
	row  []Cell
}

// columns sizes positional destinations before they are described.
func (d *rowDecoder) columns() int { return len(d.row) }

func (d *rowDecoder) Scalar(v any) error {
	if len(d.row) == 0 {
		// Unit and optional destinations require no payload column.
		return decodeInto(Null(), v)
	}
	return decodeInto(d.row[0], v)
}

func (d *rowDecoder) Tuple(elems ...any) error {
	if len(elems) != len(d.row) {
		return fmt.Errorf("%w: %d elements for %d columns", ErrArityMismatch, len(elems), len(d.row))
	}
	for i, el := range elems {
		if err := decodeInto(d.row[i], el); err != nil {
			return fmt.Errorf("column %s: %w", d.colName(i), err)
		}
	}
	return nil
}

func (d *rowDecoder) Fields(fields ...Field) error {
	idx := make(map[string]int, len(d.cols))
	for i, name := range d.cols {
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	for _, f := range fields {
		i, ok := idx[f.Name]
		if !ok {
			return fmt.Errorf("%w: field %q has no declared column", ErrMissingColumn, f.Name)
		}
		if err := decodeInto(d.row[i], f.Value); err != nil {
			return fmt.Errorf("column %q: %w", f.Name, err)
		}
	}
	return nil
}

func (d *rowDecoder) MapOf(m any) error {
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: MapOf requires a non-nil map pointer", ErrUnsupportedStructure)
	}
	mv := rv.Elem()
	mt := mv.Type()
	if mt.Kind() != reflect.Map {
		return fmt.Errorf("%w: MapOf requires a map, got %s", ErrUnsupportedStructure, mt)
	}
	if mv.IsNil() {
		mv.Set(reflect.MakeMapWithSize(mt, len(d.cols)))
	}
	for i, name := range d.cols {
		key := reflect.New(mt.Key()).Elem()
		if err := keyFromText(name, key); err != nil {
			return err
		}
		val := reflect.New(mt.Elem()).Elem()
		if err := decodeValue(d.row[i], val); err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		mv.SetMapIndex(key, val)
	}
	return nil
}

func (d *rowDecoder) Variant(e Enum) error {
	rv := reflect.ValueOf(e)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: enum decode target must be a non-nil pointer", ErrUnsupportedStructure)
	}
	if len(d.row) == 0 {
		return fmt.Errorf("%w: enum requires a discriminant column", ErrArityMismatch)
	}
	return decodeVariant(d.row[0], rv.Elem())
}

func (d *rowDecoder) colName(i int) string {
	if i < len(d.cols) {
		return strconv.Quote(d.cols[i])
	}
	return strconv.Itoa(i)
}

func decodeInto(c Cell, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: decode destination must be a non-nil pointer", ErrUnsupportedStructure)
	}
	return decodeValue(c, rv.Elem())
}

// decodeValue writes one cell into an addressable destination, applying the
// inverse scalar mapping with explicit kind and range checks.
func decodeValue(c Cell, dst reflect.Value) error {
	rt := dst.Type()

	if k := rt.Kind(); k != reflect.Pointer && k != reflect.Interface {
		if rt.Implements(enumType) || reflect.PointerTo(rt).Implements(enumType) {
			return decodeVariant(c, dst)
		}
	}
	if reflect.PointerTo(rt).Implements(scannerType) {
		raw, err := c.Value()
		if err != nil {
			return err
		}
		return dst.Addr().Interface().(sql.Scanner).Scan(raw)
	}

	switch rt.Kind() {
	case reflect.Pointer:
		if c.IsNull() {
			dst.SetZero()
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.New(rt.Elem()))
		}
		return decodeValue(c, dst.Elem())
	case reflect.Interface:
		if rt.NumMethod() != 0 {
			return fmt.Errorf("%w: cannot decode into non-empty interface %s", ErrUnsupportedStructure, rt)
		}
		if c.IsNull() {
			dst.SetZero()
			return nil
		}
		dst.Set(reflect.ValueOf(c.anyValue()))
		return nil
	}

	// Unit destinations accept NULL or their own type name; nothing else.
	if rt.Kind() == reflect.Struct && rt != timeType && rt.NumField() == 0 {
		if c.IsNull() {
			return nil
		}
		if c.kind == KindText && (rt.Name() == "" || c.s == rt.Name()) {
			return nil
		}
		return mismatch(c, rt)
	}

	if c.IsNull() {
		return fmt.Errorf("%w: NULL into non-nullable %s", ErrTypeMismatch, rt)
	}

	switch rt.Kind() {
	case reflect.Bool:
		if c.kind != KindInteger {
			return mismatch(c, rt)
		}
		dst.SetBool(c.i != 0)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if c.kind != KindInteger {
			return mismatch(c, rt)
		}
		if dst.OverflowInt(c.i) {
			return fmt.Errorf("%w: integer %d overflows %s", ErrValueTooLarge, c.i, rt)
		}
		dst.SetInt(c.i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if c.kind != KindInteger {
			return mismatch(c, rt)
		}
		if c.i < 0 {
			return fmt.Errorf("%w: negative integer %d into unsigned %s", ErrValueTooLarge, c.i, rt)
		}
		if dst.OverflowUint(uint64(c.i)) {
			return fmt.Errorf("%w: integer %d overflows %s", ErrValueTooLarge, c.i, rt)
		}
		dst.SetUint(uint64(c.i))
		return nil

	case reflect.Float32, reflect.Float64:
		var f float64
		switch c.kind {
		case KindReal:
			f = c.f
		case KindInteger:
			f = float64(c.i)
		default:
			return mismatch(c, rt)
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("%w: real %v overflows %s", ErrValueTooLarge, f, rt)
		}
		dst.SetFloat(f)
		return nil

	case reflect.String:
		switch c.kind {
		case KindText:
			dst.SetString(c.s)
		case KindBlob:
			dst.SetString(string(c.b))
		default:
			return mismatch(c, rt)
		}
		return nil

	case reflect.Slice:
		if rt.Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("%w: %s cannot decode from a single column", ErrUnsupportedStructure, rt)
		}
		switch c.kind {
		case KindBlob:
			dst.SetBytes(append([]byte(nil), c.b...))
		case KindText:
			dst.SetBytes([]byte(c.s))
		default:
			return mismatch(c, rt)
		}
		return nil

	case reflect.Struct:
		if rt == timeType {
			if c.kind != KindText {
				return mismatch(c, rt)
			}
			t, err := time.Parse(time.RFC3339Nano, c.s)
			if err != nil {
				return fmt.Errorf("%w: %q is not an RFC 3339 timestamp", ErrTypeMismatch, c.s)
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot decode from a single column", ErrUnsupportedStructure, rt)
}

// decodeVariant matches a Text discriminant against the destination enum's
// declared variant set.
func decodeVariant(c Cell, dst reflect.Value) error {
	en, ok := dst.Addr().Interface().(Enum)
	if !ok {
		return fmt.Errorf("%w: %s is not an Enum", ErrUnsupportedStructure, dst.Type())
	}
	if c.kind != KindText {
		return fmt.Errorf("%w: cannot decode %s into enum %s", ErrTypeMismatch, c.Kind(), dst.Type())
	}
	for _, name := range en.Variants() {
		if name != c.s {
			continue
		}
		set, ok := dst.Addr().Interface().(VariantSetter)
		if !ok {
			return fmt.Errorf("%w: *%s does not implement VariantSetter", ErrUnsupportedStructure, dst.Type())
		}
		set.SetVariant(name)
		return nil
	}
	return fmt.Errorf("%w: %q is not a variant of %s", ErrUnknownVariant, c.s, dst.Type())
}

func mismatch(c Cell, rt reflect.Type) error {
	return fmt.Errorf("%w: cannot decode %s value %s into %s", ErrTypeMismatch, c.Kind(), c, rt)
}

// keyFromText reconstructs a map key from a column name's textual form.
func keyFromText(s string, key reflect.Value) error {
	if tu, ok := key.Addr().Interface().(encoding.TextUnmarshaler); ok {
		return tu.UnmarshalText([]byte(s))
	}
	switch key.Kind() {
	case reflect.String:
		key.SetString(s)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || key.OverflowInt(n) {
			return fmt.Errorf("%w: column %q is not a %s key", ErrTypeMismatch, s, key.Type())
		}
		key.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil || key.OverflowUint(n) {
			return fmt.Errorf("%w: column %q is not a %s key", ErrTypeMismatch, s, key.Type())
		}
		key.SetUint(n)
		return nil
	}
	return fmt.Errorf("%w: map key type %s has no textual form", ErrUnsupportedStructure, key.Type())
}
