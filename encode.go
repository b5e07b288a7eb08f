package xrow

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Cells is the ordered cell list Marshal produces for positional binding.
type Cells []Cell

// Args adapts the list for database/sql; each cell binds through its
// [driver.Valuer] implementation.
//
//	cells, _ := xrow.Marshal(value)
//	_, err := db.ExecContext(ctx, `INSERT INTO t VALUES(?, ?, ?)`, cells.Args()...)
func (cs Cells) Args() []any {
	out := make([]any, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

// NamedCells is the name-indexed lookup MarshalNamed produces. A statement's
// parameter order is applied explicitly with Bind; the lookup itself carries
// no order, which is the point: map and struct sources must never bind in
// their own iteration order.
type NamedCells map[string]Cell

// Bind re-sorts the lookup into the declared parameter order of a statement
// and returns positional arguments ready for database/sql. A name in columns
// with no cell in the lookup fails with [ErrMissingColumn].
func (nc NamedCells) Bind(columns []string) ([]any, error) {
	out := make([]any, len(columns))
	for i, name := range columns {
		c, ok := nc[name]
		if !ok {
			return nil, fmt.Errorf("%w: no value for parameter %q", ErrMissingColumn, name)
		}
		out[i] = c
	}
	return out, nil
}

// Args returns [sql.Named] arguments for drivers with native named-parameter
// support, in lexical name order for determinism.
func (nc NamedCells) Args() []any {
	names := make([]string, 0, len(nc))
	for name := range nc {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]any, len(names))
	for i, name := range names {
		out[i] = sql.Named(name, nc[name])
	}
	return out
}

// Marshal converts one value into its ordered cell list.
//
// Scalars produce a single cell; slices and arrays (other than []byte) one
// cell per element in order; structs one cell per field in declared order;
// Shaper types whatever their description emits. A unit value produces a
// single cell: Text holding the type's name for a named zero-field struct,
// Null for struct{} itself and for nil.
//
// Maps are rejected with [ErrUnsupportedStructure]: their iteration order is
// undefined, so positional binding must go through MarshalNamed and
// [NamedCells.Bind] instead.
func Marshal(v any) (Cells, error) {
	enc := &cellEncoder{}
	if err := describeRoot(v, enc); err != nil {
		return nil, err
	}
	return enc.cells, nil
}

// MarshalNamed converts a struct, map, or Fields-shaped Shaper into a
// name-indexed cell lookup for named binding. Struct fields name their cells
// by `db` tag or lower-cased field name; map keys by their textual form.
func MarshalNamed(v any) (NamedCells, error) {
	enc := &cellEncoder{named: true, byName: NamedCells{}}
	if err := describeRoot(v, enc); err != nil {
		return nil, err
	}
	return enc.byName, nil
}

// cellEncoder is the serialize-side Visitor. It reads through description
// pointers and accumulates cells positionally or by name.
type cellEncoder struct {
	named  bool
	cells  Cells
	byName NamedCells
}

func (e *cellEncoder) emit(name string, c Cell) error {
	if !e.named {
		e.cells = append(e.cells, c)
		return nil
	}
	if name == "" {
		return fmt.Errorf("%w: named binding requires a struct or map source", ErrUnsupportedStructure)
	}
	e.byName[name] = c
	return nil
}

func (e *cellEncoder) Scalar(v any) error {
	c, err := scalarOf(v)
	if err != nil {
		return err
	}
	return e.emit("", c)
}

func (e *cellEncoder) Tuple(elems ...any) error {
	for i, el := range elems {
		c, err := scalarOf(el)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		if err := e.emit("", c); err != nil {
			return err
		}
	}
	return nil
}

func (e *cellEncoder) Fields(fields ...Field) error {
	for _, f := range fields {
		c, err := scalarOf(f.Value)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		if err := e.emit(f.Name, c); err != nil {
			return err
		}
	}
	return nil
}

func (e *cellEncoder) MapOf(m any) error {
	if !e.named {
		return fmt.Errorf("%w: map iteration order is undefined; marshal maps with MarshalNamed and bind with NamedCells.Bind", ErrUnsupportedStructure)
	}
	rv := reflect.ValueOf(m)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map {
		return fmt.Errorf("%w: MapOf requires a map, got %s", ErrUnsupportedStructure, rv.Type())
	}
	iter := rv.MapRange()
	for iter.Next() {
		name, err := keyText(iter.Key())
		if err != nil {
			return err
		}
		c, err := scalarOf(iter.Value().Interface())
		if err != nil {
			return fmt.Errorf("key %q: %w", name, err)
		}
		if err := e.emit(name, c); err != nil {
			return err
		}
	}
	return nil
}

func (e *cellEncoder) Variant(en Enum) error {
	return e.emit("", Text(en.Variant()))
}

// scalarOf converts one Go value into a single cell. Description pointers
// and optional wrappers are followed; a nil anywhere along the chain is Null.
func scalarOf(v any) (Cell, error) {
	if v == nil {
		return Null(), nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Null(), nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return Null(), nil
	}

	if rv.CanInterface() {
		if en, ok := rv.Interface().(Enum); ok {
			return Text(en.Variant()), nil
		}
		if dv, ok := rv.Interface().(driver.Valuer); ok {
			raw, err := dv.Value()
			if err != nil {
				return Cell{}, err
			}
			var c Cell
			if err := c.Scan(raw); err != nil {
				return Cell{}, err
			}
			return c, nil
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return Int(1), nil
		}
		return Int(0), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Cell{}, fmt.Errorf("%w: unsigned value %d exceeds the integer cell maximum %d", ErrValueTooLarge, u, int64(math.MaxInt64))
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Real(rv.Float()), nil
	case reflect.String:
		return Text(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Blob(rv.Bytes()), nil
		}
	case reflect.Struct:
		if rv.Type() == timeType {
			return Text(rv.Interface().(time.Time).Format(time.RFC3339Nano)), nil
		}
		if rv.NumField() == 0 {
			if name := rv.Type().Name(); name != "" {
				return Text(name), nil
			}
			return Null(), nil
		}
	}
	return Cell{}, fmt.Errorf("%w: %s has no single-cell form", ErrUnsupportedStructure, rv.Type())
}

// keyText renders a map key in its textual column-name form.
func keyText(k reflect.Value) (string, error) {
	if k.CanInterface() {
		if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
			b, err := tm.MarshalText()
			return string(b), err
		}
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("%w: map key type %s has no textual form", ErrUnsupportedStructure, k.Type())
}
