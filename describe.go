package xrow

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"time"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	enumType    = reflect.TypeOf((*Enum)(nil)).Elem()
	shaperType  = reflect.TypeOf((*Shaper)(nil)).Elem()
	valuerType  = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
)

// describeRoot presents one application value to a Visitor. Shaper types
// describe themselves; everything else goes through the reflection walk.
// The value is copied into addressable storage first so descriptions can
// hand out pointers regardless of how the caller passed it.
func describeRoot(v any, vis Visitor) error {
	if v == nil {
		var null any
		return vis.Scalar(&null)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return describeValue(rv.Elem(), vis)
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return describeValue(p.Elem(), vis)
}

// describeValue routes an addressable value to the Visitor method matching
// its shape. Pointers to composite shapes are followed; pointers to scalars
// stay intact so NULL handling lives with the scalar rules.
func describeValue(rv reflect.Value, vis Visitor) error {
	rt := rv.Type()

	// Pointer and interface enum/shaper destinations route through the
	// pointer and scalar paths below, which own nil and NULL handling.
	if k := rt.Kind(); k != reflect.Pointer && k != reflect.Interface {
		if rt.Implements(enumType) || reflect.PointerTo(rt).Implements(enumType) {
			return vis.Variant(rv.Addr().Interface().(Enum))
		}
		if reflect.PointerTo(rt).Implements(shaperType) {
			return rv.Addr().Interface().(Shaper).DescribeRow(vis)
		}
	}

	switch rt.Kind() {
	case reflect.Pointer:
		if isComposite(rt.Elem()) {
			if rv.IsNil() {
				if _, decoding := vis.(interface{ columns() int }); !decoding {
					return vis.Scalar(rv.Addr().Interface())
				}
				rv.Set(reflect.New(rt.Elem()))
			}
			return describeValue(rv.Elem(), vis)
		}
		return vis.Scalar(rv.Addr().Interface())

	case reflect.Struct:
		if isScalarStruct(rt) {
			return vis.Scalar(rv.Addr().Interface())
		}
		fields, err := structFields(rv)
		if err != nil {
			return err
		}
		return vis.Fields(fields...)

	case reflect.Map:
		return vis.MapOf(rv.Addr().Interface())

	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			return vis.Scalar(rv.Addr().Interface())
		}
		// The decoder sizes the slice to the declared column count before
		// elements are described; the encoder keeps the value's own length.
		if d, ok := vis.(interface{ columns() int }); ok {
			n := d.columns()
			rv.Set(reflect.MakeSlice(rt, n, n))
		}
		return vis.Tuple(elemPtrs(rv)...)

	case reflect.Array:
		return vis.Tuple(elemPtrs(rv)...)

	default:
		return vis.Scalar(rv.Addr().Interface())
	}
}

func elemPtrs(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Addr().Interface()
	}
	return out
}

// isComposite reports whether t occupies multiple columns when described.
func isComposite(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct:
		return !isScalarStruct(t)
	case reflect.Map, reflect.Array:
		return true
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	}
	return false
}

// isScalarStruct reports struct types that occupy a single column: time.Time,
// unit (zero-field) structs, and anything with its own driver/scanner hooks.
func isScalarStruct(t reflect.Type) bool {
	return t == timeType ||
		t.NumField() == 0 ||
		t.Implements(valuerType) ||
		reflect.PointerTo(t).Implements(scannerType)
}

// structFields flattens an addressable struct into named slots in declared
// field order. Tag grammar follows the `db` convention: `db:"name"` renames,
// `db:"-"` omits, `db:",inline"` (and untagged embedding) flattens a nested
// struct into the parent's column namespace.
func structFields(rv reflect.Value) ([]Field, error) {
	var out []Field
	seen := make(map[string]struct{})

	var walk func(v reflect.Value) error
	walk = func(v reflect.Value) error {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.PkgPath != "" {
				continue
			}
			tag := sf.Tag.Get("db")
			name, inline, omit := parseTag(tag)
			if omit {
				continue
			}
			fv := v.Field(i)
			if inline || (sf.Anonymous && tag == "") {
				ft := sf.Type
				if ft.Kind() == reflect.Pointer && ft.Elem().Kind() == reflect.Struct {
					if fv.IsNil() {
						fv.Set(reflect.New(ft.Elem()))
					}
					fv, ft = fv.Elem(), ft.Elem()
				}
				if ft.Kind() == reflect.Struct && !isScalarStruct(ft) {
					if err := walk(fv); err != nil {
						return err
					}
					continue
				}
			}
			if name == "" {
				name = toLowerAscii(sf.Name)
			}
			if _, dup := seen[name]; dup {
				return fmt.Errorf("%w: duplicate field name %q", ErrUnsupportedStructure, name)
			}
			seen[name] = struct{}{}
			out = append(out, Field{Name: name, Value: fv.Addr().Interface()})
		}
		return nil
	}
	if err := walk(rv); err != nil {
		return nil, err
	}
	return out, nil
}

// parseTag supports: "-", "col", ",inline", "col,inline", "inline,col".
func parseTag(tag string) (name string, inline bool, omit bool) {
	if tag == "-" {
		return "", false, true
	}
	if tag == "" {
		return "", false, false
	}
	start := 0
	for i := 0; i <= len(tag); i++ {
		if i == len(tag) || tag[i] == ',' {
			part := tag[start:i]
			if part == "inline" {
				inline = true
			} else if part != "" && name == "" {
				name = part
			}
			start = i + 1
		}
	}
	return name, inline, false
}

func toLowerAscii(s string) string {
	var need bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			need = true
			break
		}
	}
	if !need {
		return s
	}
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c = c + ('a' - 'A')
		}
		b[i] = c
	}
	return string(b)
}
