package xrow

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the active variant of a Cell. The set mirrors the storage
// classes a relational column can hold: every bound parameter and every
// result value is exactly one of these.
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindReal
	KindText
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	default:
		return "null"
	}
}

// Cell is one typed column value. Exactly one variant is active, and a Cell
// never coerces on its own; all conversion between Go types and cells happens
// in Marshal and Scan, where it can fail loudly instead of truncating.
//
// Cell implements [driver.Valuer] and [sql.Scanner], so a cell binds directly
// as a statement argument and a []Cell row scans directly off *sql.Rows.
type Cell struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
}

// Int returns an Integer cell.
func Int(v int64) Cell { return Cell{kind: KindInteger, i: v} }

// Real returns a Real cell.
func Real(v float64) Cell { return Cell{kind: KindReal, f: v} }

// Text returns a Text cell.
func Text(v string) Cell { return Cell{kind: KindText, s: v} }

// Blob returns a Blob cell holding its own copy of b.
func Blob(b []byte) Cell {
	return Cell{kind: KindBlob, b: append([]byte(nil), b...)}
}

// Null returns the Null cell.
func Null() Cell { return Cell{} }

// Kind reports the active variant.
func (c Cell) Kind() Kind { return c.kind }

// IsNull reports whether the Null variant is active.
func (c Cell) IsNull() bool { return c.kind == KindNull }

// Equal reports whether two cells hold the same variant and payload.
// Two Real cells holding NaN are not Equal, matching float semantics.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindInteger:
		return c.i == o.i
	case KindReal:
		return c.f == o.f
	case KindText:
		return c.s == o.s
	case KindBlob:
		return bytes.Equal(c.b, o.b)
	default:
		return true
	}
}

func (c Cell) String() string {
	switch c.kind {
	case KindInteger:
		return strconv.FormatInt(c.i, 10)
	case KindReal:
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	case KindText:
		return strconv.Quote(c.s)
	case KindBlob:
		return fmt.Sprintf("x'%x'", c.b)
	default:
		return "NULL"
	}
}

// Value implements [driver.Valuer], producing the driver-native form the
// row store binds as a parameter.
func (c Cell) Value() (driver.Value, error) {
	switch c.kind {
	case KindInteger:
		return c.i, nil
	case KindReal:
		return c.f, nil
	case KindText:
		return c.s, nil
	case KindBlob:
		return c.b, nil
	default:
		return nil, nil
	}
}

// Scan implements [sql.Scanner], capturing one driver value into a cell.
// Byte slices are copied: drivers may reuse their buffers between rows.
func (c *Cell) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = Null()
	case int64:
		*c = Int(v)
	case float64:
		*c = Real(v)
	case bool:
		if v {
			*c = Int(1)
		} else {
			*c = Int(0)
		}
	case string:
		*c = Text(v)
	case []byte:
		*c = Blob(v)
	case time.Time:
		*c = Text(v.Format(time.RFC3339Nano))
	default:
		return fmt.Errorf("%w: driver value %T has no cell form", ErrTypeMismatch, src)
	}
	return nil
}

// anyValue returns the natural Go form of the cell, used when decoding into
// an untyped (any) destination.
func (c Cell) anyValue() any {
	switch c.kind {
	case KindInteger:
		return c.i
	case KindReal:
		return c.f
	case KindText:
		return c.s
	case KindBlob:
		return append([]byte(nil), c.b...)
	default:
		return nil
	}
}
