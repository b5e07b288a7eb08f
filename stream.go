package xrow

import (
	"database/sql"
	"iter"
)

// Cursor is the row-store cursor this package consumes: a forward-only
// sequence of rows whose values scan by position. *sql.Rows satisfies it.
type Cursor interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// Columns captures the declared column list of a statement. The list is
// fixed for the statement's lifetime and is reused for every row it yields.
// Identifier quoting ("name", `name`, [name]) is stripped; case is kept,
// since column matching is case-sensitive.
func Columns(rows interface{ Columns() ([]string, error) }) ([]string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = trimIdent(c)
	}
	return out, nil
}

// RowCells reads the cursor's current row into n cells, one per declared
// column, via Cell's [sql.Scanner] implementation.
func RowCells(cur Cursor, n int) ([]Cell, error) {
	cells := make([]Cell, n)
	dest := make([]any, n)
	for i := range cells {
		dest[i] = &cells[i]
	}
	if err := cur.Scan(dest...); err != nil {
		return nil, err
	}
	return cells, nil
}

// ScanRows lazily reconstructs one T per cursor row. The sequence is
// forward-only and buffers a single row at a time; it ends when the cursor
// is exhausted, after surfacing any cursor error as a final element.
//
// A row that fails to decode yields as (zero, error) without ending the
// sequence, so callers may skip bad rows or break out. A cursor-level scan
// failure ends the sequence, since the cursor cannot advance past it.
//
//	cols, _ := xrow.Columns(rows)
//	for v, err := range xrow.ScanRows[User](cols, rows) {
//		...
//	}
func ScanRows[T any](columns []string, cur Cursor) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for cur.Next() {
			cells, err := RowCells(cur, len(columns))
			if err != nil {
				yield(zero, err)
				return
			}
			v, err := Scan[T](columns, cells)
			if !yield(v, err) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(zero, err)
		}
	}
}

// All collects every row of the cursor into a slice. Unlike ranging over
// ScanRows directly, the first error aborts the read.
func All[T any](columns []string, cur Cursor) ([]T, error) {
	var out []T
	for v, err := range ScanRows[T](columns, cur) {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// First reconstructs the first row and ignores the rest. It returns
// [sql.ErrNoRows] when the cursor yields nothing.
func First[T any](columns []string, cur Cursor) (T, error) {
	for v, err := range ScanRows[T](columns, cur) {
		return v, err
	}
	var zero T
	return zero, sql.ErrNoRows
}

// trimIdent strips one layer of identifier quoting from a column name.
func trimIdent(s string) string {
	if l := len(s); l >= 2 {
		switch s[0] {
		case '"':
			if s[l-1] == '"' {
				return s[1 : l-1]
			}
		case '`':
			if s[l-1] == '`' {
				return s[1 : l-1]
			}
		case '[':
			if s[l-1] == ']' {
				return s[1 : l-1]
			}
		}
	}
	return s
}
