package xrow

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// --- Minimal in-test cursor --------------------------------------------------

type sliceCursor struct {
	rows    [][]any
	pos     int
	iterErr error // reported by Err after exhaustion
	scanErr error
}

func (c *sliceCursor) Next() bool {
	if c.pos < len(c.rows) {
		c.pos++
		return true
	}
	return false
}

func (c *sliceCursor) Scan(dest ...any) error {
	if c.scanErr != nil {
		return c.scanErr
	}
	row := c.rows[c.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("sliceCursor: %d destinations for %d values", len(dest), len(row))
	}
	for i, d := range dest {
		if err := d.(sql.Scanner).Scan(row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *sliceCursor) Err() error { return c.iterErr }

type fakeStmt struct{ cols []string }

func (f fakeStmt) Columns() ([]string, error) { return f.cols, nil }

// --- Tests -------------------------------------------------------------------

func TestColumnsTrimsQuoting(t *testing.T) {
	cols, err := Columns(fakeStmt{cols: []string{`"f_integer"`, "`f_real`", "[f_text]", "f_blob", `"Mixed"`}})
	require.NoError(t, err)
	require.Equal(t, []string{"f_integer", "f_real", "f_text", "f_blob", "Mixed"}, cols)
}

func TestRowCells(t *testing.T) {
	cur := &sliceCursor{rows: [][]any{{int64(1), "x", nil}}}
	require.True(t, cur.Next())
	cells, err := RowCells(cur, 3)
	require.NoError(t, err)
	require.True(t, Int(1).Equal(cells[0]))
	require.True(t, Text("x").Equal(cells[1]))
	require.True(t, cells[2].IsNull())
}

func TestScanRowsGoodThenBadRow(t *testing.T) {
	cur := &sliceCursor{rows: [][]any{{int64(7)}, {"not a number"}}}
	cols := []string{"n"}

	var got []int64
	var errs []error
	for v, err := range ScanRows[int64](cols, cur) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		got = append(got, v)
	}
	require.Equal(t, []int64{7}, got)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], ErrTypeMismatch)
}

func TestScanRowsStopsEarly(t *testing.T) {
	cur := &sliceCursor{rows: [][]any{{int64(1)}, {int64(2)}, {int64(3)}}}
	for v, err := range ScanRows[int64]([]string{"n"}, cur) {
		require.NoError(t, err)
		require.Equal(t, int64(1), v)
		break
	}
	// The cursor is left where iteration stopped.
	require.Equal(t, 1, cur.pos)
}

func TestScanRowsCursorError(t *testing.T) {
	sentinel := errors.New("connection reset")
	cur := &sliceCursor{rows: [][]any{{int64(1)}}, iterErr: sentinel}

	var last error
	var n int
	for _, err := range ScanRows[int64]([]string{"n"}, cur) {
		n++
		last = err
	}
	require.Equal(t, 2, n)
	require.ErrorIs(t, last, sentinel)
}

func TestScanRowsScanErrorEndsSequence(t *testing.T) {
	sentinel := errors.New("driver failure")
	cur := &sliceCursor{rows: [][]any{{int64(1)}, {int64(2)}}, scanErr: sentinel}

	var n int
	var last error
	for _, err := range ScanRows[int64]([]string{"n"}, cur) {
		n++
		last = err
	}
	require.Equal(t, 1, n)
	require.ErrorIs(t, last, sentinel)
}

func TestAll(t *testing.T) {
	cur := &sliceCursor{rows: [][]any{{int64(1)}, {int64(2)}, {int64(3)}}}
	got, err := All[int64]([]string{"n"}, cur)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, got)
}

func TestAllAbortsOnRowError(t *testing.T) {
	cur := &sliceCursor{rows: [][]any{{int64(1)}, {"bad"}, {int64(3)}}}
	_, err := All[int64]([]string{"n"}, cur)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFirst(t *testing.T) {
	cur := &sliceCursor{rows: [][]any{{int64(42)}, {int64(43)}}}
	got, err := First[int64]([]string{"n"}, cur)
	require.NoError(t, err)
	require.Equal(t, int64(42), got)
}

func TestFirstNoRows(t *testing.T) {
	cur := &sliceCursor{}
	_, err := First[int64]([]string{"n"}, cur)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestScanRowsStructs(t *testing.T) {
	type row struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}
	cur := &sliceCursor{rows: [][]any{
		{int64(1), "ada"},
		{int64(2), "grace"},
	}}
	got, err := All[row]([]string{"id", "name"}, cur)
	require.NoError(t, err)
	require.Equal(t, []row{{1, "ada"}, {2, "grace"}}, got)
}
