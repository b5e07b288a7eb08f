/*
Package xrow is a minimal, stdlib-style bridge between structured Go values
and the flat, typed cells a SQL statement binds and returns. You keep writing
plain SQL against database/sql; xrow converts values to parameter cells and
result rows back to values with a tiny, predictable API.

# Overview

Everything funnels through one closed scalar type, Cell, holding exactly one
of Integer, Real, Text, Blob, or Null. Marshal walks a value and emits an
ordered cell list for positional binding; MarshalNamed emits a name-indexed
lookup for named binding; Scan rebuilds a value from a declared column list
plus one row of cells; ScanRows does the same lazily over a cursor. Cell
implements driver.Valuer and sql.Scanner, so cells pass straight through
database/sql in both directions.

# Mapping rules

  - bool → Integer 0/1; signed integers → Integer; unsigned integers →
    Integer, failing with ErrValueTooLarge above the signed 64-bit maximum
    rather than wrapping.
  - float32/float64 → Real; NaN and the infinities survive a round trip.
  - string → Text; []byte → Blob; time.Time → Text in RFC 3339 form.
  - nil, nil pointers, and struct{} → Null; a named zero-field struct →
    Text holding its type name. Decoding a unit type accepts NULL or its
    own name and needs no column at all.
  - Structs emit one cell per field in declared order. Fields bind by
    `db:"name"` tag, otherwise by lower-cased field name; `db:"-"` omits and
    `db:",inline"` flattens a nested struct.
  - Maps have no binding order of their own: MarshalNamed indexes their cells
    by key text, and NamedCells.Bind re-sorts them into a statement's declared
    parameter order.
  - Enum types round-trip as Text holding the active variant's name.

Decoding applies the inverse mapping with explicit checks: kind conflicts
fail with ErrTypeMismatch, out-of-range narrowings (including negative values
into unsigned types) with ErrValueTooLarge, absent columns with
ErrMissingColumn, wrong positional counts with ErrArityMismatch, and unknown
enum names with ErrUnknownVariant. NULL decodes only into pointers, empty
interfaces, and unit types. Errors are values matched with errors.Is; nothing
is retried or swallowed.

# Shape descriptions

Mapping is driven by a Visitor with one method per shape (scalar, tuple,
named fields, map, enum variant). Types may describe themselves by
implementing Shaper on their pointer type; descriptions pass pointers, so
one description serves both directions. Ordinary structs, maps, slices, and
scalars are described by the built-in reflection walk.

# Concurrency

Serialize and deserialize calls are pure transformations over their inputs
and share no mutable state; they are safe to run from any number of
goroutines. A ScanRows sequence is single-consumer and forward-only,
mirroring the cursor it wraps.

# Scope

xrow does not build SQL text, execute statements, pool connections, or manage
transactions; those stay with database/sql and your driver. It is the
conversion boundary only, and works with any driver whose values reduce to
the five cell kinds.
*/
package xrow
