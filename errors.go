package xrow

import "errors"

// ErrValueTooLarge is returned when a numeric value does not fit the target
// representation: a uint64 above the signed 64-bit maximum at serialize time,
// or an Integer cell outside a narrower destination's range at decode time.
// Values are never silently truncated.
var ErrValueTooLarge = errors.New("xrow: value too large")

// ErrTypeMismatch is returned when a cell's runtime kind is incompatible with
// the destination type, including NULL presented to a destination that cannot
// hold it (anything but a pointer, interface, or unit type).
var ErrTypeMismatch = errors.New("xrow: type mismatch")

// ErrMissingColumn is returned when a named field has no matching entry in
// the declared column list. Matching is exact and case-sensitive.
var ErrMissingColumn = errors.New("xrow: missing column")

// ErrArityMismatch is returned when a positional shape (tuple, array, row)
// expects a different number of columns than are available.
var ErrArityMismatch = errors.New("xrow: arity mismatch")

// ErrUnknownVariant is returned when a decoded discriminant does not match
// any name in the destination enum's declared variant set.
var ErrUnknownVariant = errors.New("xrow: unknown variant")

// ErrUnsupportedStructure is returned for value shapes that have no flat cell
// representation, e.g. nested containers inside a column, map keys without a
// textual form, or positional binding of an unordered map.
var ErrUnsupportedStructure = errors.New("xrow: unsupported structure")
