package macho

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFat is returned by ParseFat when the buffer holds a thin
	// Mach-O rather than a universal container.
	ErrNotFat = errors.New("not a fat Mach-O file")
)

// UnrecognizedMagicError is the top-level failure when the first word of a
// buffer matches neither a thin nor a fat magic in either byte order.
type UnrecognizedMagicError struct {
	Magic uint32
}

func (e *UnrecognizedMagicError) Error() string {
	return fmt.Sprintf("unrecognized magic %#08x", e.Magic)
}

// TruncatedFileError marks a structure whose declared range runs past the
// end of the buffer. Offset is the byte offset where the violation was
// detected.
type TruncatedFileError struct {
	Offset uint64
	Want   uint64
	Have   uint64
	What   string
}

func (e *TruncatedFileError) Error() string {
	return fmt.Sprintf("truncated file: %s at offset %#x needs %d bytes, %d available", e.What, e.Offset, e.Want, e.Have)
}

// InvalidArchitectureIndexError rejects an out-of-range fat slice index
// before any slice parsing begins.
type InvalidArchitectureIndexError struct {
	Index int
	Count int
}

func (e *InvalidArchitectureIndexError) Error() string {
	return fmt.Sprintf("invalid architecture index %d (valid range 0..%d)", e.Index, e.Count-1)
}

// An Anomaly records a non-fatal malformation attached to a specific
// entity. Enumeration continues past it; the decode result is complete
// with anomalies rather than all-or-nothing.
type Anomaly struct {
	Offset uint64
	Detail string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s (offset %#x)", a.Detail, a.Offset)
}
