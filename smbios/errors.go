package smbios

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by [Walk], [DecodeSystemInfo] and [Table] lookups.
var (
	// ErrMalformedTable is returned when the buffer ends before a
	// structure's declared formatted length, or when a structure's string
	// set is never terminated. The whole table must be treated as unusable.
	ErrMalformedTable = errors.New("malformed SMBIOS table")

	// ErrTruncatedStructure is returned when a System Information structure
	// is too short to carry the UUID and wake-up type fields.
	ErrTruncatedStructure = errors.New("truncated SMBIOS structure")

	// ErrHandleNotFound is returned when the requested structure is not
	// present in the walked table.
	ErrHandleNotFound = errors.New("SMBIOS structure handle not found")

	// ErrNotSystemInfo is returned when [DecodeSystemInfo] is given a
	// structure whose type byte is not 1.
	ErrNotSystemInfo = errors.New("not a System Information structure")
)

// StructureError records where in a table a structure failed to parse.
// Use [errors.As] to extract the offset from wrapped errors.
type StructureError struct {
	Offset int    // byte offset of the structure's type byte in the table
	Handle uint16 // handle as read from the header, zero if unreadable
	Err    error  // one of the package sentinels
}

// Error returns a human-readable description of the structure failure.
func (e *StructureError) Error() string {
	return fmt.Sprintf("structure at offset %#x (handle %#04x): %v", e.Offset, e.Handle, e.Err)
}

// Unwrap returns the underlying error.
func (e *StructureError) Unwrap() error {
	return e.Err
}
