// Package smbios walks raw System Management BIOS structure tables and
// decodes the System Information (Type 1) structure that carries the
// machine UUID.
//
// The package works on in-memory buffers only. Where the bytes come from
// (sysfs, /dev/mem, GetSystemFirmwareTable, a captured dump) is the
// caller's concern. Layouts follow DMTF DSP0134 v2.6.1.
//
//	t, err := smbios.Walk(raw)
//	if err != nil {
//		return err
//	}
//	info, err := t.SystemInfo()
//	if err != nil {
//		return err
//	}
//	fmt.Println(info.UUID.Format(smbios.LayoutSwapped))
//
// All functions are pure and safe for concurrent use as long as the input
// buffer is not mutated during the call.
package smbios

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// headerSize is the type, length and handle bytes every structure starts with.
	headerSize = 4

	// TypeSystemInformation is the structure type of the System Information record.
	TypeSystemInformation uint8 = 1

	// TypeEndOfTable marks the last structure firmware emits. The walker
	// treats it like any other structure.
	TypeEndOfTable uint8 = 127

	// SystemInformationHandle is the handle conventionally assigned to the
	// System Information structure.
	SystemInformationHandle uint16 = 0x0001
)

// stringSetTerminator ends the unformatted section of every structure.
var stringSetTerminator = []byte{0x00, 0x00}

// Structure is a single SMBIOS record. Data aliases the walked buffer and
// holds the formatted section followed by the string set, including the
// double-null terminator.
type Structure struct {
	Type   uint8
	Length uint8 // formatted length as declared by firmware
	Handle uint16
	Data   []byte
}

// Formatted returns the fixed-layout section of the structure.
func (s Structure) Formatted() []byte {
	return s.Data[:s.Length]
}

// Unformatted returns the string set, including its terminator.
func (s Structure) Unformatted() []byte {
	return s.Data[s.Length:]
}

// Strings returns the string set. An empty set yields nil.
func (s Structure) Strings() []string {
	set := bytes.TrimSuffix(s.Unformatted(), stringSetTerminator)
	if len(set) == 0 || set[0] == 0 {
		return nil
	}

	var out []string
	for _, b := range bytes.Split(set, []byte{0}) {
		out = append(out, string(b))
	}

	return out
}

// StringAt returns the string referenced by a 1-based index from the
// formatted section. Index 0, or one past the set, yields "".
func (s Structure) StringAt(index uint8) string {
	strs := s.Strings()
	if index == 0 || int(index) > len(strs) {
		return ""
	}

	return strs[index-1]
}

// Table maps structure handles to structures. Iteration follows the order in
// which handles first appeared in the buffer.
type Table struct {
	byHandle   map[uint16]Structure
	order      []uint16
	duplicates int
}

// Walk splits raw into its structures. The buffer is borrowed: returned
// structures reference it rather than copying.
//
// The walk stops cleanly only when fewer than two bytes remain; structures
// after an End-of-Table record and zero padding are walked like the rest.
// A structure whose formatted length overruns the buffer, or whose string
// set never terminates, fails the whole walk with [ErrMalformedTable].
// Formatted lengths below the header size are not rejected: the terminator
// search simply starts inside the header.
func Walk(raw []byte) (*Table, error) {
	t := &Table{byHandle: make(map[uint16]Structure)}

	offset := 0
	for len(raw)-offset >= 2 {
		rest := raw[offset:]

		length := int(rest[1])
		handle := peekHandle(rest)
		if length > len(rest) {
			return nil, &StructureError{Offset: offset, Handle: handle, Err: ErrMalformedTable}
		}

		end := bytes.Index(rest[length:], stringSetTerminator)
		if end < 0 {
			return nil, &StructureError{Offset: offset, Handle: handle, Err: ErrMalformedTable}
		}
		size := length + end + len(stringSetTerminator)

		s := Structure{
			Type:   rest[0],
			Length: rest[1],
			Handle: handle,
			Data:   rest[:size:size],
		}
		t.insert(s)

		offset += size
	}

	return t, nil
}

// peekHandle reads the handle, zero-filling bytes past the end of b.
func peekHandle(b []byte) uint16 {
	var h [2]byte
	if len(b) > 2 {
		copy(h[:], b[2:])
	}

	return binary.LittleEndian.Uint16(h[:])
}

func (t *Table) insert(s Structure) {
	if _, exists := t.byHandle[s.Handle]; exists {
		t.duplicates++
	} else {
		t.order = append(t.order, s.Handle)
	}
	t.byHandle[s.Handle] = s
}

// Len returns the number of distinct handles in the table.
func (t *Table) Len() int {
	return len(t.order)
}

// Duplicates returns how many structures reused a handle already seen.
// Duplicate handles violate DSP0134; the later structure wins.
func (t *Table) Duplicates() int {
	return t.duplicates
}

// Lookup returns the structure with the given handle.
func (t *Table) Lookup(handle uint16) (Structure, error) {
	s, ok := t.byHandle[handle]
	if !ok {
		return Structure{}, fmt.Errorf("handle %#04x: %w", handle, ErrHandleNotFound)
	}

	return s, nil
}

// Structures returns the structures in table order.
func (t *Table) Structures() []Structure {
	out := make([]Structure, 0, len(t.order))
	for _, h := range t.order {
		out = append(out, t.byHandle[h])
	}

	return out
}

// SystemInfo decodes the structure stored under handle 1, the handle
// firmware assigns to System Information. [ErrHandleNotFound] is returned
// when no such handle exists.
func (t *Table) SystemInfo() (SystemInfo, error) {
	s, err := t.Lookup(SystemInformationHandle)
	if err != nil {
		return SystemInfo{}, err
	}

	return DecodeSystemInfo(s.Data)
}

// FindSystemInfoStructure searches for the System Information structure.
// Handle 1 is used if it holds a Type 1 structure; otherwise the first Type 1
// structure in table order is returned. Firmware that numbers handles from
// zero or by type needs this search.
func (t *Table) FindSystemInfoStructure() (Structure, error) {
	if s, ok := t.byHandle[SystemInformationHandle]; ok && s.Type == TypeSystemInformation {
		return s, nil
	}

	for _, h := range t.order {
		if s := t.byHandle[h]; s.Type == TypeSystemInformation {
			return s, nil
		}
	}

	return Structure{}, fmt.Errorf("no type %d structure: %w", TypeSystemInformation, ErrHandleNotFound)
}

// FindSystemInfo locates the structure with [Table.FindSystemInfoStructure]
// and decodes it.
func (t *Table) FindSystemInfo() (SystemInfo, error) {
	s, err := t.FindSystemInfoStructure()
	if err != nil {
		return SystemInfo{}, err
	}

	return DecodeSystemInfo(s.Data)
}
