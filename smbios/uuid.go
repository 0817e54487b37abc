package smbios

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDSize is the width of the System Information UUID field.
const UUIDSize = 16

// UUID is the raw 16-byte System Information UUID as stored by firmware.
// No byte order is applied until it is formatted.
type UUID [UUIDSize]byte

// Layout selects how the 16 UUID bytes are rendered as text.
type Layout int

const (
	// LayoutCanonical renders the bytes in storage order using the 8-4-4-4-12
	// grouping, e.g. 00112233-4455-6677-8899-aabbccddeeff.
	LayoutCanonical Layout = iota

	// LayoutSwapped treats the first three fields as little-endian, as
	// SMBIOS 2.6 and later mandate, e.g. 33221100-5544-7766-8899-aabbccddeeff.
	// This matches dmidecode, sysfs product_uuid, WMI and ioreg on modern
	// firmware.
	LayoutSwapped

	// LayoutGrouped renders the bytes in storage order with the first four
	// bytes hyphenated individually, e.g. 00-11-22-33-4455-6677-8899-aabbccddeeff.
	LayoutGrouped
)

var layoutNames = map[Layout]string{
	LayoutCanonical: "canonical",
	LayoutSwapped:   "swapped",
	LayoutGrouped:   "grouped",
}

// String returns the layout name accepted by [ParseLayout].
func (l Layout) String() string {
	if name, ok := layoutNames[l]; ok {
		return name
	}

	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout returns the layout with the given name.
func ParseLayout(name string) (Layout, error) {
	for l, n := range layoutNames {
		if strings.EqualFold(n, name) {
			return l, nil
		}
	}

	return 0, fmt.Errorf("unknown UUID layout %q", name)
}

// LayoutForVersion returns the layout firmware of the given SMBIOS version
// uses: [LayoutSwapped] from 2.6 on, [LayoutCanonical] before. An unknown
// version (0.0) yields [LayoutCanonical].
func LayoutForVersion(major, minor int) Layout {
	if major > 2 || (major == 2 && minor >= 6) {
		return LayoutSwapped
	}

	return LayoutCanonical
}

// Format renders the UUID in lowercase hexadecimal using the given layout.
// Unknown layouts fall back to [LayoutCanonical].
func (u UUID) Format(l Layout) string {
	switch l {
	case LayoutSwapped:
		return uuid.UUID(u.swapped()).String()
	case LayoutGrouped:
		return u.grouped()
	default:
		return uuid.UUID(u).String()
	}
}

// String returns the [LayoutCanonical] rendering.
func (u UUID) String() string {
	return u.Format(LayoutCanonical)
}

// MarshalText implements encoding.TextMarshaler using [LayoutCanonical].
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The text is read in
// storage order, the inverse of MarshalText.
func (u *UUID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return fmt.Errorf("invalid UUID %q: %w", text, err)
	}
	*u = UUID(parsed)

	return nil
}

// IsZero reports whether every byte is 0x00, which DSP0134 defines as
// "not present".
func (u UUID) IsZero() bool {
	return u == UUID{}
}

// IsUnset reports whether every byte is 0xFF, which DSP0134 defines as
// "present but not set".
func (u UUID) IsUnset() bool {
	for _, b := range u {
		if b != 0xff {
			return false
		}
	}

	return true
}

// swapped reverses the byte order of the time-low, time-mid and
// time-hi-and-version fields.
func (u UUID) swapped() UUID {
	s := u
	s[0], s[1], s[2], s[3] = u[3], u[2], u[1], u[0]
	s[4], s[5] = u[5], u[4]
	s[6], s[7] = u[7], u[6]

	return s
}

func (u UUID) grouped() string {
	var sb strings.Builder
	sb.Grow(39)

	for i := 0; i < 4; i++ {
		sb.WriteString(hex.EncodeToString(u[i : i+1]))
		sb.WriteByte('-')
	}
	sb.WriteString(hex.EncodeToString(u[4:6]))
	sb.WriteByte('-')
	sb.WriteString(hex.EncodeToString(u[6:8]))
	sb.WriteByte('-')
	sb.WriteString(hex.EncodeToString(u[8:10]))
	sb.WriteByte('-')
	sb.WriteString(hex.EncodeToString(u[10:]))

	return sb.String()
}
