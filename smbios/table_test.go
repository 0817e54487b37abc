package smbios

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildStructure assembles a structure from a formatted body (everything
// after the 4-byte header) and its strings.
func buildStructure(typ uint8, handle uint16, body []byte, strs ...string) []byte {
	b := make([]byte, headerSize, headerSize+len(body)+2)
	b[0] = typ
	b[1] = uint8(headerSize + len(body))
	binary.LittleEndian.PutUint16(b[2:4], handle)
	b = append(b, body...)

	if len(strs) == 0 {
		return append(b, 0x00, 0x00)
	}
	for _, s := range strs {
		b = append(b, s...)
		b = append(b, 0x00)
	}

	return append(b, 0x00)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

func TestWalkSingleStructure(t *testing.T) {
	raw := buildStructure(0, 0x0000, []byte{0x01, 0x02, 0x03, 0x04}, "vendor", "1.0")

	table, err := Walk(raw)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	s, err := table.Lookup(0x0000)
	require.NoError(t, err)
	assert.Equal(t, raw, s.Data)
	assert.Equal(t, uint8(0), s.Type)
	assert.Equal(t, uint8(8), s.Length)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, s.Formatted()[headerSize:])
	assert.Equal(t, []byte("vendor\x001.0\x00\x00"), s.Unformatted())
}

func TestWalkNoStrings(t *testing.T) {
	raw := buildStructure(32, 0x0020, make([]byte, 7))

	table, err := Walk(raw)
	require.NoError(t, err)

	s, err := table.Lookup(0x0020)
	require.NoError(t, err)
	assert.Equal(t, raw, s.Data)
	assert.Equal(t, []byte{0x00, 0x00}, s.Unformatted())
}

func TestWalkBoundaryExactness(t *testing.T) {
	first := buildStructure(0, 0x0000, []byte{0xaa, 0xbb}, "first")
	second := buildStructure(1, 0x0001, make([]byte, 23), "second", "x")

	table, err := Walk(concat(first, second))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	s0, err := table.Lookup(0x0000)
	require.NoError(t, err)
	assert.Equal(t, first, s0.Data)

	s1, err := table.Lookup(0x0001)
	require.NoError(t, err)
	assert.Equal(t, second, s1.Data)

	// Structures alias the input with a capped capacity.
	assert.Equal(t, len(s0.Data), cap(s0.Data))
}

func TestWalkEmptyAndShortBuffers(t *testing.T) {
	for _, raw := range [][]byte{nil, {}, {0x7f}} {
		table, err := Walk(raw)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
	}
}

func TestWalkTrailingSingleByte(t *testing.T) {
	raw := append(buildStructure(2, 0x0002, []byte{0x01}), 0xff)

	table, err := Walk(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestWalkMalformed(t *testing.T) {
	full := buildStructure(1, 0x0001, make([]byte, 21))

	tests := []struct {
		name       string
		raw        []byte
		wantOffset int
	}{
		{
			name: "one byte short of formatted length",
			raw:  full[:24],
		},
		{
			name: "missing string set terminator",
			raw:  concat(full[:25], []byte("abc\x00")),
		},
		{
			name: "terminator cut in half",
			raw:  full[:26],
		},
		{
			name:       "second structure truncated",
			raw:        concat(buildStructure(0, 0x0000, nil), full[:10]),
			wantOffset: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				table, err := Walk(tt.raw)
				require.Nil(t, table)
				require.ErrorIs(t, err, ErrMalformedTable)

				var structErr *StructureError
				require.True(t, errors.As(err, &structErr))
				assert.Equal(t, tt.wantOffset, structErr.Offset)
			})
		})
	}
}

func TestWalkContinuesPastEndOfTable(t *testing.T) {
	bios := buildStructure(0, 0x0000, []byte{0x01, 0x02}, "BIOS Vendor")
	eot := buildStructure(TypeEndOfTable, 0x0010, nil)
	sysInfo := buildStructure(TypeSystemInformation, 0x0001, make([]byte, 21))

	table, err := Walk(concat(bios, eot, sysInfo))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	s, err := table.Lookup(0x0001)
	require.NoError(t, err)
	assert.Equal(t, sysInfo, s.Data)
}

func TestWalkShortFormattedLength(t *testing.T) {
	sysInfo := buildStructure(TypeSystemInformation, 0x0001, make([]byte, 21))

	tests := []struct {
		name       string
		raw        []byte
		wantLen    int
		wantDups   int
		wantHandle uint16
		wantSize   int
	}{
		{
			name:       "length inside header",
			raw:        []byte{0x01, 0x02, 0x00, 0x00},
			wantLen:    1,
			wantHandle: 0x0000,
			wantSize:   4,
		},
		{
			name:       "zero padding",
			raw:        []byte{0x00, 0x00, 0x00, 0x00, 0x00},
			wantLen:    1,
			wantDups:   1,
			wantHandle: 0x0000,
			wantSize:   2,
		},
		{
			name:       "zero padding after system information",
			raw:        concat(sysInfo, []byte{0x00, 0x00, 0x00, 0x00}),
			wantLen:    2,
			wantDups:   1,
			wantHandle: 0x0000,
			wantSize:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Walk(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, table.Len())
			assert.Equal(t, tt.wantDups, table.Duplicates())

			s, err := table.Lookup(tt.wantHandle)
			require.NoError(t, err)
			assert.Len(t, s.Data, tt.wantSize)
		})
	}
}

func TestWalkDuplicateHandleLastWins(t *testing.T) {
	first := buildStructure(3, 0x0005, []byte{0x01}, "old")
	other := buildStructure(4, 0x0006, []byte{0x02})
	second := buildStructure(3, 0x0005, []byte{0x03}, "new")

	table, err := Walk(concat(first, other, second))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 1, table.Duplicates())

	s, err := table.Lookup(0x0005)
	require.NoError(t, err)
	assert.Equal(t, second, s.Data)

	// Position of the first occurrence is kept.
	structs := table.Structures()
	require.Len(t, structs, 2)
	assert.Equal(t, uint16(0x0005), structs[0].Handle)
	assert.Equal(t, uint16(0x0006), structs[1].Handle)
}

func TestLookupMissingHandle(t *testing.T) {
	table, err := Walk(buildStructure(0, 0x0000, nil))
	require.NoError(t, err)

	_, err = table.Lookup(0x1234)
	require.ErrorIs(t, err, ErrHandleNotFound)
}

func TestWalkRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(20121019))

	for iteration := 0; iteration < 50; iteration++ {
		n := 1 + rng.Intn(20)
		handles := rng.Perm(0xffff)[:n]

		originals := make([][]byte, n)
		for i := range originals {
			body := make([]byte, rng.Intn(60))
			rng.Read(body)

			var strs []string
			for j := rng.Intn(5); j > 0; j-- {
				str := make([]byte, 1+rng.Intn(16))
				for k := range str {
					str[k] = byte(1 + rng.Intn(255))
				}
				strs = append(strs, string(str))
			}

			originals[i] = buildStructure(uint8(rng.Intn(256)), uint16(handles[i]), body, strs...)
		}

		table, err := Walk(concat(originals...))
		require.NoError(t, err)
		require.Equal(t, n, table.Len())

		structs := table.Structures()
		for i, want := range originals {
			assert.Equal(t, uint16(handles[i]), structs[i].Handle)
			assert.Equal(t, want, structs[i].Data)
		}
	}
}

func TestTableSystemInfoUsesHandleOne(t *testing.T) {
	t.Run("handle 1", func(t *testing.T) {
		sysInfo := buildStructure(TypeSystemInformation, 0x0001, systemInfoBody())
		table, err := Walk(concat(buildStructure(0, 0x0000, nil), sysInfo))
		require.NoError(t, err)

		info, err := table.SystemInfo()
		require.NoError(t, err)
		assert.Equal(t, uint16(0x0001), info.Handle)
	})

	t.Run("type 1 under another handle", func(t *testing.T) {
		moved := buildStructure(TypeSystemInformation, 0x0042, systemInfoBody())
		table, err := Walk(concat(buildStructure(0, 0x0000, nil), moved))
		require.NoError(t, err)

		_, err = table.SystemInfo()
		require.ErrorIs(t, err, ErrHandleNotFound)
	})

	t.Run("handle 1 holds another type", func(t *testing.T) {
		table, err := Walk(buildStructure(2, 0x0001, make([]byte, 21)))
		require.NoError(t, err)

		_, err = table.SystemInfo()
		require.ErrorIs(t, err, ErrNotSystemInfo)
		assert.NotErrorIs(t, err, ErrHandleNotFound)
	})

	t.Run("absent", func(t *testing.T) {
		table, err := Walk(buildStructure(0, 0x0000, nil))
		require.NoError(t, err)

		_, err = table.SystemInfo()
		require.ErrorIs(t, err, ErrHandleNotFound)
	})
}

func TestFindSystemInfoStructure(t *testing.T) {
	sysInfo := buildStructure(TypeSystemInformation, 0x0001, systemInfoBody())

	t.Run("handle 1", func(t *testing.T) {
		table, err := Walk(concat(buildStructure(0, 0x0000, nil), sysInfo))
		require.NoError(t, err)

		s, err := table.FindSystemInfoStructure()
		require.NoError(t, err)
		assert.Equal(t, sysInfo, s.Data)
	})

	t.Run("type 1 under another handle", func(t *testing.T) {
		moved := buildStructure(TypeSystemInformation, 0x0100, systemInfoBody())
		table, err := Walk(concat(buildStructure(0, 0x0001, nil), moved))
		require.NoError(t, err)

		s, err := table.FindSystemInfoStructure()
		require.NoError(t, err)
		assert.Equal(t, uint16(0x0100), s.Handle)

		info, err := table.FindSystemInfo()
		require.NoError(t, err)
		assert.Equal(t, uint16(0x0100), info.Handle)
	})

	t.Run("absent", func(t *testing.T) {
		table, err := Walk(buildStructure(0, 0x0000, nil))
		require.NoError(t, err)

		_, err = table.FindSystemInfoStructure()
		require.ErrorIs(t, err, ErrHandleNotFound)
		_, err = table.FindSystemInfo()
		require.ErrorIs(t, err, ErrHandleNotFound)
	})
}

func TestStructureErrorMessage(t *testing.T) {
	err := &StructureError{Offset: 0x40, Handle: 0x0002, Err: ErrMalformedTable}
	assert.Equal(t, "structure at offset 0x40 (handle 0x0002): malformed SMBIOS table", err.Error())
	assert.Equal(t, ErrMalformedTable, errors.Unwrap(err))
}

func TestStructureStrings(t *testing.T) {
	table, err := Walk(concat(
		buildStructure(1, 0x0001, systemInfoBody(), "Acme", "Rocket"),
		buildStructure(32, 0x0020, make([]byte, 7)),
	))
	require.NoError(t, err)

	s, err := table.Lookup(0x0001)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Rocket"}, s.Strings())
	assert.Equal(t, "Acme", s.StringAt(1))
	assert.Equal(t, "Rocket", s.StringAt(2))
	assert.Empty(t, s.StringAt(0))
	assert.Empty(t, s.StringAt(3))

	empty, err := table.Lookup(0x0020)
	require.NoError(t, err)
	assert.Nil(t, empty.Strings())
	assert.Empty(t, empty.StringAt(1))
}
