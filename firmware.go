package sysuuid

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/slashdevops/sysuuid/smbios"
)

// RawTable is an SMBIOS structure table as returned by a [TableReader].
type RawTable struct {
	Data  []byte // concatenated structures, starting at the first type byte
	Major int    // SMBIOS major version, 0 when unknown
	Minor int    // SMBIOS minor version, 0 when unknown
}

// Version returns the SMBIOS version as "major.minor", or "unknown".
func (t *RawTable) Version() string {
	if t.Major == 0 && t.Minor == 0 {
		return "unknown"
	}

	return fmt.Sprintf("%d.%d", t.Major, t.Minor)
}

// TableReader supplies the raw SMBIOS table to the firmware-table strategy.
type TableReader interface {
	ReadTable(ctx context.Context) (*RawTable, error)
}

// rsmbHeaderSize is the RawSMBIOSData header GetSystemFirmwareTable('RSMB')
// prepends to the table: calling method, major, minor, DMI revision and a
// little-endian 32-bit table length.
const rsmbHeaderSize = 8

// parseRawSMBIOSData strips the RawSMBIOSData header from a Windows
// firmware table blob, bounding the table by the header's length field.
func parseRawSMBIOSData(buf []byte) (*RawTable, error) {
	if len(buf) < rsmbHeaderSize {
		return nil, &ParseError{Source: "RawSMBIOSData", Err: fmt.Errorf("%d bytes, need %d for header", len(buf), rsmbHeaderSize)}
	}

	length := binary.LittleEndian.Uint32(buf[4:8])
	table := buf[rsmbHeaderSize:]
	if uint64(length) > uint64(len(table)) {
		return nil, &ParseError{Source: "RawSMBIOSData", Err: fmt.Errorf("table length %d exceeds %d available bytes", length, len(table))}
	}

	return &RawTable{
		Data:  table[:length],
		Major: int(buf[1]),
		Minor: int(buf[2]),
	}, nil
}

// Entry point anchors written at the start of `dmidecode --dump-bin` files.
var (
	anchor21 = []byte("_SM_")
	anchor30 = []byte("_SM3_")
)

// dumpBinTableOffset is where dmidecode places the table in --dump-bin output.
const dumpBinTableOffset = 0x20

// parseTableFile accepts either a bare structure table (as found in
// /sys/firmware/dmi/tables/DMI) or a `dmidecode --dump-bin` image.
func parseTableFile(data []byte) (*RawTable, error) {
	var major, minor int

	switch {
	case bytes.HasPrefix(data, anchor30):
		if len(data) < dumpBinTableOffset {
			return nil, &ParseError{Source: "SMBIOS 3.0 entry point", Err: errors.New("truncated")}
		}
		major, minor = int(data[7]), int(data[8])
	case bytes.HasPrefix(data, anchor21):
		if len(data) < dumpBinTableOffset {
			return nil, &ParseError{Source: "SMBIOS 2.1 entry point", Err: errors.New("truncated")}
		}
		major, minor = int(data[6]), int(data[7])
	default:
		return &RawTable{Data: data}, nil
	}

	return &RawTable{Data: data[dumpBinTableOffset:], Major: major, Minor: minor}, nil
}

// FileTableReader reads a captured SMBIOS table from a file, either a bare
// structure table or a `dmidecode --dump-bin` image. Major and Minor, when
// set, override the version; bare tables carry none.
type FileTableReader struct {
	Fs    afero.Fs // defaults to the OS filesystem
	Path  string
	Major int
	Minor int
}

// ReadTable implements [TableReader].
func (r *FileTableReader) ReadTable(_ context.Context) (*RawTable, error) {
	fs := r.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	data, err := afero.ReadFile(fs, r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SMBIOS table file: %w", err)
	}

	table, err := parseTableFile(data)
	if err != nil {
		return nil, err
	}

	if r.Major != 0 || r.Minor != 0 {
		table.Major, table.Minor = r.Major, r.Minor
	}

	return table, nil
}

// readTable fetches and walks the SMBIOS table.
func (p *Provider) readTable(ctx context.Context) (*smbios.Table, *RawTable, error) {
	if p.tableReader == nil {
		return nil, nil, ErrNoTableReader
	}

	raw, err := p.tableReader.ReadTable(ctx)
	if err != nil {
		return nil, nil, err
	}

	p.logDebug("read SMBIOS table",
		"size", humanize.IBytes(uint64(len(raw.Data))),
		"version", raw.Version(),
	)

	table, err := smbios.Walk(raw.Data)
	if err != nil {
		return nil, nil, &ParseError{Source: "SMBIOS table", Err: err}
	}

	if table.Duplicates() > 0 {
		p.logWarn("SMBIOS table has duplicate handles", "count", table.Duplicates())
	}

	return table, raw, nil
}

// decodeSystemInfo decodes the structure under handle 1, or the first Type 1
// structure when searching is enabled.
func (p *Provider) decodeSystemInfo(table *smbios.Table) (smbios.SystemInfo, error) {
	if p.searchType1 {
		return table.FindSystemInfo()
	}

	return table.SystemInfo()
}

// firmwareTableUUID decodes the System Information UUID from the raw table
// and renders it with the configured or version-derived layout.
func (p *Provider) firmwareTableUUID(ctx context.Context, diag *DiagnosticInfo) (string, error) {
	table, raw, err := p.readTable(ctx)
	if err != nil {
		return "", err
	}

	info, err := p.decodeSystemInfo(table)
	if err != nil {
		return "", &ParseError{Source: "System Information structure", Err: err}
	}

	if info.UUID.IsZero() || info.UUID.IsUnset() {
		return "", ErrUnsetUUID
	}

	layout := smbios.LayoutForVersion(raw.Major, raw.Minor)
	if p.layoutSet {
		layout = p.layout
	}

	if diag != nil {
		diag.SMBIOSVersion = raw.Version()
		diag.Layout = layout.String()
	}

	return info.UUID.Format(layout), nil
}
