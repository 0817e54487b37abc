//go:build windows

package sysuuid

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// platformStrategies lists the Windows strategies: the firmware table API
// first, WMI when it is unavailable.
var platformStrategies = []Strategy{
	StrategyFirmwareTable,
	StrategyWMI,
}

// rsmbSignature is the 'RSMB' firmware table provider signature.
const rsmbSignature = 'R'<<24 | 'S'<<16 | 'M'<<8 | 'B'

var (
	modkernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemFirmwareTable = modkernel32.NewProc("GetSystemFirmwareTable")
)

// firmwareTableReader reads the SMBIOS table with GetSystemFirmwareTable.
type firmwareTableReader struct{}

func nativeTableReader() TableReader {
	return &firmwareTableReader{}
}

// ReadTable implements [TableReader].
func (r *firmwareTableReader) ReadTable(_ context.Context) (*RawTable, error) {
	if err := procGetSystemFirmwareTable.Find(); err != nil {
		return nil, fmt.Errorf("GetSystemFirmwareTable unavailable: %w", err)
	}

	// First call with a nil buffer returns the required size.
	size, _, callErr := procGetSystemFirmwareTable.Call(uintptr(rsmbSignature), 0, 0, 0)
	if size == 0 {
		return nil, &CommandError{Command: "GetSystemFirmwareTable", Err: callErr}
	}

	buf := make([]byte, size)
	n, _, callErr := procGetSystemFirmwareTable.Call(
		uintptr(rsmbSignature),
		0,
		uintptr(unsafe.Pointer(&buf[0])),
		size,
	)
	if n == 0 || n > size {
		return nil, &CommandError{Command: "GetSystemFirmwareTable", Err: callErr}
	}

	return parseRawSMBIOSData(buf[:n])
}
