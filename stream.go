//go:build !windows && !darwin

package sysuuid

import (
	"context"
	"fmt"
	"io"

	dosmbios "github.com/digitalocean/go-smbios/smbios"
)

// streamTableReader locates the SMBIOS table through the operating system
// (sysfs on Linux, the entry point in /dev/mem elsewhere).
type streamTableReader struct{}

// ReadTable implements [TableReader].
func (r *streamTableReader) ReadTable(_ context.Context) (*RawTable, error) {
	rc, ep, err := dosmbios.Stream()
	if err != nil {
		return nil, fmt.Errorf("failed to open SMBIOS stream: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read SMBIOS table: %w", err)
	}

	major, minor, _ := ep.Version()

	return &RawTable{Data: data, Major: major, Minor: minor}, nil
}
