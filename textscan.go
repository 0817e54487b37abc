package sysuuid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"howett.net/plist"
)

// unsetUUIDs are placeholders reported instead of a real UUID when the
// firmware has none.
var unsetUUIDs = map[uuid.UUID]struct{}{
	uuid.Nil: {},
	uuid.Max: {},
}

// dmidecodeUnset are the values dmidecode prints for an all-zero or all-FF UUID.
var dmidecodeUnset = map[string]struct{}{
	"notpresent":  {},
	"notsettable": {},
}

// normalizeUUID validates a scraped UUID string and returns it in lowercase
// 8-4-4-4-12 form.
func normalizeUUID(source, value string) (string, error) {
	u, err := uuid.Parse(value)
	if err != nil {
		return "", &ParseError{Source: source, Err: err}
	}

	if _, unset := unsetUUIDs[u]; unset {
		return "", ErrUnsetUUID
	}

	return u.String(), nil
}

// dmidecodeUUID runs `dmidecode --type 1` and extracts the UUID line.
// dmidecode needs root to read the table on most systems.
func dmidecodeUUID(ctx context.Context, executor CommandExecutor, logger *slog.Logger) (string, error) {
	output, err := executeCommand(ctx, executor, logger, "dmidecode", "--type", "1")
	if err != nil {
		return "", fmt.Errorf("failed to get UUID from dmidecode: %w", err)
	}

	return parseDMIDecodeUUID(output)
}

// parseDMIDecodeUUID returns the value of the last line mentioning UUID,
// with spaces removed and everything up to the first colon dropped. Tables
// listing more than one System Information structure yield the last one.
func parseDMIDecodeUUID(output string) (string, error) {
	var value string
	found := false

	for line := range strings.SplitSeq(output, "\n") {
		if !strings.Contains(line, "UUID") {
			continue
		}

		line = strings.ReplaceAll(line, " ", "")
		pos := strings.Index(line, ":")
		if pos < 0 {
			continue
		}

		value = strings.TrimSpace(line[pos+1:])
		found = true
	}

	if !found {
		return "", fmt.Errorf("UUID not found in dmidecode output: %w", ErrNotFound)
	}

	if _, unset := dmidecodeUnset[strings.ToLower(value)]; unset {
		return "", ErrUnsetUUID
	}

	return normalizeUUID("dmidecode output", value)
}

// ioregUUIDRe matches the IOPlatformUUID property in ioreg text output.
var ioregUUIDRe = regexp.MustCompile(`"IOPlatformUUID"\s*=\s*"([^"]+)"`)

// ioregEntry is the subset of an IOPlatformExpertDevice node we decode from
// `ioreg -a` plist output.
type ioregEntry struct {
	IOPlatformUUID string `plist:"IOPlatformUUID"`
}

// ioregUUID reads IOPlatformUUID from the I/O Kit registry, preferring the
// plist archive output and falling back to scraping the text form.
func ioregUUID(ctx context.Context, executor CommandExecutor, logger *slog.Logger) (string, error) {
	output, err := executeCommand(ctx, executor, logger, "ioreg", "-a", "-rd1", "-c", "IOPlatformExpertDevice")
	if err == nil {
		value, parseErr := parseIORegPlist(output)
		if parseErr == nil {
			return value, nil
		}
		if logger != nil {
			logger.Debug("ioreg plist parse failed, falling back to text output", "error", parseErr)
		}
	}

	textOutput, textErr := executeCommand(ctx, executor, logger, "ioreg", "-rd1", "-c", "IOPlatformExpertDevice")
	if textErr != nil {
		return "", fmt.Errorf("failed to get UUID from ioreg: %w", textErr)
	}

	return parseIORegText(textOutput)
}

// parseIORegPlist decodes `ioreg -a` output, an array of registry nodes.
func parseIORegPlist(output string) (string, error) {
	var entries []ioregEntry
	if _, err := plist.Unmarshal([]byte(output), &entries); err != nil {
		return "", &ParseError{Source: "ioreg plist", Err: err}
	}

	for _, entry := range entries {
		if entry.IOPlatformUUID != "" {
			return normalizeUUID("ioreg plist", entry.IOPlatformUUID)
		}
	}

	return "", fmt.Errorf("IOPlatformUUID not found in ioreg plist: %w", ErrNotFound)
}

// parseIORegText extracts IOPlatformUUID from `ioreg -rd1` text output.
func parseIORegText(output string) (string, error) {
	match := ioregUUIDRe.FindStringSubmatch(output)
	if len(match) < 2 {
		return "", fmt.Errorf("IOPlatformUUID not found in ioreg output: %w", ErrNotFound)
	}

	return normalizeUUID("ioreg output", match[1])
}

// wmiUUID retrieves the system UUID using wmic, with a PowerShell fallback
// for hosts where wmic has been removed.
func wmiUUID(ctx context.Context, executor CommandExecutor, logger *slog.Logger) (string, error) {
	output, err := executeCommand(ctx, executor, logger, "wmic", "csproduct", "get", "UUID", "/value")
	if err == nil {
		value, parseErr := parseWmicValue(output, "UUID=")
		if parseErr == nil {
			return normalizeUUID("wmic output", value)
		}
		err = parseErr
	}

	psOutput, psErr := executeCommand(ctx, executor, logger, "powershell", "-Command",
		"Get-CimInstance -ClassName Win32_ComputerSystemProduct | Select-Object -ExpandProperty UUID")
	if psErr != nil {
		return "", fmt.Errorf("failed to get UUID: wmic: %w, powershell: %w", err, psErr)
	}

	value := strings.TrimSpace(psOutput)
	if value == "" {
		return "", fmt.Errorf("empty UUID from PowerShell: %w", ErrNotFound)
	}

	return normalizeUUID("PowerShell output", value)
}

// parseWmicValue extracts value from wmic output with given prefix.
func parseWmicValue(output, prefix string) (string, error) {
	for line := range strings.SplitSeq(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			value := strings.TrimSpace(strings.TrimPrefix(line, prefix))
			if value == "" {
				continue
			}

			return value, nil
		}
	}

	return "", fmt.Errorf("value with prefix %s not found: %w", prefix, ErrNotFound)
}

// sysfsUUIDLocations are where Linux exposes the DMI product UUID. The
// kernel already applies the SMBIOS 2.6 byte order.
var sysfsUUIDLocations = []string{
	"/sys/class/dmi/id/product_uuid",
	"/sys/devices/virtual/dmi/id/product_uuid",
}

// sysfsUUID reads the first valid product UUID from sysfs. Reading
// product_uuid requires root.
func sysfsUUID(fs afero.Fs) (string, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	var errs []error
	for _, location := range sysfsUUIDLocations {
		data, err := afero.ReadFile(fs, location)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		value, err := normalizeUUID(location, strings.TrimSpace(string(data)))
		if err != nil {
			errs = append(errs, err)
			continue
		}

		return value, nil
	}

	return "", fmt.Errorf("no valid UUID in sysfs: %w", errors.Join(append(errs, ErrNotFound)...))
}
