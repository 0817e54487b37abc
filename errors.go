package sysuuid

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by [Provider.UUID] and recorded in [DiagnosticInfo.Errors].
var (
	// ErrNotFound is returned when a UUID is not found in command output
	// or system files.
	ErrNotFound = errors.New("value not found")

	// ErrUnsetUUID is returned when the firmware reports the UUID as not
	// present (all 0x00) or not settable (all 0xFF).
	ErrUnsetUUID = errors.New("UUID not present or not set by firmware")

	// ErrAllMethodsFailed is returned when every configured strategy has
	// been exhausted without producing a UUID.
	ErrAllMethodsFailed = errors.New("all collection methods failed")

	// ErrUnsupportedPlatform is returned when no strategy is available for
	// the running operating system.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrNoTableReader is returned by the firmware-table strategy when no
	// [TableReader] is available.
	ErrNoTableReader = errors.New("no SMBIOS table reader available")
)

// CommandError records a failed system command execution.
// Use [errors.As] to extract the command name from wrapped errors.
type CommandError struct {
	Command string // command name, e.g. "dmidecode", "ioreg", "wmic"
	Err     error  // underlying error from exec
}

// Error returns a human-readable description of the command failure.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// ParseError records a failure while parsing command output or firmware data.
// Use [errors.As] to extract the source from wrapped errors.
type ParseError struct {
	Source string // data source, e.g. "dmidecode output", "SMBIOS table"
	Err    error  // underlying parse error
}

// Error returns a human-readable description of the parse failure.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// StrategyError records a failure of a single UUID collection strategy.
// These errors appear in [DiagnosticInfo.Errors] and can be inspected with [errors.As].
type StrategyError struct {
	Strategy Strategy // strategy that failed
	Err      error    // underlying error
}

// Error returns a human-readable description of the strategy failure.
func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %q: %v", e.Strategy, e.Err)
}

// Unwrap returns the underlying error.
func (e *StrategyError) Unwrap() error {
	return e.Err
}
