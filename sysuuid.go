package sysuuid

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/slashdevops/sysuuid/smbios"
)

// defaultTimeout is the default timeout for system command execution.
const defaultTimeout = 5 * time.Second

// CommandExecutor is an interface for executing system commands, allowing for dependency injection and testing.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
}

// Provider configures and retrieves the system UUID.
// After the first call to UUID(), the configuration is frozen and the result is cached.
// Provider methods are safe for concurrent use after configuration is complete.
type Provider struct {
	commandExecutor CommandExecutor
	tableReader     TableReader
	fs              afero.Fs
	logger          *slog.Logger
	diagnostics     *DiagnosticInfo
	strategies      []Strategy
	salt            string
	hash            HashAlgorithm
	cachedUUID      string
	formatMode      FormatMode
	layout          smbios.Layout
	mu              sync.Mutex
	layoutSet       bool
	anonymize       bool
	searchType1     bool
}

// New creates a new Provider with default settings.
// The provider uses the platform's native SMBIOS source and real system
// commands, tried in the order returned by [DefaultStrategies].
func New() *Provider {
	return &Provider{
		commandExecutor: &defaultCommandExecutor{
			Timeout: defaultTimeout,
		},
		tableReader: nativeTableReader(),
		fs:          afero.NewOsFs(),
		hash:        HashSHA256,
		formatMode:  Format64,
	}
}

// WithAnonymize makes [Provider.UUID] return a hash of the UUID instead of
// the UUID itself.
func (p *Provider) WithAnonymize(alg HashAlgorithm) *Provider {
	p.anonymize = true
	p.hash = alg

	return p
}

// WithSalt sets a custom salt mixed into the anonymized UUID, so that two
// applications on the same machine produce different values.
func (p *Provider) WithSalt(salt string) *Provider {
	p.salt = salt

	return p
}

// WithFormat sets the length of the anonymized UUID.
// Use Format64 (default), Format32, Format128, Format256 or FormatDigest.
func (p *Provider) WithFormat(mode FormatMode) *Provider {
	p.formatMode = mode

	return p
}

// WithLayout forces the rendering of UUIDs decoded from the firmware table.
// By default the layout follows the SMBIOS version ([smbios.LayoutForVersion]).
// Text-scraping strategies report the operating system's rendering and are
// not affected.
func (p *Provider) WithLayout(layout smbios.Layout) *Provider {
	p.layout = layout
	p.layoutSet = true

	return p
}

// WithSystemInfoSearch makes the firmware-table strategy search the table
// for the first Type 1 structure when handle 1 does not hold one. By default
// only handle 1 is consulted, as DSP0134 tables assign it to System
// Information.
func (p *Provider) WithSystemInfoSearch(enabled bool) *Provider {
	p.searchType1 = enabled

	return p
}

// WithStrategies replaces the platform default strategy order.
func (p *Provider) WithStrategies(strategies ...Strategy) *Provider {
	p.strategies = slices.Clone(strategies)
	if p.strategies == nil {
		p.strategies = []Strategy{}
	}

	return p
}

// WithTableReader sets the source of the raw SMBIOS table used by
// [StrategyFirmwareTable], e.g. a [FileTableReader] for a captured dump.
func (p *Provider) WithTableReader(reader TableReader) *Provider {
	p.tableReader = reader

	return p
}

// WithFS sets the filesystem used by [StrategySysfs].
func (p *Provider) WithFS(fs afero.Fs) *Provider {
	p.fs = fs

	return p
}

// WithExecutor sets a custom [CommandExecutor], enabling deterministic testing
// without real system commands.
func (p *Provider) WithExecutor(executor CommandExecutor) *Provider {
	p.commandExecutor = executor

	return p
}

// WithTimeout sets the per-command timeout of the default executor.
// It has no effect after [Provider.WithExecutor].
func (p *Provider) WithTimeout(timeout time.Duration) *Provider {
	if e, ok := p.commandExecutor.(*defaultCommandExecutor); ok {
		e.Timeout = timeout
	}

	return p
}

// WithLogger sets an optional [*slog.Logger] for observability.
// When set, the provider logs strategy attempts, fallback paths, command
// execution timing, and errors. A nil logger (the default) disables all logging
// with zero overhead.
func (p *Provider) WithLogger(logger *slog.Logger) *Provider {
	p.logger = logger

	return p
}

// UUID returns the system UUID, or its anonymized hash when
// [Provider.WithAnonymize] was set.
// It caches the result, so subsequent calls return the same value.
// The provided context controls the timeout and cancellation of any
// system commands executed while collecting the UUID.
// This method is safe for concurrent use.
func (p *Provider) UUID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedUUID != "" {
		p.logDebug("returning cached UUID")

		return p.cachedUUID, nil
	}

	p.logInfo("collecting system UUID",
		"platform", runtime.GOOS,
		"strategies", p.strategyNames(),
		"anonymize", p.anonymize,
	)

	diag := &DiagnosticInfo{
		Errors: make(map[string]error),
	}
	p.diagnostics = diag

	id, err := collectUUID(ctx, p, diag)
	if err != nil {
		p.logWarn("no system UUID collected", "errors", diag.Errors)

		return "", err
	}

	if p.anonymize {
		id, err = Anonymize(id, p.salt, p.hash, p.formatMode)
		if err != nil {
			return "", err
		}
	}

	p.cachedUUID = id

	p.logInfo("system UUID collected",
		"strategy", diag.Strategy,
		"errors_count", len(diag.Errors),
	)

	return p.cachedUUID, nil
}

// Diagnostics returns information about which strategies were tried and
// which one produced the UUID during the last call to [Provider.UUID].
// Returns nil if [Provider.UUID] has not been called yet.
func (p *Provider) Diagnostics() *DiagnosticInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.diagnostics
}

// Validate checks if the provided value matches the current UUID (or its
// anonymized hash, depending on configuration).
func (p *Provider) Validate(ctx context.Context, id string) (bool, error) {
	current, err := p.UUID(ctx)
	if err != nil {
		return false, err
	}

	return current == id, nil
}

// Table reads and walks the SMBIOS table from the configured [TableReader].
func (p *Provider) Table(ctx context.Context) (*smbios.Table, *RawTable, error) {
	return p.readTable(ctx)
}

// SystemInfo reads the SMBIOS table and decodes its System Information
// structure, for callers needing more than the UUID.
func (p *Provider) SystemInfo(ctx context.Context) (smbios.SystemInfo, *RawTable, error) {
	table, raw, err := p.readTable(ctx)
	if err != nil {
		return smbios.SystemInfo{}, nil, err
	}

	info, err := p.decodeSystemInfo(table)
	if err != nil {
		return smbios.SystemInfo{}, nil, &ParseError{Source: "System Information structure", Err: err}
	}

	return info, raw, nil
}

// strategyNames returns the names of the strategies that will be tried.
func (p *Provider) strategyNames() []string {
	strategies := p.strategies
	if strategies == nil {
		strategies = platformStrategies
	}

	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.String())
	}

	return names
}

// logDebug logs at debug level if a logger is configured.
func (p *Provider) logDebug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

// logInfo logs at info level if a logger is configured.
func (p *Provider) logInfo(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

// logWarn logs at warn level if a logger is configured.
func (p *Provider) logWarn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
