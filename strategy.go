package sysuuid

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Strategy identifies one way of obtaining the system UUID.
type Strategy int

const (
	// StrategyFirmwareTable reads the raw SMBIOS table and decodes the
	// System Information structure.
	StrategyFirmwareTable Strategy = iota

	// StrategySysfs reads the UUID the Linux kernel exposes under
	// /sys/class/dmi/id.
	StrategySysfs

	// StrategyDMIDecode scrapes the output of `dmidecode --type 1`.
	StrategyDMIDecode

	// StrategyIORegistry scrapes IOPlatformUUID from the macOS I/O Kit registry.
	StrategyIORegistry

	// StrategyWMI queries Win32_ComputerSystemProduct through wmic or PowerShell.
	StrategyWMI
)

var strategyNames = []string{
	StrategyFirmwareTable: "firmware-table",
	StrategySysfs:         "sysfs",
	StrategyDMIDecode:     "dmidecode",
	StrategyIORegistry:    "ioreg",
	StrategyWMI:           "wmi",
}

// String returns the strategy name accepted by [ParseStrategy].
func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}

	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the strategy with the given name.
func ParseStrategy(name string) (Strategy, error) {
	i := slices.Index(strategyNames, strings.ToLower(strings.TrimSpace(name)))
	if i < 0 {
		return 0, fmt.Errorf("unknown strategy %q; valid values are %s", name, strings.Join(strategyNames, ", "))
	}

	return Strategy(i), nil
}

// DefaultStrategies returns the strategies tried on the running platform, in order.
func DefaultStrategies() []Strategy {
	return slices.Clone(platformStrategies)
}

// DiagnosticInfo describes how the last UUID was obtained.
// Use [Provider.Diagnostics] to retrieve this information after calling [Provider.UUID].
type DiagnosticInfo struct {
	Errors        map[string]error // strategy names that failed with their errors
	Attempted     []string         // strategy names in the order they were tried
	Strategy      string           // strategy that produced the UUID, empty on failure
	SMBIOSVersion string           // version reported by the table source, firmware-table only
	Layout        string           // UUID layout applied, firmware-table only
}

// collectUUID tries each configured strategy in order and returns the first
// UUID produced. Failures are recorded in diag and aggregated in the
// returned error when every strategy fails.
func collectUUID(ctx context.Context, p *Provider, diag *DiagnosticInfo) (string, error) {
	strategies := p.strategies
	if strategies == nil {
		strategies = platformStrategies
	}

	if len(strategies) == 0 {
		return "", ErrUnsupportedPlatform
	}

	var result *multierror.Error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		diag.Attempted = append(diag.Attempted, s.String())

		value, err := p.runStrategy(ctx, s, diag)
		if err != nil {
			stratErr := &StrategyError{Strategy: s, Err: err}
			diag.Errors[s.String()] = stratErr
			result = multierror.Append(result, stratErr)
			p.logWarn("strategy failed", "strategy", s.String(), "error", err)

			continue
		}

		diag.Strategy = s.String()
		p.logInfo("strategy succeeded", "strategy", s.String())
		p.logDebug("strategy value", "strategy", s.String(), "uuid", value)

		return value, nil
	}

	return "", fmt.Errorf("%w: %w", ErrAllMethodsFailed, result.ErrorOrNil())
}

// runStrategy dispatches a single strategy.
func (p *Provider) runStrategy(ctx context.Context, s Strategy, diag *DiagnosticInfo) (string, error) {
	switch s {
	case StrategyFirmwareTable:
		return p.firmwareTableUUID(ctx, diag)
	case StrategySysfs:
		return sysfsUUID(p.fs)
	case StrategyDMIDecode:
		return dmidecodeUUID(ctx, p.commandExecutor, p.logger)
	case StrategyIORegistry:
		return ioregUUID(ctx, p.commandExecutor, p.logger)
	case StrategyWMI:
		return wmiUUID(ctx, p.commandExecutor, p.logger)
	default:
		return "", fmt.Errorf("unknown strategy %d", int(s))
	}
}
