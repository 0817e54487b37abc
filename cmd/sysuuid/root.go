package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/slashdevops/sysuuid"
	"github.com/slashdevops/sysuuid/internal/config"
	"github.com/slashdevops/sysuuid/internal/logger"
)

// errMismatch is returned when --validate does not match; the result has
// already been printed.
var errMismatch = errors.New("value does not match")

// app carries state shared by the commands of one invocation.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	log     *zap.Logger
	cfgFile string
}

// persistentKeys maps config keys to the persistent flags bound to them.
var persistentKeys = map[string]string{
	"debug":      "debug",
	"log_format": "log-format",
	"log_file":   "log-file",
	"table_file": "table-file",
	"strategies": "strategy",
	"layout":     "layout",
	"timeout":    "timeout",

	"find_system_info": "find-system-info",
}

// uuidKeys maps config keys to the root command flags bound to them.
var uuidKeys = map[string]string{
	"anonymize": "anonymize",
	"hash":      "hash",
	"format":    "format",
	"salt":      "salt",
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   applicationName,
		Short: "Read the system UUID from the SMBIOS firmware tables",
		Long: `sysuuid prints the system UUID stored by the firmware in the SMBIOS
System Information structure, optionally as an anonymized hash.

The raw SMBIOS table is decoded directly where the platform exposes it;
otherwise the value reported by the operating system (sysfs, dmidecode,
ioreg, WMI) is used.`,
		Example: `  sysuuid                                   Print the system UUID
  sysuuid --anonymize --hash md5 --format 0  MD5 fingerprint of the UUID
  sysuuid --anonymize --salt "my-app"       Application-specific hash
  sysuuid --table-file dmi.bin --layout grouped
  sysuuid --validate <uuid>                 Validate a stored value
  sysuuid --diagnostics                     Show which strategies were tried
  sysuuid decode --json                     Decode the System Information structure
  sysuuid walk                              List the SMBIOS structures`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.sync()
		},
		RunE: a.runUUID,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is sysuuid.yaml in ., the user config dir or ~/.config/sysuuid)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("log-format", "human", "Log format: json or human")
	pf.String("log-file", "", "Also write logs to this file")
	pf.String("table-file", "", "Read a captured SMBIOS table (bare or dmidecode --dump-bin) instead of the firmware")
	pf.StringSlice("strategy", nil, "Strategies to try in order: firmware-table, sysfs, dmidecode, ioreg, wmi (default is the platform order)")
	pf.String("layout", config.LayoutAuto, "UUID layout for firmware tables: auto, canonical, swapped, grouped")
	pf.Duration("timeout", 5*time.Second, "Timeout for each system command")
	pf.Bool("find-system-info", false, "Use the first type 1 structure when handle 1 is not System Information")
	pf.Bool("json", false, "Output result as JSON")

	f := cmd.Flags()
	f.Bool("anonymize", false, "Print a hash of the UUID instead of the UUID")
	f.String("hash", string(sysuuid.HashSHA256), "Anonymization hash: md5, sha256, blake2b")
	f.Int("format", 64, "Anonymized length: 32, 64, 128, 256, or 0 for the digest length")
	f.String("salt", "", "Custom salt for application-specific anonymized values")
	f.String("validate", "", "Validate a UUID (or anonymized value) against the current machine")
	f.Bool("diagnostics", false, "Show which strategies were tried")

	for key, name := range persistentKeys {
		_ = a.v.BindPFlag(key, pf.Lookup(name))
	}
	for key, name := range uuidKeys {
		_ = a.v.BindPFlag(key, f.Lookup(name))
	}

	cmd.AddCommand(newDecodeCmd(a), newWalkCmd(a), newVersionCmd())

	return cmd
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	l, err := logger.New(logger.Config{
		Debug:     cfg.Debug,
		LogFormat: cfg.LogFormat,
		LogFile:   cfg.LogFile,
	})
	if err != nil {
		return err
	}
	a.log = l

	if cfg.File != "" {
		a.log.Debug("loaded config file", zap.String("file", cfg.File))
	}

	return nil
}

// sync flushes buffered log entries.
func (a *app) sync() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// provider builds a Provider from the validated configuration.
func (a *app) provider() *sysuuid.Provider {
	p := sysuuid.New().
		WithTimeout(a.cfg.Timeout).
		WithLogger(logger.Slog(a.log))

	strategies, _ := a.cfg.StrategyList()

	if a.cfg.TableFile != "" {
		p.WithTableReader(&sysuuid.FileTableReader{Path: a.cfg.TableFile})
		// A captured table replaces the machine; do not fall back to it.
		if strategies == nil {
			strategies = []sysuuid.Strategy{sysuuid.StrategyFirmwareTable}
		}
	}

	if strategies != nil {
		p.WithStrategies(strategies...)
	}

	if layout, ok, _ := a.cfg.UUIDLayout(); ok {
		p.WithLayout(layout)
	}

	p.WithSystemInfoSearch(a.cfg.FindSystemInfo)

	if a.cfg.Anonymize {
		alg, _ := a.cfg.HashAlgorithm()
		mode, _ := a.cfg.FormatMode()
		p.WithAnonymize(alg).WithFormat(mode).WithSalt(a.cfg.Salt)
	}

	return p
}

func (a *app) runUUID(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	p := a.provider()

	jsonOut, _ := cmd.Flags().GetBool("json")
	diagnostics, _ := cmd.Flags().GetBool("diagnostics")

	if expected, _ := cmd.Flags().GetString("validate"); expected != "" {
		return handleValidate(ctx, cmd, p, expected, jsonOut)
	}

	id, err := p.UUID(ctx)
	if err != nil {
		a.log.Error("failed to read system UUID", zap.Error(err))
		if diagnostics {
			printDiagnostics(cmd.ErrOrStderr(), p)
		}

		return fmt.Errorf("failed to read system UUID: %w", err)
	}

	if jsonOut {
		output := map[string]any{
			"uuid":       id,
			"anonymized": a.cfg.Anonymize,
			"length":     len(id),
		}
		if diagnostics {
			output["diagnostics"] = formatDiagnostics(p)
		}

		return printJSON(cmd.OutOrStdout(), output)
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)

	if diagnostics {
		printDiagnostics(cmd.ErrOrStderr(), p)
	}

	return nil
}

func handleValidate(ctx context.Context, cmd *cobra.Command, p *sysuuid.Provider, expected string, jsonOut bool) error {
	valid, err := p.Validate(ctx, expected)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if jsonOut {
		if err := printJSON(cmd.OutOrStdout(), map[string]any{
			"valid":    valid,
			"expected": expected,
		}); err != nil {
			return err
		}
	} else if valid {
		fmt.Fprintln(cmd.OutOrStdout(), "valid: system UUID matches")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "invalid: system UUID does not match")
	}

	if !valid {
		return errMismatch
	}

	return nil
}
