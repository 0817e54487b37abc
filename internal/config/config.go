// Package config loads the sysuuid CLI configuration from defaults, an
// optional YAML file, SYSUUID_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/slashdevops/sysuuid"
	"github.com/slashdevops/sysuuid/smbios"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "sysuuid"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "SYSUUID"

	// LayoutAuto selects the layout from the SMBIOS version.
	LayoutAuto = "auto"
)

// Config holds the application configuration
type Config struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"` // json or human
	LogFile   string `mapstructure:"log_file"`

	// UUID settings
	Anonymize  bool          `mapstructure:"anonymize"`
	Hash       string        `mapstructure:"hash"`
	Format     int           `mapstructure:"format"` // 0 is the natural digest length
	Salt       string        `mapstructure:"salt"`
	Layout     string        `mapstructure:"layout"`
	Strategies []string      `mapstructure:"strategies"`
	TableFile  string        `mapstructure:"table_file"`
	Timeout    time.Duration `mapstructure:"timeout"`

	// FindSystemInfo searches for a Type 1 structure when handle 1 holds none.
	FindSystemInfo bool `mapstructure:"find_system_info"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// Load reads the configuration into a Config. Flags must already be bound
// to v. An explicit cfgFile must exist; otherwise a missing file is not an
// error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("log_file", "")

	v.SetDefault("anonymize", false)
	v.SetDefault("hash", string(sysuuid.HashSHA256))
	v.SetDefault("format", 64)
	v.SetDefault("salt", "")
	v.SetDefault("layout", LayoutAuto)
	v.SetDefault("strategies", []string{})
	v.SetDefault("table_file", "")
	v.SetDefault("timeout", 5*time.Second)
	v.SetDefault("find_system_info", false)
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	// Always check current directory first
	v.AddConfigPath(".")

	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppName))
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", AppName))
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "json", "human":
	default:
		return fmt.Errorf("invalid log_format %q; valid values are json, human", c.LogFormat)
	}

	if _, err := c.HashAlgorithm(); err != nil {
		return err
	}

	if _, err := c.FormatMode(); err != nil {
		return err
	}

	if _, _, err := c.UUIDLayout(); err != nil {
		return err
	}

	if _, err := c.StrategyList(); err != nil {
		return err
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s; must be positive", c.Timeout)
	}

	return nil
}

// HashAlgorithm returns the configured anonymization algorithm.
func (c *Config) HashAlgorithm() (sysuuid.HashAlgorithm, error) {
	return sysuuid.ParseHashAlgorithm(c.Hash)
}

// FormatMode maps the configured length to a [sysuuid.FormatMode].
func (c *Config) FormatMode() (sysuuid.FormatMode, error) {
	switch c.Format {
	case 0:
		return sysuuid.FormatDigest, nil
	case 32:
		return sysuuid.Format32, nil
	case 64:
		return sysuuid.Format64, nil
	case 128:
		return sysuuid.Format128, nil
	case 256:
		return sysuuid.Format256, nil
	default:
		return 0, fmt.Errorf("unsupported format %d; valid values are 0, 32, 64, 128, 256", c.Format)
	}
}

// UUIDLayout returns the forced layout. ok is false for "auto".
func (c *Config) UUIDLayout() (layout smbios.Layout, ok bool, err error) {
	if c.Layout == "" || strings.EqualFold(c.Layout, LayoutAuto) {
		return 0, false, nil
	}

	layout, err = smbios.ParseLayout(c.Layout)
	if err != nil {
		return 0, false, err
	}

	return layout, true, nil
}

// StrategyList returns the configured strategies, nil for the platform default.
func (c *Config) StrategyList() ([]sysuuid.Strategy, error) {
	if len(c.Strategies) == 0 {
		return nil, nil
	}

	out := make([]sysuuid.Strategy, 0, len(c.Strategies))
	for _, name := range c.Strategies {
		s, err := sysuuid.ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, nil
}
