package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slashdevops/sysuuid"
	"github.com/slashdevops/sysuuid/smbios"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sysuuid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "human", cfg.LogFormat)
	assert.Equal(t, "sha256", cfg.Hash)
	assert.Equal(t, 64, cfg.Format)
	assert.Equal(t, LayoutAuto, cfg.Layout)
	assert.Empty(t, cfg.Strategies)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.False(t, cfg.FindSystemInfo)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
debug: true
log_format: json
anonymize: true
hash: md5
format: 0
salt: my-app
layout: canonical
strategies: [sysfs, dmidecode]
table_file: /tmp/dmi.bin
timeout: 2s
find_system_info: true
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Anonymize)
	assert.Equal(t, "my-app", cfg.Salt)
	assert.Equal(t, "/tmp/dmi.bin", cfg.TableFile)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.True(t, cfg.FindSystemInfo)
	assert.Equal(t, path, cfg.File)

	alg, err := cfg.HashAlgorithm()
	require.NoError(t, err)
	assert.Equal(t, sysuuid.HashMD5, alg)

	mode, err := cfg.FormatMode()
	require.NoError(t, err)
	assert.Equal(t, sysuuid.FormatDigest, mode)

	layout, ok, err := cfg.UUIDLayout()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, smbios.LayoutCanonical, layout)

	strategies, err := cfg.StrategyList()
	require.NoError(t, err)
	assert.Equal(t, []sysuuid.Strategy{sysuuid.StrategySysfs, sysuuid.StrategyDMIDecode}, strategies)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SYSUUID_HASH", "blake2b")
	t.Setenv("SYSUUID_LAYOUT", "grouped")
	t.Setenv("SYSUUID_TIMEOUT", "750ms")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "blake2b", cfg.Hash)
	assert.Equal(t, "grouped", cfg.Layout)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "salt: from-file\nformat: 32\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("salt", "", "")
	flags.Int("format", 64, "")
	require.NoError(t, flags.Parse([]string{"--salt", "from-flag"}))

	v := viper.New()
	require.NoError(t, v.BindPFlag("salt", flags.Lookup("salt")))
	require.NoError(t, v.BindPFlag("format", flags.Lookup("format")))

	cfg, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Salt)
	assert.Equal(t, 32, cfg.Format)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{LogFormat: "human", Hash: "sha256", Format: 64, Layout: LayoutAuto, Timeout: time.Second}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
		{"hash", func(c *Config) { c.Hash = "sha1" }},
		{"format", func(c *Config) { c.Format = 48 }},
		{"layout", func(c *Config) { c.Layout = "mixed" }},
		{"strategy", func(c *Config) { c.Strategies = []string{"smbus"} }},
		{"timeout", func(c *Config) { c.Timeout = 0 }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestUUIDLayoutAuto(t *testing.T) {
	for _, name := range []string{"", "auto", "AUTO"} {
		_, ok, err := (&Config{Layout: name}).UUIDLayout()
		require.NoError(t, err)
		assert.False(t, ok, name)
	}
}
