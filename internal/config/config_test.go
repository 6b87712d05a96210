package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fping-influx/internal/models"
)

var positionals = []string{"10.0.0.1", "10.0.0.254", "influx.local", "8086", "network"}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.RangeStart = "10.0.0.1"
	cfg.RangeEnd = "10.0.0.254"
	cfg.InfluxDB.Host = "influx.local"
	cfg.InfluxDB.Database = "network"
	return cfg
}

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := ParseFlags(positionals, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1", cfg.RangeStart)
	assert.Equal(t, "10.0.0.254", cfg.RangeEnd)
	assert.Equal(t, "influx.local", cfg.InfluxDB.Host)
	assert.Equal(t, 8086, cfg.InfluxDB.Port)
	assert.Equal(t, "network", cfg.InfluxDB.Database)
	assert.Equal(t, 1400, cfg.Probe.Size)
	assert.Equal(t, 100, cfg.Probe.IntervalMs)
	assert.Equal(t, 100, cfg.Probe.Count)
	assert.Equal(t, "fping", cfg.Measurement)
	assert.Zero(t, cfg.Probe.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestParseFlagsInterleaved(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "flags first",
			args: append([]string{"--size", "64", "--interval", "20", "--count", "5"}, positionals...),
		},
		{
			name: "flags last",
			args: append(append([]string{}, positionals...), "--size", "64", "--interval", "20", "--count", "5"),
		},
		{
			name: "flags between",
			args: []string{"10.0.0.1", "--size=64", "10.0.0.254", "influx.local", "-interval", "20", "8086", "network", "-count=5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseFlags(tt.args, io.Discard)
			require.NoError(t, err)
			assert.Equal(t, models.ProbeParams{
				RangeStart: "10.0.0.1",
				RangeEnd:   "10.0.0.254",
				PacketSize: 64,
				IntervalMs: 20,
				Count:      5,
			}, cfg.ProbeParams())
			assert.Equal(t, "network", cfg.InfluxDB.Database)
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "too many positionals", args: append(append([]string{}, positionals...), "extra")},
		{name: "port not a number", args: []string{"10.0.0.1", "10.0.0.2", "influx", "http", "db"}},
		{name: "size not a number", args: append([]string{"--size", "big"}, positionals...)},
		{name: "unknown flag", args: append([]string{"--bogus"}, positionals...)},
		{name: "missing config file", args: append([]string{"--config", "/does/not/exist.yaml"}, positionals...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags(tt.args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	_, err := ParseFlags([]string{"-h"}, io.Discard)
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestParseFlagsConfigFilePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fping-influx.yaml")
	content := `
range_start: 192.168.0.1
range_end: 192.168.0.20
measurement: lan_fping
host: probe-01
probe:
  size: 56
  count: 20
  timeout: 2m
influxdb:
  host: tsdb.internal
  port: 8087
  database: lan
  username: writer
  password: secret
  timeout: 3s
history:
  path: /var/lib/fping-influx/history.db
  retention_days: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := ParseFlags([]string{"--config", path, "--count", "7", "10.1.0.1", "10.1.0.9"}, io.Discard)
	require.NoError(t, err)

	// positionals and explicit flags win over the file
	assert.Equal(t, "10.1.0.1", cfg.RangeStart)
	assert.Equal(t, "10.1.0.9", cfg.RangeEnd)
	assert.Equal(t, 7, cfg.Probe.Count)

	// file wins over defaults
	assert.Equal(t, 56, cfg.Probe.Size)
	assert.Equal(t, 100, cfg.Probe.IntervalMs)
	assert.Equal(t, 2*time.Minute, cfg.Probe.Timeout)
	assert.Equal(t, "lan_fping", cfg.Measurement)
	assert.Equal(t, "probe-01", cfg.Host)
	assert.Equal(t, "tsdb.internal", cfg.InfluxDB.Host)
	assert.Equal(t, 8087, cfg.InfluxDB.Port)
	assert.Equal(t, "lan", cfg.InfluxDB.Database)
	assert.Equal(t, "writer", cfg.InfluxDB.Username)
	assert.Equal(t, "secret", cfg.InfluxDB.Password)
	assert.Equal(t, 3*time.Second, cfg.InfluxDB.Timeout)
	assert.Equal(t, 30, cfg.History.RetentionDays)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("probe: [not, a, map"), 0o600))

	cfg := DefaultConfig()
	assert.Error(t, LoadFile(path, &cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing range", mutate: func(c *Config) { c.RangeEnd = "" }},
		{name: "range start not an address", mutate: func(c *Config) { c.RangeStart = "gateway" }},
		{name: "range end not an address", mutate: func(c *Config) { c.RangeEnd = "10.0.0.300" }},
		{name: "mixed families", mutate: func(c *Config) { c.RangeEnd = "fe80::1" }},
		{name: "reversed range", mutate: func(c *Config) { c.RangeStart, c.RangeEnd = c.RangeEnd, c.RangeStart }},
		{name: "empty measurement", mutate: func(c *Config) { c.Measurement = "" }},
		{name: "empty binary", mutate: func(c *Config) { c.Probe.Binary = "" }},
		{name: "zero size", mutate: func(c *Config) { c.Probe.Size = 0 }},
		{name: "zero interval", mutate: func(c *Config) { c.Probe.IntervalMs = 0 }},
		{name: "zero count", mutate: func(c *Config) { c.Probe.Count = 0 }},
		{name: "negative timeout", mutate: func(c *Config) { c.Probe.Timeout = -time.Second }},
		{name: "missing influx host", mutate: func(c *Config) { c.InfluxDB.Host = "" }},
		{name: "port too large", mutate: func(c *Config) { c.InfluxDB.Port = 70000 }},
		{name: "port zero", mutate: func(c *Config) { c.InfluxDB.Port = 0 }},
		{name: "missing database", mutate: func(c *Config) { c.InfluxDB.Database = "" }},
		{name: "negative retention", mutate: func(c *Config) { c.History.RetentionDays = -1 }},
		{name: "report without history", mutate: func(c *Config) { c.Report.Dir = "/tmp/report" }},
		{name: "zero report hours", mutate: func(c *Config) { c.Report.Hours = 0 }},
	}

	base := validConfig()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateSingleAddressRange(t *testing.T) {
	cfg := validConfig()
	cfg.RangeStart = "10.0.0.7"
	cfg.RangeEnd = "10.0.0.7"
	assert.NoError(t, cfg.Validate())

	cfg.RangeStart = "2001:db8::1"
	cfg.RangeEnd = "2001:db8::ff"
	assert.NoError(t, cfg.Validate())
}
