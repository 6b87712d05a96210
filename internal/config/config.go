package config

import (
	"fmt"
	"net/netip"
	"time"

	"fping-influx/internal/models"
)

// Config holds all configuration for one fping-influx run
type Config struct {
	RangeStart  string `yaml:"range_start"`
	RangeEnd    string `yaml:"range_end"`
	Measurement string `yaml:"measurement"`
	// Host overrides the resolved FQDN used for the host tag
	Host            string   `yaml:"host"`
	LogLevel        string   `yaml:"log_level"`
	Probe           Probe    `yaml:"probe"`
	InfluxDB        InfluxDB `yaml:"influxdb"`
	History         History  `yaml:"history"`
	Report          Report   `yaml:"report"`
	MetricsTextfile string   `yaml:"metrics_textfile"`
}

// Probe configures the fping invocation
type Probe struct {
	Binary     string `yaml:"binary"`
	Size       int    `yaml:"size"`
	IntervalMs int    `yaml:"interval_ms"`
	Count      int    `yaml:"count"`
	// Timeout kills fping when exceeded; zero leaves it unbounded
	Timeout time.Duration `yaml:"timeout"`
}

// InfluxDB configures the metrics sink
type InfluxDB struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Database string        `yaml:"database"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// History configures the optional SQLite run archive
type History struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// Report configures chart generation from the history
type Report struct {
	Dir   string `yaml:"dir"`
	Hours int    `yaml:"hours"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Measurement: "fping",
		LogLevel:    "info",
		Probe: Probe{
			Binary:     "/usr/bin/fping",
			Size:       1400,
			IntervalMs: 100,
			Count:      100,
		},
		InfluxDB: InfluxDB{
			Port:    8086,
			Timeout: 10 * time.Second,
		},
		History: History{
			RetentionDays: 90,
		},
		Report: Report{
			Hours: 24,
		},
	}
}

// ProbeParams returns the sweep described by the configuration
func (c *Config) ProbeParams() models.ProbeParams {
	return models.ProbeParams{
		RangeStart: c.RangeStart,
		RangeEnd:   c.RangeEnd,
		PacketSize: c.Probe.Size,
		IntervalMs: c.Probe.IntervalMs,
		Count:      c.Probe.Count,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.RangeStart == "" || c.RangeEnd == "" {
		return fmt.Errorf("range start and end must be specified")
	}
	start, err := netip.ParseAddr(c.RangeStart)
	if err != nil {
		return fmt.Errorf("range start: %w", err)
	}
	end, err := netip.ParseAddr(c.RangeEnd)
	if err != nil {
		return fmt.Errorf("range end: %w", err)
	}
	if start.Is4() != end.Is4() {
		return fmt.Errorf("range %s - %s mixes address families", start, end)
	}
	if start.Compare(end) > 0 {
		return fmt.Errorf("range start %s is after range end %s", start, end)
	}

	if c.Measurement == "" {
		return fmt.Errorf("measurement cannot be empty")
	}
	if c.Probe.Binary == "" {
		return fmt.Errorf("fping binary cannot be empty")
	}
	if c.Probe.Size <= 0 {
		return fmt.Errorf("size must be positive")
	}
	if c.Probe.IntervalMs <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Probe.Count <= 0 {
		return fmt.Errorf("count must be positive")
	}
	if c.Probe.Timeout < 0 {
		return fmt.Errorf("probe timeout cannot be negative")
	}

	if c.InfluxDB.Host == "" {
		return fmt.Errorf("influxdb host cannot be empty")
	}
	if c.InfluxDB.Port <= 0 || c.InfluxDB.Port > 65535 {
		return fmt.Errorf("influxdb port must be between 1 and 65535")
	}
	if c.InfluxDB.Database == "" {
		return fmt.Errorf("influxdb database cannot be empty")
	}
	if c.InfluxDB.Timeout < 0 {
		return fmt.Errorf("influxdb timeout cannot be negative")
	}

	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history retention cannot be negative")
	}
	if c.Report.Dir != "" && c.History.Path == "" {
		return fmt.Errorf("report dir requires a history database")
	}
	if c.Report.Hours <= 0 {
		return fmt.Errorf("report hours must be positive")
	}
	return nil
}
