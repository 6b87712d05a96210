package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
)

const usage = `usage: fping-influx [flags] range_start range_end influxdb_host influxdb_port influxdb_database

Runs fping across the address range and pushes per-target loss and latency to InfluxDB.
Positional arguments may be omitted when a -config file provides them.

`

var positionalNames = []string{"range_start", "range_end", "influxdb_host", "influxdb_port", "influxdb_database"}

// ParseFlags parses command-line arguments into a Config. Values come from
// the defaults, then the -config file, then flags and positional arguments
// that were given explicitly. Flags may follow positional arguments.
func ParseFlags(args []string, output io.Writer) (Config, error) {
	defaults := DefaultConfig()

	fs := flag.NewFlagSet("fping-influx", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	var (
		configPath  = fs.String("config", "", "YAML configuration file")
		size        = fs.Int("size", defaults.Probe.Size, "Packet size in bytes")
		interval    = fs.Int("interval", defaults.Probe.IntervalMs, "Packet interval in ms")
		count       = fs.Int("count", defaults.Probe.Count, "Packet count")
		binary      = fs.String("fping", defaults.Probe.Binary, "Path to the fping binary")
		timeout     = fs.Duration("timeout", defaults.Probe.Timeout, "Kill fping after this long (0 disables)")
		measurement = fs.String("measurement", defaults.Measurement, "InfluxDB measurement name")
		host        = fs.String("host", "", "Host tag value (default: output of hostname -f)")
		historyPath = fs.String("history", "", "SQLite database archiving every run (empty disables)")
		reportDir   = fs.String("report-dir", "", "Write charts and a summary from the history into this directory")
		reportHours = fs.Int("report-hours", defaults.Report.Hours, "Hours of history covered by the report")
		textfile    = fs.String("metrics-textfile", "", "Write Prometheus self-metrics to this textfile")
		logLevel    = fs.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	)

	var positionals []string
	for {
		if err := fs.Parse(args); err != nil {
			return Config{}, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positionals = append(positionals, args[0])
		args = args[1:]
	}
	if len(positionals) > len(positionalNames) {
		return Config{}, fmt.Errorf("too many arguments: got %d, want at most %d", len(positionals), len(positionalNames))
	}

	cfg := defaults
	if *configPath != "" {
		if err := LoadFile(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			cfg.Probe.Size = *size
		case "interval":
			cfg.Probe.IntervalMs = *interval
		case "count":
			cfg.Probe.Count = *count
		case "fping":
			cfg.Probe.Binary = *binary
		case "timeout":
			cfg.Probe.Timeout = *timeout
		case "measurement":
			cfg.Measurement = *measurement
		case "host":
			cfg.Host = *host
		case "history":
			cfg.History.Path = *historyPath
		case "report-dir":
			cfg.Report.Dir = *reportDir
		case "report-hours":
			cfg.Report.Hours = *reportHours
		case "metrics-textfile":
			cfg.MetricsTextfile = *textfile
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := applyPositionals(&cfg, positionals); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyPositionals(cfg *Config, positionals []string) error {
	for i, arg := range positionals {
		switch positionalNames[i] {
		case "range_start":
			cfg.RangeStart = arg
		case "range_end":
			cfg.RangeEnd = arg
		case "influxdb_host":
			cfg.InfluxDB.Host = arg
		case "influxdb_port":
			port, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("influxdb_port %q is not a number", arg)
			}
			cfg.InfluxDB.Port = port
		case "influxdb_database":
			cfg.InfluxDB.Database = arg
		}
	}
	return nil
}
