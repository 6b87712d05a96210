package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fping-influx/internal/config"
	"fping-influx/internal/database"
	"fping-influx/internal/hostid"
	"fping-influx/internal/influx"
	"fping-influx/internal/instrument"
	"fping-influx/internal/logging"
	"fping-influx/internal/monitor"
	"fping-influx/internal/parser"
	"fping-influx/internal/ping"
	"fping-influx/internal/report"
)

// Exit codes
const (
	exitOK    = 0
	exitRun   = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Parse configuration
	cfg, err := config.ParseFlags(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fping-influx: %v\n", err)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "fping-influx: invalid configuration: %v\n", err)
		return exitUsage
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fping-influx: %v\n", err)
		return exitUsage
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, err := hostid.Resolve(ctx, cfg.Host)
	if err != nil {
		logger.Error("Failed to resolve host name", zap.Error(err))
		return exitRun
	}

	sink, err := influx.New(cfg.InfluxDB, logger)
	if err != nil {
		logger.Error("Failed to create InfluxDB client", zap.Error(err))
		return exitRun
	}
	defer sink.Close()

	var opts []monitor.Option

	// Initialize history database
	if cfg.History.Path != "" {
		db, err := database.New(cfg.History.Path)
		if err != nil {
			logger.Error("Failed to open history database", zap.Error(err))
			return exitRun
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			logger.Error("Failed to initialize history schema", zap.Error(err))
			return exitRun
		}
		opts = append(opts, monitor.WithHistory(db, cfg.History.RetentionDays))

		if cfg.Report.Dir != "" {
			opts = append(opts, monitor.WithReports(report.NewGenerator(db, logger), cfg.Report.Dir, cfg.Report.Hours))
		}
	}

	var inst *instrument.Instruments
	if cfg.MetricsTextfile != "" {
		inst = instrument.New()
		opts = append(opts, monitor.WithInstruments(inst))
	}

	mon := monitor.New(ping.New(cfg.Probe.Binary, logger), sink, logger, opts...)
	_, runErr := mon.Run(ctx, monitor.Job{
		Params:      cfg.ProbeParams(),
		Host:        host,
		Measurement: cfg.Measurement,
		Timeout:     cfg.Probe.Timeout,
	})

	if inst != nil {
		if err := inst.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("Failed to write metrics textfile", zap.Error(err))
		}
	}

	if runErr != nil {
		fields := []zap.Field{zap.String("stage", monitor.FailedStage(runErr)), zap.Error(runErr)}
		var lineErr *parser.MalformedLineError
		if errors.As(runErr, &lineErr) {
			fields = append(fields, zap.Int("line", lineErr.Line), zap.String("content", lineErr.Content))
		}
		var execErr *ping.ExecutionError
		if errors.As(runErr, &execErr) {
			fields = append(fields, zap.Int("exit_code", execErr.ExitCode), zap.String("output", execErr.Output))
		}
		logger.Error("Run failed", fields...)
		return exitRun
	}
	return exitOK
}
