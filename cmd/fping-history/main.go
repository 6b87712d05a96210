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

	"fping-influx/internal/database"
	"fping-influx/internal/logging"
	"fping-influx/internal/web"
)

// Exit codes
const (
	exitOK     = 0
	exitServer = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("fping-history", flag.ContinueOnError)
	var (
		dbPath   = fs.String("history", "", "SQLite history database written by fping-influx")
		addr     = fs.String("addr", ":8080", "Listen address")
		logLevel = fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "fping-history: -history is required")
		return exitUsage
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fping-history: %v\n", err)
		return exitUsage
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.New(*dbPath)
	if err != nil {
		logger.Error("Failed to open history database", zap.Error(err))
		return exitServer
	}
	defer db.Close()

	// fping-influx may not have run yet
	if err := db.InitSchema(); err != nil {
		logger.Error("Failed to initialize history schema", zap.Error(err))
		return exitServer
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := web.New(db, *addr, logger).Start(ctx); err != nil {
		logger.Error("Web server failed", zap.Error(err))
		return exitServer
	}
	logger.Info("Shutting down")
	return exitOK
}
