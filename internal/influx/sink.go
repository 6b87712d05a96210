// Package influx writes metric points to InfluxDB 1.x.
package influx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	client "github.com/influxdata/influxdb1-client/v2"
	"go.uber.org/zap"

	"fping-influx/internal/config"
	"fping-influx/internal/metrics"
	"fping-influx/internal/models"
)

// ErrSinkWrite is matched by every WriteError
var ErrSinkWrite = errors.New("metrics sink write failed")

// WriteError reports a batch that did not reach InfluxDB. Nothing is retried.
type WriteError struct {
	Database string
	Points   int
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %d points to database %q: %v", ErrSinkWrite, e.Points, e.Database, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrSinkWrite, e.Err}
}

const userAgent = "fping-influx"

// Sink is a one-batch-per-run InfluxDB writer
type Sink struct {
	client   client.Client
	database string
	logger   *zap.Logger
}

// New creates a Sink for the configured server and database
func New(cfg config.InfluxDB, logger *zap.Logger) (*Sink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:      Addr(cfg.Host, cfg.Port),
		Username:  cfg.Username,
		Password:  cfg.Password,
		UserAgent: userAgent,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("influxdb client: %w", err)
	}

	return &Sink{client: c, database: cfg.Database, logger: logger}, nil
}

// Addr builds the server URL. A host given with an http:// or https://
// scheme keeps it.
func Addr(host string, port int) string {
	scheme := "http"
	for _, s := range []string{"http", "https"} {
		if rest, ok := strings.CutPrefix(host, s+"://"); ok {
			scheme, host = s, rest
			break
		}
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// Write sends all points in a single batch
func (s *Sink) Write(ctx context.Context, points []models.MetricPoint) error {
	if len(points) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return s.writeError(len(points), err)
	}

	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  s.database,
		Precision: "ns",
	})
	if err != nil {
		return s.writeError(len(points), err)
	}

	for _, p := range points {
		pt, err := client.NewPoint(p.Measurement, p.Tags, p.Fields, p.Time)
		if err != nil {
			return s.writeError(len(points), fmt.Errorf("point for %s: %w", p.Tags[metrics.TagTarget], err))
		}
		bp.AddPoint(pt)
	}

	if err := s.client.Write(bp); err != nil {
		return s.writeError(len(points), err)
	}

	s.logger.Info("Pushed points to InfluxDB",
		zap.String("database", s.database),
		zap.Int("points", len(points)),
	)
	return nil
}

// Close releases the underlying HTTP client
func (s *Sink) Close() error {
	return s.client.Close()
}

func (s *Sink) writeError(points int, err error) error {
	return &WriteError{Database: s.database, Points: points, Err: err}
}
