// Package web serves the run history archived in SQLite as a read-only JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fping-influx/internal/database"
)

const shutdownTimeout = 5 * time.Second

// Server handles web requests
type Server struct {
	db     *database.DB
	addr   string
	logger *zap.Logger

	// registry holds this server's own metrics. Run metrics belong to
	// fping-influx and reach Prometheus through its textfile.
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// New creates a new web server
func New(db *database.DB, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fping_history",
		Name:      "http_requests_total",
		Help:      "API requests by route, status code and method",
	}, []string{"handler", "code", "method"})
	reg.MustRegister(requests)

	return &Server{
		db:       db,
		addr:     addr,
		logger:   logger,
		registry: reg,
		requests: requests,
	}
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.Handle("/api/runs", s.instrument("runs", s.handleRuns))
	mux.Handle("/api/summary", s.instrument("summary", s.handleSummary))
	mux.Handle("/api/history", s.instrument("history", s.handleHistory))

	// metrics of the history server process only
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Web server starting", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) instrument(name string, h http.HandlerFunc) http.Handler {
	counter := s.requests.MustCurryWith(prometheus.Labels{"handler": name})
	return promhttp.InstrumentHandlerCounter(counter, getOnly(h))
}

func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}
