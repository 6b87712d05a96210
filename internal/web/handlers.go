package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"fping-influx/internal/models"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 1000
	defaultHours    = 24
)

// handleRuns handles /api/runs requests
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultRunLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	runs, err := s.db.RecentRuns(r.Context(), limit)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}
	s.writeJSON(w, runs)
}

// handleSummary handles /api/summary requests
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summaries, err := s.db.TargetSummaries(r.Context(), since)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if summaries == nil {
		summaries = []models.TargetSummary{}
	}
	s.writeJSON(w, summaries)
}

// handleHistory handles /api/history requests, optionally for one target
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	samples, err := s.db.TargetHistory(r.Context(), since)
	if err != nil {
		s.internalError(w, err)
		return
	}

	target := r.URL.Query().Get("target")
	filtered := make([]models.TargetSample, 0, len(samples))
	for _, sample := range samples {
		if target == "" || sample.Target == target {
			filtered = append(filtered, sample)
		}
	}
	s.writeJSON(w, filtered)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("History query failed", zap.Error(err))
	http.Error(w, "history query failed", http.StatusInternalServerError)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return v, nil
}

func sinceParam(r *http.Request) (time.Time, error) {
	hours, err := intParam(r, "hours", defaultHours)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().UTC().Add(-time.Duration(hours) * time.Hour), nil
}
