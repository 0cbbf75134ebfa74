// Package server exposes the design optimizer as a small job-based HTTP API:
// submit a converter specification, poll its status, fetch the ranked result
// set, or cancel a run in flight.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/copyleftdev/VOLTA/internal/config"
	"github.com/copyleftdev/VOLTA/internal/design"
	"github.com/copyleftdev/VOLTA/internal/design/optimizer"
	"github.com/copyleftdev/VOLTA/internal/logging"
)

// Logger is the logging surface the server needs; satisfied by
// *logging.Logger.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Run statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

var (
	runsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "volta_optimization_runs_started_total",
		Help: "Number of optimization runs accepted.",
	})
	runsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "volta_optimization_runs_finished_total",
		Help: "Number of optimization runs reaching a terminal state.",
	}, []string{"status"})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "volta_optimization_run_duration_seconds",
		Help:    "Wall time of completed optimization runs.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})
)

// RunState tracks one optimization job. Access is guarded by the server's
// mutex.
type RunState struct {
	ID          string
	Status      string
	Spec        design.Specification
	StartTime   time.Time
	EndTime     *time.Time
	LastUpdated time.Time

	Result *design.ParetoResult
	Err    string

	CancelFunc context.CancelFunc
}

// Server manages optimization runs and their HTTP surface.
type Server struct {
	cfg       *config.Config
	logger    Logger
	optimizer *optimizer.Optimizer

	runs   map[string]*RunState
	runsMu sync.RWMutex
}

// NewServer creates a server around a ready optimizer.
func NewServer(cfg *config.Config, logger Logger, opt *optimizer.Optimizer) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		optimizer: opt,
		runs:      make(map[string]*RunState),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimizations", s.handleSubmit)
		r.Get("/optimizations/{id}", s.handleStatus)
		r.Get("/optimizations/{id}/result", s.handleResult)
		r.Delete("/optimizations/{id}", s.handleCancel)
	})
}

// handleSubmit accepts a design specification, fills configured defaults,
// validates it and starts the run in the background.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var spec design.Specification
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	s.applyDefaults(&spec)
	if err := spec.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := fmt.Sprintf("run_%d", time.Now().UnixNano())
	ctx, cancel := context.WithCancel(context.Background())
	state := &RunState{
		ID:          id,
		Status:      StatusPending,
		Spec:        spec,
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
		CancelFunc:  cancel,
	}

	s.runsMu.Lock()
	s.runs[id] = state
	s.runsMu.Unlock()

	runsStarted.Inc()
	go s.runOptimization(ctx, state)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"optimization_id": id,
		"status":          StatusPending,
	})
}

// applyDefaults fills unset request fields from the service configuration.
func (s *Server) applyDefaults(spec *design.Specification) {
	opt := s.cfg.Optimization
	if spec.FrequencyMin == 0 {
		spec.FrequencyMin = opt.FrequencyMin
	}
	if spec.FrequencyMax == 0 {
		spec.FrequencyMax = opt.FrequencyMax
	}
	if spec.FrequencySamples == 0 {
		spec.FrequencySamples = opt.FrequencySamples
	}
	if spec.MaxEvaluations == 0 {
		spec.MaxEvaluations = opt.MaxEvaluations
	}
	if spec.NPhases == 0 {
		spec.NPhases = 1
	}
	if spec.Objective == "" {
		spec.Objective = design.Balanced
	}
}

// runOptimization executes one run and records its terminal state.
func (s *Server) runOptimization(ctx context.Context, state *RunState) {
	s.setStatus(state, StatusRunning)

	result, err := s.optimizer.Optimize(ctx, state.Spec)

	s.runsMu.Lock()
	defer s.runsMu.Unlock()

	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	switch {
	case state.Status == StatusCancelled:
		// Terminal state already set by the cancel handler.
	case err != nil:
		state.Status = StatusFailed
		state.Err = err.Error()
		s.logger.Error("Optimization run failed", map[string]interface{}{
			"optimization_id": state.ID,
			"error":           err.Error(),
		})
	default:
		state.Status = StatusCompleted
		state.Result = result
		s.logger.Info("Optimization run completed", map[string]interface{}{
			"optimization_id": state.ID,
			"feasible":        len(result.AllCandidates),
			"frontier":        len(result.Frontier),
		})
	}

	runsFinished.WithLabelValues(state.Status).Inc()
	runDuration.Observe(now.Sub(state.StartTime).Seconds())
}

func (s *Server) setStatus(state *RunState, status string) {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	if state.Status == StatusCancelled {
		return
	}
	state.Status = status
	state.LastUpdated = time.Now()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "optimization not found")
		return
	}

	s.runsMu.RLock()
	defer s.runsMu.RUnlock()

	resp := map[string]interface{}{
		"optimization_id": state.ID,
		"status":          state.Status,
		"start_time":      state.StartTime.Format(time.RFC3339),
		"last_update":     state.LastUpdated.Format(time.RFC3339),
	}
	if state.EndTime != nil {
		resp["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.Err != "" {
		resp["error"] = state.Err
	}
	if state.Result != nil {
		resp["feasible_candidates"] = len(state.Result.AllCandidates)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleResult returns the flattened candidate summaries of a completed run.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	state, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "optimization not found")
		return
	}

	s.runsMu.RLock()
	defer s.runsMu.RUnlock()

	switch state.Status {
	case StatusCompleted:
	case StatusFailed:
		s.respondError(w, http.StatusConflict, fmt.Sprintf("optimization failed: %s", state.Err))
		return
	default:
		s.respondError(w, http.StatusConflict, fmt.Sprintf("optimization is %s", state.Status))
		return
	}

	result := state.Result
	onFrontier := make(map[*design.Candidate]bool, len(result.Frontier))
	for _, c := range result.Frontier {
		onFrontier[c] = true
	}

	summaries := make([]design.Summary, 0, len(result.AllCandidates))
	for _, c := range result.AllCandidates {
		summaries = append(summaries, c.Summarize(onFrontier[c]))
	}

	resp := map[string]interface{}{
		"optimization_id": state.ID,
		"objective":       string(state.Spec.Objective),
		"candidates":      summaries,
		"best_efficiency": result.BestEfficiency.Summarize(onFrontier[result.BestEfficiency]),
		"best_cost":       result.BestCost.Summarize(onFrontier[result.BestCost]),
		"best_balanced":   result.BestBalanced.Summarize(onFrontier[result.BestBalanced]),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	state, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "optimization not found")
		return
	}

	s.runsMu.Lock()
	switch state.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		status := state.Status
		s.runsMu.Unlock()
		s.respondError(w, http.StatusConflict, fmt.Sprintf("cannot cancel optimization with status %s", status))
		return
	}
	state.Status = StatusCancelled
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now
	cancel := state.CancelFunc
	s.runsMu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.logger.Info("Optimization run cancelled", map[string]interface{}{
		"optimization_id": state.ID,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"optimization_id": state.ID,
		"status":          StatusCancelled,
	})
}

func (s *Server) lookup(id string) (*RunState, bool) {
	if id == "" {
		return nil, false
	}
	s.runsMu.RLock()
	defer s.runsMu.RUnlock()
	state, ok := s.runs[id]
	return state, ok
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Warn("Request rejected", map[string]interface{}{
		"status":  status,
		"message": message,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Close cancels all in-flight runs.
func (s *Server) Close() error {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	for _, run := range s.runs {
		if run.CancelFunc != nil {
			run.CancelFunc()
		}
	}
	return nil
}
