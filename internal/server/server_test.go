package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/VOLTA/internal/config"
	"github.com/copyleftdev/VOLTA/internal/design"
	"github.com/copyleftdev/VOLTA/internal/design/catalog"
	"github.com/copyleftdev/VOLTA/internal/design/magnetics"
	"github.com/copyleftdev/VOLTA/internal/design/optimizer"
	"github.com/copyleftdev/VOLTA/internal/logging"
)

// testConfig creates a test configuration with default values
func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{
		Environment: "test",
	}

	cfg.HTTP.Port = 8080
	cfg.HTTP.ReadTimeout = 30 * time.Second
	cfg.HTTP.WriteTimeout = 30 * time.Second
	cfg.HTTP.IdleTimeout = 120 * time.Second
	cfg.HTTP.ShutdownTimeout = 30 * time.Second

	cfg.Logging.Level = "error"
	cfg.Logging.Format = "console"
	cfg.Logging.Output = "stdout"

	cfg.Optimization.WorkerCount = 2
	cfg.Optimization.FrequencyMin = 100e3
	cfg.Optimization.FrequencyMax = 120e3
	cfg.Optimization.FrequencySamples = 2
	cfg.Optimization.MaxEvaluations = 40

	return cfg
}

// testLogger creates a quiet test logger
func testLogger(t *testing.T) *logging.Logger {
	return logging.New(logging.ErrorLevel, io.Discard)
}

func testServer(t *testing.T) (*Server, chi.Router) {
	t.Helper()
	cfg := testConfig(t)
	logger := testLogger(t)

	designer := magnetics.NewDesigner(catalog.BuiltinCatalog(), magnetics.DefaultParams())
	opt := optimizer.New(catalog.BuiltinLibrary(), designer, logger, cfg.Optimization.WorkerCount)

	srv := NewServer(cfg, logger, opt)
	t.Cleanup(func() { srv.Close() })

	r := chi.NewRouter()
	srv.RegisterRoutes(r)
	return srv, r
}

func submitSpec(t *testing.T, r chi.Router, spec design.Specification) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(spec)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimizations", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func testSpec() design.Specification {
	return design.Specification{
		PowerMin:         330,
		PowerRated:       3300,
		PowerMax:         3300,
		VinMin:           390,
		VinNom:           400,
		VinMax:           410,
		Vout:             46,
		NPhases:          3,
		EfficiencyTarget: 0.5,
		Objective:        design.Balanced,
		FrequencyMin:     100e3,
		FrequencyMax:     120e3,
		FrequencySamples: 2,
		MaxEvaluations:   40,
		ZVS:              true,
	}
}

// waitForStatus polls a run until it reaches a terminal state.
func waitForStatus(t *testing.T, r chi.Router, id string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/optimizations/"+id, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]interface{}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		switch resp["status"] {
		case StatusCompleted, StatusFailed, StatusCancelled:
			return resp
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("optimization did not reach a terminal state in time")
	return nil
}

func TestNewServer(t *testing.T) {
	srv, _ := testServer(t)
	assert.NotNil(t, srv)
}

func TestSubmitInvalidBody(t *testing.T) {
	_, r := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimizations", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Contains(t, resp["error"], "invalid request body")
}

func TestSubmitInvalidSpecification(t *testing.T) {
	_, r := testServer(t)

	spec := testSpec()
	spec.Vout = -5
	rr := submitSpec(t, r, spec)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Contains(t, resp["error"], "vout")
}

func TestSubmitAppliesConfigDefaults(t *testing.T) {
	srv, r := testServer(t)

	// Leave the frequency axis and budget unset; the server fills them from
	// its configuration before validation.
	spec := testSpec()
	spec.FrequencyMin = 0
	spec.FrequencyMax = 0
	spec.FrequencySamples = 0
	spec.MaxEvaluations = 0

	rr := submitSpec(t, r, spec)
	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	id := resp["optimization_id"]
	require.NotEmpty(t, id)

	state, ok := srv.lookup(id)
	require.True(t, ok)
	assert.Equal(t, 100e3, state.Spec.FrequencyMin)
	assert.Equal(t, 120e3, state.Spec.FrequencyMax)
	assert.Equal(t, 2, state.Spec.FrequencySamples)
	assert.Equal(t, 40, state.Spec.MaxEvaluations)

	waitForStatus(t, r, id)
}

func TestOptimizationLifecycle(t *testing.T) {
	_, r := testServer(t)

	rr := submitSpec(t, r, testSpec())
	require.Equal(t, http.StatusAccepted, rr.Code)

	var accepted map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&accepted))
	id := accepted["optimization_id"]
	require.NotEmpty(t, id)
	assert.Equal(t, StatusPending, accepted["status"])

	status := waitForStatus(t, r, id)
	require.Equal(t, StatusCompleted, status["status"])
	assert.NotEmpty(t, status["end_time"])
	assert.Greater(t, status["feasible_candidates"], 0.0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/optimizations/"+id+"/result", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		OptimizationID string           `json:"optimization_id"`
		Objective      string           `json:"objective"`
		Candidates     []design.Summary `json:"candidates"`
		BestEfficiency design.Summary   `json:"best_efficiency"`
		BestCost       design.Summary   `json:"best_cost"`
		BestBalanced   design.Summary   `json:"best_balanced"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))

	assert.Equal(t, id, result.OptimizationID)
	assert.Equal(t, string(design.Balanced), result.Objective)
	require.NotEmpty(t, result.Candidates)

	frontier := 0
	for _, c := range result.Candidates {
		assert.NotEmpty(t, c.SwitchPart)
		assert.NotEmpty(t, c.Magnetics)
		if c.OnFrontier {
			frontier++
		}
	}
	assert.Greater(t, frontier, 0, "at least one candidate must be on the frontier")
	assert.Greater(t, result.BestEfficiency.EfficiencyPct, 50.0)
}

func TestResultBeforeCompletion(t *testing.T) {
	srv, r := testServer(t)

	// Inject a pending run directly so the result request races nothing.
	state := &RunState{ID: "run_pending", Status: StatusPending, StartTime: time.Now(), LastUpdated: time.Now()}
	srv.runsMu.Lock()
	srv.runs[state.ID] = state
	srv.runsMu.Unlock()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/optimizations/run_pending/result", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUnknownOptimization(t *testing.T) {
	_, r := testServer(t)

	for _, path := range []string{
		"/api/v1/optimizations/nope",
		"/api/v1/optimizations/nope/result",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
	}
}

func TestCancelRun(t *testing.T) {
	srv, r := testServer(t)

	cancelled := false
	state := &RunState{
		ID:          "run_cancel",
		Status:      StatusRunning,
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
		CancelFunc:  func() { cancelled = true },
	}
	srv.runsMu.Lock()
	srv.runs[state.ID] = state
	srv.runsMu.Unlock()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/optimizations/run_cancel", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, cancelled)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, StatusCancelled, resp["status"])

	// A second cancel is rejected.
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/optimizations/run_cancel", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCancelCompletedRun(t *testing.T) {
	srv, r := testServer(t)

	state := &RunState{ID: "run_done", Status: StatusCompleted, StartTime: time.Now(), LastUpdated: time.Now()}
	srv.runsMu.Lock()
	srv.runs[state.ID] = state
	srv.runsMu.Unlock()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/optimizations/run_done", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestEmptyDesignSpaceFailsRun(t *testing.T) {
	_, r := testServer(t)

	spec := testSpec()
	spec.EfficiencyTarget = 0.9999
	rr := submitSpec(t, r, spec)
	require.Equal(t, http.StatusAccepted, rr.Code)

	var accepted map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&accepted))

	status := waitForStatus(t, r, accepted["optimization_id"])
	assert.Equal(t, StatusFailed, status["status"])
	assert.Contains(t, status["error"], "no feasible")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/optimizations/"+accepted["optimization_id"]+"/result", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestClose(t *testing.T) {
	srv, _ := testServer(t)
	assert.NoError(t, srv.Close())
}
