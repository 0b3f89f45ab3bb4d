package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PiusTetteh/301-GroupProject/internal/config"
	"github.com/PiusTetteh/301-GroupProject/internal/events"
	"github.com/PiusTetteh/301-GroupProject/internal/models"
	"github.com/PiusTetteh/301-GroupProject/internal/service"
	"github.com/PiusTetteh/301-GroupProject/internal/state"
)

func newTestHandler(script string) (*SystemHandler, *service.Supervisor, *state.Store) {
	cfg := &config.MonitorConfig{
		Command:     "sh",
		Args:        []string{"-c", script},
		StopSignal:  "SIGTERM",
		StopTimeout: 5,
	}
	store := state.NewStore()
	supervisor := service.NewSupervisor(cfg, store, nil)
	return NewSystemHandler(supervisor, store), supervisor, store
}

func waitForExit(t *testing.T, store *state.Store) {
	t.Helper()
	require.Eventually(t, func() bool {
		return !store.Running()
	}, 5*time.Second, 10*time.Millisecond)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func TestGetStatus_EmptyStore(t *testing.T) {
	h, _, _ := newTestHandler("true")

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status models.Status
	decodeBody(t, rec, &status)
	assert.False(t, status.Running)
	assert.Nil(t, status.StartTime)
	assert.Zero(t, status.Cores)
	assert.Zero(t, status.Processes)
}

func TestStartSystem_AppliesOutputToStore(t *testing.T) {
	h, _, store := newTestHandler(`printf '[SYSTEM] Process 0 assigned to Core 1 (load=42)\n'`)

	rec := httptest.NewRecorder()
	h.StartSystem(rec, httptest.NewRequest(http.MethodPost, "/api/start", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatusResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "started", resp.Status)

	waitForExit(t, store)
	cores := store.Cores()
	require.Contains(t, cores, 1)
	assert.Equal(t, 42, cores[1].Load)
	assert.Equal(t, []int{0}, cores[1].Processes)
}

func TestStartSystem_AlreadyRunning(t *testing.T) {
	h, supervisor, store := newTestHandler("sleep 30")

	rec := httptest.NewRecorder()
	h.StartSystem(rec, httptest.NewRequest(http.MethodPost, "/api/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.StartSystem(rec, httptest.NewRequest(http.MethodPost, "/api/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "already_running", resp.Status)

	require.NoError(t, supervisor.Stop())
	waitForExit(t, store)
}

func TestStartSystem_SpawnFailure(t *testing.T) {
	cfg := &config.MonitorConfig{Command: "/nonexistent/kernel-binary", StopTimeout: 5}
	store := state.NewStore()
	h := NewSystemHandler(service.NewSupervisor(cfg, store, nil), store)

	rec := httptest.NewRecorder()
	h.StartSystem(rec, httptest.NewRequest(http.MethodPost, "/api/start", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp StatusResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Message)
	assert.False(t, store.Running())
}

func TestStopSystem_NotRunning(t *testing.T) {
	h, _, _ := newTestHandler("true")

	rec := httptest.NewRecorder()
	h.StopSystem(rec, httptest.NewRequest(http.MethodPost, "/api/stop", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatusResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "not_running", resp.Status)
}

func TestStopSystem_StopsRunningProcess(t *testing.T) {
	h, _, store := newTestHandler("sleep 30")

	rec := httptest.NewRecorder()
	h.StartSystem(rec, httptest.NewRequest(http.MethodPost, "/api/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.StopSystem(rec, httptest.NewRequest(http.MethodPost, "/api/stop", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatusResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "stopped", resp.Status)
	waitForExit(t, store)
}

func TestGetStats_ReflectsAppliedEvents(t *testing.T) {
	h, _, store := newTestHandler("true")
	store.Apply(events.ProcessCreated{Pid: 3, Core: 0, Load: 7})
	store.Apply(events.CoreStatsHeader{Core: 2})

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.Stats
	decodeBody(t, rec, &stats)
	require.Contains(t, stats.Cores, 0)
	assert.Equal(t, 7, stats.Cores[0].Load)
	assert.Contains(t, stats.Stats, 2)
	assert.Equal(t, 1, stats.TotalProcesses)
	assert.Zero(t, stats.TotalMessages)
}

func TestGetCores(t *testing.T) {
	h, _, store := newTestHandler("true")
	store.Apply(events.ProcessCreated{Pid: 1, Core: 4, Load: 2})

	rec := httptest.NewRecorder()
	h.GetCores(rec, httptest.NewRequest(http.MethodGet, "/api/cores", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var cores map[int]models.CoreRecord
	decodeBody(t, rec, &cores)
	require.Contains(t, cores, 4)
	assert.Equal(t, []int{1}, cores[4].Processes)
}

func TestGetLogs_LimitAndLevel(t *testing.T) {
	h, supervisor, store := newTestHandler(`printf 'alpha\nbeta\n'; printf 'boom\n' 1>&2`)
	require.NoError(t, supervisor.Start())
	waitForExit(t, store)

	rec := httptest.NewRecorder()
	h.GetLogs(rec, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
	var all []models.LogEntry
	decodeBody(t, rec, &all)
	assert.Len(t, all, 3)

	rec = httptest.NewRecorder()
	h.GetLogs(rec, httptest.NewRequest(http.MethodGet, "/api/logs?limit=1", nil))
	var limited []models.LogEntry
	decodeBody(t, rec, &limited)
	assert.Len(t, limited, 1)

	rec = httptest.NewRecorder()
	h.GetLogs(rec, httptest.NewRequest(http.MethodGet, "/api/logs?level=error", nil))
	var errs []models.LogEntry
	decodeBody(t, rec, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "boom", errs[0].Message)

	// A malformed limit falls back to the default.
	rec = httptest.NewRecorder()
	h.GetLogs(rec, httptest.NewRequest(http.MethodGet, "/api/logs?limit=nope", nil))
	var fallback []models.LogEntry
	decodeBody(t, rec, &fallback)
	assert.Len(t, fallback, 3)
}
