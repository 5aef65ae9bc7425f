package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"storefrontE2E/internal/config"
	"storefrontE2E/internal/database"
	"storefrontE2E/internal/logger"
	"storefrontE2E/internal/server"
)

type fakeStore struct {
	runs      []database.SuiteRun
	scenarios map[uint][]database.ScenarioResult
	steps     map[uint][]database.StepResult
	err       error

	gotLimit, gotOffset int
}

func (f *fakeStore) ListRuns(_ context.Context, limit, offset int) ([]database.SuiteRun, error) {
	f.gotLimit, f.gotOffset = limit, offset
	return f.runs, f.err
}

func (f *fakeStore) GetRun(_ context.Context, id uint) (*database.SuiteRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) GetScenarios(_ context.Context, runID uint) ([]database.ScenarioResult, error) {
	return f.scenarios[runID], nil
}

func (f *fakeStore) GetSteps(_ context.Context, scenarioID uint) ([]database.StepResult, error) {
	return f.steps[scenarioID], nil
}

func newStore() *fakeStore {
	return &fakeStore{
		runs: []database.SuiteRun{
			{ID: 2, Status: database.StatusFailed, Browser: "chromium", Driver: "playwright", Threads: 2, Total: 2, Passed: 1, Failed: 1},
			{ID: 1, Status: database.StatusPassed, Browser: "firefox", Driver: "playwright", Threads: 1, Total: 1, Passed: 1},
		},
		scenarios: map[uint][]database.ScenarioResult{
			2: {
				{ID: 10, RunID: 2, Name: "Add one item to cart", Status: database.StatusPassed},
				{ID: 11, RunID: 2, Name: "Logout from the application", Status: database.StatusFailed, Error: "element_not_found"},
			},
		},
		steps: map[uint][]database.StepResult{
			10: {
				{ID: 100, ScenarioID: 10, StepNo: 1, Text: "I am on the login page", Status: database.StatusPassed},
				{ID: 101, ScenarioID: 10, StepNo: 2, Text: "I add the first item to cart", Status: database.StatusPassed, Strategy: "scripted", Attempts: 2},
			},
		},
	}
}

func newServer(t *testing.T, store server.RunStore) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return server.New(&config.Cfg{}, logger.From(zaptest.NewLogger(t)), store).Router()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, newServer(t, newStore()), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListRuns(t *testing.T) {
	store := newStore()
	h := newServer(t, store)

	w := get(t, h, "/api/runs?limit=10&offset=5")

	require.Equal(t, http.StatusOK, w.Code)
	var runs []database.SuiteRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	assert.Len(t, runs, 2)
	assert.Equal(t, uint(2), runs[0].ID)
	assert.Equal(t, 10, store.gotLimit)
	assert.Equal(t, 5, store.gotOffset)

	get(t, h, "/api/runs")
	assert.Equal(t, 50, store.gotLimit)
	assert.Equal(t, 0, store.gotOffset)
}

func TestListRuns_BadQuery(t *testing.T) {
	h := newServer(t, newStore())

	for _, path := range []string{"/api/runs?limit=abc", "/api/runs?limit=0", "/api/runs?limit=1000", "/api/runs?offset=-1"} {
		assert.Equal(t, http.StatusBadRequest, get(t, h, path).Code, path)
	}
}

func TestListRuns_StoreError(t *testing.T) {
	store := newStore()
	store.err = errors.New("connection refused")

	w := get(t, newServer(t, store), "/api/runs")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestGetRun(t *testing.T) {
	w := get(t, newServer(t, newStore()), "/api/runs/2")

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Run       database.SuiteRun `json:"run"`
		Scenarios []struct {
			Name  string                `json:"name"`
			Error string                `json:"error"`
			Steps []database.StepResult `json:"steps"`
		} `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, database.StatusFailed, body.Run.Status)
	require.Len(t, body.Scenarios, 2)
	assert.Equal(t, "Add one item to cart", body.Scenarios[0].Name)
	require.Len(t, body.Scenarios[0].Steps, 2)
	assert.Equal(t, "scripted", body.Scenarios[0].Steps[1].Strategy)
	assert.Equal(t, "element_not_found", body.Scenarios[1].Error)
	assert.Empty(t, body.Scenarios[1].Steps)
}

func TestGetRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		code int
	}{
		{"bad id", "/api/runs/abc", nil, http.StatusBadRequest},
		{"not found", "/api/runs/42", nil, http.StatusNotFound},
		{"store error", "/api/runs/2", errors.New("timeout"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			store.err = tt.err
			assert.Equal(t, tt.code, get(t, newServer(t, store), tt.path).Code)
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := &config.Cfg{Server: config.Server{Host: "127.0.0.1", Port: "0"}}
	gin.SetMode(gin.TestMode)
	srv := server.New(cfg, logger.From(zaptest.NewLogger(t)), newStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
