package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"storefrontE2E/internal/cli/commands"
	"storefrontE2E/internal/database"
	"storefrontE2E/internal/scenario"
)

type fakeHistory struct {
	runs      []database.SuiteRun
	scenarios []database.ScenarioResult
	steps     map[uint][]database.StepResult
	err       error
}

func (f *fakeHistory) ListRuns(context.Context, int, int) ([]database.SuiteRun, error) {
	return f.runs, f.err
}

func (f *fakeHistory) GetRun(_ context.Context, id uint) (*database.SuiteRun, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeHistory) GetScenarios(context.Context, uint) ([]database.ScenarioResult, error) {
	return f.scenarios, f.err
}

func (f *fakeHistory) GetSteps(_ context.Context, id uint) ([]database.StepResult, error) {
	return f.steps[id], nil
}

func history() *fakeHistory {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(42 * time.Second)
	return &fakeHistory{
		runs: []database.SuiteRun{{
			ID: 7, RunKey: "0f8c2a8e-6a55-4d0c-9b6e-3c2f4a1d9e77", Status: database.StatusFailed, BaseURL: "https://shop.test/",
			Browser: "chromium", Driver: "chromedp", Threads: 2,
			Total: 2, Passed: 1, Failed: 1, StartedAt: started, FinishedAt: &finished,
		}},
		scenarios: []database.ScenarioResult{
			{ID: 1, RunID: 7, Name: "Add one item to cart", Status: database.StatusPassed},
			{ID: 2, RunID: 7, Name: "Logout from the application", Status: database.StatusFailed, Error: "шаг 4: element_not_found"},
		},
		steps: map[uint][]database.StepResult{
			1: {
				{StepNo: 1, Text: "I am on the login page", Status: database.StatusPassed},
				{StepNo: 2, Text: "I add the first item to cart", Status: database.StatusPassed, Strategy: "pointer", Attempts: 3},
			},
			2: {
				{StepNo: 1, Text: "I am on the login page", Status: database.StatusPassed},
				{StepNo: 2, Text: "I logout from the application", Status: database.StatusFailed, FailureKind: "element_not_found", Error: "css=#logout_sidebar_link"},
				{StepNo: 3, Text: "I should be logged out successfully", Status: database.StatusSkipped},
			},
		},
	}
}

func TestShow(t *testing.T) {
	var out bytes.Buffer
	h := commands.NewShowHandler(history(), zaptest.NewLogger(t), &out)

	require.NoError(t, h.Show(context.Background(), "7"))

	s := out.String()
	assert.Contains(t, s, "Прогон #7")
	assert.Contains(t, s, "0f8c2a8e-6a55-4d0c-9b6e-3c2f4a1d9e77")
	assert.Contains(t, s, "chromium (chromedp)")
	assert.Contains(t, s, "пройдено 1 из 2")
	assert.Contains(t, s, "42s")
	assert.Contains(t, s, "шаг 4: element_not_found")
	// Шаги печатаются только у упавшего сценария.
	assert.Contains(t, s, "I logout from the application")
	assert.NotContains(t, s, "I add the first item to cart")
}

func TestShow_Errors(t *testing.T) {
	var out bytes.Buffer
	h := commands.NewShowHandler(history(), zaptest.NewLogger(t), &out)

	assert.Error(t, h.Show(context.Background(), "abc"))
	assert.Error(t, h.Show(context.Background(), "0"))
	assert.ErrorIs(t, h.Show(context.Background(), "99"), gorm.ErrRecordNotFound)
	assert.Contains(t, out.String(), "Прогон не найден")
}

func TestLogs(t *testing.T) {
	var out bytes.Buffer
	h := commands.NewLogsHandler(history(), zaptest.NewLogger(t), &out)

	require.NoError(t, h.Show(context.Background(), "7"))

	s := out.String()
	assert.Contains(t, s, "Журнал прогона #7")
	assert.Contains(t, s, "pointer x3")
	assert.Contains(t, s, "[element_not_found]")
	assert.Contains(t, s, "[пропущен]")
}

func TestRuns(t *testing.T) {
	var out bytes.Buffer
	h := commands.NewRunsHandler(history(), zaptest.NewLogger(t), &out)

	require.NoError(t, h.List(context.Background(), 10))
	assert.Contains(t, out.String(), "#7")
	assert.Contains(t, out.String(), "1/2")
	assert.Contains(t, out.String(), "chromium/chromedp")
}

func TestRuns_Empty(t *testing.T) {
	var out bytes.Buffer
	h := commands.NewRunsHandler(&fakeHistory{}, zaptest.NewLogger(t), &out)

	require.NoError(t, h.List(context.Background(), 10))
	assert.Contains(t, out.String(), "Прогонов пока нет")
}

func TestRuns_StoreError(t *testing.T) {
	var out bytes.Buffer
	boom := errors.New("connection refused")
	h := commands.NewRunsHandler(&fakeHistory{err: boom}, zaptest.NewLogger(t), &out)

	assert.ErrorIs(t, h.List(context.Background(), 10), boom)
}

type fakeRunner struct {
	rep *scenario.Report
	err error
}

func (f fakeRunner) Run(context.Context, []scenario.Scenario) (*scenario.Report, error) {
	return f.rep, f.err
}

func TestRunHandler(t *testing.T) {
	failed := scenario.ScenarioReport{
		Name:   "Add one item to cart",
		Tags:   []string{"cart"},
		Status: database.StatusFailed,
		Err:    "шаг 4",
		Steps: []scenario.StepReport{
			{No: 1, Text: "I am on the login page", Status: database.StatusPassed},
			{No: 2, Text: "I add the first item to cart", Status: database.StatusFailed, Strategy: "native", Attempts: 1, FailureKind: "convergence_timeout", Err: "timeout"},
		},
	}
	tests := []struct {
		name    string
		runner  fakeRunner
		wantErr error
		want    []string
	}{
		{
			name:   "all passed",
			runner: fakeRunner{rep: &scenario.Report{RunID: 3, Passed: 1, Scenarios: []scenario.ScenarioReport{{Name: "Login page elements", Status: database.StatusPassed}}}},
			want:   []string{"Login page elements", "1 пройдено", "show 3"},
		},
		{
			name:    "failure",
			runner:  fakeRunner{rep: &scenario.Report{Failed: 1, Scenarios: []scenario.ScenarioReport{failed}}},
			wantErr: commands.ErrSuiteFailed,
			want:    []string{"@cart", "native x1", "[convergence_timeout]", "1 упало"},
		},
		{
			name:    "cancelled",
			runner:  fakeRunner{rep: &scenario.Report{Skipped: 2}, err: context.Canceled},
			wantErr: context.Canceled,
			want:    []string{"2 пропущено"},
		},
		{
			name:    "no report",
			runner:  fakeRunner{err: errors.New("база недоступна")},
			wantErr: nil,
			want:    []string{"база недоступна"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := commands.NewRunHandler(tt.runner, &out).Run(context.Background(), nil)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.runner.err != nil {
				assert.ErrorIs(t, err, tt.runner.err)
			} else {
				assert.NoError(t, err)
			}
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestListScenarios(t *testing.T) {
	var out bytes.Buffer
	commands.ListScenarios(&out, scenario.Builtin()[:1], true)

	assert.Contains(t, out.String(), "Successful login with valid credentials")
	assert.Contains(t, out.String(), "@smoke @login")
	assert.Contains(t, out.String(), "I click the login button")
}
