package scenario

import (
	"context"
	"strings"

	"storefrontE2E/internal/database"
)

// RunInfo - параметры прогона для истории.
type RunInfo struct {
	// Key - UUID прогона; есть и у прогонов без БД, чтобы связать записи лога.
	Key     string
	BaseURL string
	Browser string
	Driver  string
	Threads int
}

// Recorder сохраняет ход прогона. Вызывается из нескольких горутин.
type Recorder interface {
	StartRun(ctx context.Context, info RunInfo) (uint, error)
	StartScenario(ctx context.Context, runID uint, sc Scenario) (uint, error)
	RecordStep(ctx context.Context, scenarioID uint, st StepReport) error
	FinishScenario(ctx context.Context, scenarioID uint, sr ScenarioReport) error
	FinishRun(ctx context.Context, runID uint, rep *Report) error
}

// NopRecorder - прогон без истории.
type NopRecorder struct{}

func (NopRecorder) StartRun(context.Context, RunInfo) (uint, error) { return 0, nil }
func (NopRecorder) StartScenario(context.Context, uint, Scenario) (uint, error) { return 0, nil }
func (NopRecorder) RecordStep(context.Context, uint, StepReport) error { return nil }
func (NopRecorder) FinishScenario(context.Context, uint, ScenarioReport) error { return nil }
func (NopRecorder) FinishRun(context.Context, uint, *Report) error { return nil }

// DBRecorder пишет историю в PostgreSQL.
type DBRecorder struct {
	repo *database.RunRepository
}

func NewDBRecorder(repo *database.RunRepository) *DBRecorder {
	return &DBRecorder{repo: repo}
}

func (r *DBRecorder) StartRun(ctx context.Context, info RunInfo) (uint, error) {
	run := &database.SuiteRun{
		RunKey:  info.Key,
		BaseURL: info.BaseURL,
		Browser: info.Browser,
		Driver:  info.Driver,
		Threads: info.Threads,
	}
	if err := r.repo.CreateRun(ctx, run); err != nil {
		return 0, err
	}
	return run.ID, nil
}

func (r *DBRecorder) StartScenario(ctx context.Context, runID uint, sc Scenario) (uint, error) {
	row := &database.ScenarioResult{
		RunID: runID,
		Name:  sc.Name,
		Tags:  strings.Join(sc.Tags, ","),
	}
	if err := r.repo.CreateScenario(ctx, row); err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *DBRecorder) RecordStep(ctx context.Context, scenarioID uint, st StepReport) error {
	return r.repo.CreateStep(ctx, &database.StepResult{
		ScenarioID:  scenarioID,
		StepNo:      st.No,
		Text:        st.Text,
		Status:      st.Status,
		Strategy:    st.Strategy,
		Attempts:    st.Attempts,
		FailureKind: st.FailureKind,
		Error:       st.Err,
		DurationMs:  st.Duration.Milliseconds(),
	})
}

func (r *DBRecorder) FinishScenario(ctx context.Context, scenarioID uint, sr ScenarioReport) error {
	return r.repo.FinishScenario(ctx, scenarioID, sr.Status, sr.Err)
}

func (r *DBRecorder) FinishRun(ctx context.Context, runID uint, rep *Report) error {
	return r.repo.FinishRun(ctx, runID, rep.Status(), rep.Passed, rep.Failed+rep.Skipped)
}
