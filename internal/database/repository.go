package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) CreateRun(ctx context.Context, run *SuiteRun) error {
	if run.Status == "" {
		run.Status = StatusRunning
	}
	return r.db.WithContext(ctx).Create(run).Error
}

// FinishRun фиксирует итог прогона и время завершения.
func (r *RunRepository) FinishRun(ctx context.Context, id uint, status string, passed, failed int) error {
	return r.db.WithContext(ctx).Model(&SuiteRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      status,
			"passed":      passed,
			"failed":      failed,
			"total":       passed + failed,
			"finished_at": time.Now(),
		}).Error
}

func (r *RunRepository) CreateScenario(ctx context.Context, s *ScenarioResult) error {
	if s.Status == "" {
		s.Status = StatusRunning
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *RunRepository) FinishScenario(ctx context.Context, id uint, status, errText string) error {
	return r.db.WithContext(ctx).Model(&ScenarioResult{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      status,
			"error":       errText,
			"finished_at": time.Now(),
		}).Error
}

func (r *RunRepository) CreateStep(ctx context.Context, s *StepResult) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *RunRepository) ListRuns(ctx context.Context, limit, offset int) ([]SuiteRun, error) {
	var runs []SuiteRun
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Offset(offset).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *RunRepository) GetRun(ctx context.Context, id uint) (*SuiteRun, error) {
	var run SuiteRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *RunRepository) GetScenarios(ctx context.Context, runID uint) ([]ScenarioResult, error) {
	var out []ScenarioResult
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RunRepository) GetSteps(ctx context.Context, scenarioID uint) ([]StepResult, error) {
	var out []StepResult
	if err := r.db.WithContext(ctx).Where("scenario_id = ?", scenarioID).Order("step_no").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
