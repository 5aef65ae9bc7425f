// Package database хранит историю прогонов в PostgreSQL через GORM.
package database

import "time"

// Статусы прогона, сценария и шага.
const (
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// SuiteRun - один запуск набора сценариев.
type SuiteRun struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	RunKey     string     `gorm:"type:uuid;uniqueIndex;not null" json:"run_key"`
	Status     string     `gorm:"type:varchar(16);not null;default:'running'" json:"status"`
	BaseURL    string     `gorm:"type:text;not null" json:"base_url"`
	Browser    string     `gorm:"type:varchar(32);not null" json:"browser"`
	Driver     string     `gorm:"type:varchar(32);not null" json:"driver"`
	Threads    int        `gorm:"not null" json:"threads"`
	Total      int        `gorm:"not null;default:0" json:"total"`
	Passed     int        `gorm:"not null;default:0" json:"passed"`
	Failed     int        `gorm:"not null;default:0" json:"failed"`
	StartedAt  time.Time  `gorm:"autoCreateTime" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// ScenarioResult - сценарий внутри прогона.
type ScenarioResult struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	RunID      uint       `gorm:"index;not null" json:"run_id"`
	Name       string     `gorm:"type:text;not null" json:"name"`
	Tags       string     `gorm:"type:text" json:"tags"` // через запятую
	Status     string     `gorm:"type:varchar(16);not null;default:'running'" json:"status"`
	Error      string     `gorm:"type:text" json:"error,omitempty"` // уже очищено от секретов
	StartedAt  time.Time  `gorm:"autoCreateTime" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// StepResult - шаг сценария. Strategy и Attempts заполняются для шагов с кликом.
type StepResult struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ScenarioID  uint      `gorm:"index;not null" json:"scenario_id"`
	StepNo      int       `gorm:"not null" json:"step_no"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Status      string    `gorm:"type:varchar(16);not null" json:"status"`
	Strategy    string    `gorm:"type:varchar(16)" json:"strategy,omitempty"`
	Attempts    int       `gorm:"not null;default:0" json:"attempts"`
	FailureKind string    `gorm:"type:varchar(32)" json:"failure_kind,omitempty"`
	Error       string    `gorm:"type:text" json:"error,omitempty"`
	DurationMs  int64     `gorm:"not null;default:0" json:"duration_ms"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
