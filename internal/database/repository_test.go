package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRun - GORM без соединения: SQL строится, но не выполняется.
func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost port=5432 user=e2e dbname=e2e sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestRunRepository_DefaultsStatus(t *testing.T) {
	repo := NewRunRepository(dryRun(t))
	ctx := context.Background()

	run := &SuiteRun{RunKey: "7b0e3c56-3f0a-4a43-9a57-0a0f3c1f5a10", BaseURL: "https://shop.test/", Browser: "chromium", Driver: "playwright", Threads: 2}
	require.NoError(t, repo.CreateRun(ctx, run))
	assert.Equal(t, StatusRunning, run.Status)

	sc := &ScenarioResult{RunID: 1, Name: "Успешный вход"}
	require.NoError(t, repo.CreateScenario(ctx, sc))
	assert.Equal(t, StatusRunning, sc.Status)
}

func TestRunRepository_QueryShape(t *testing.T) {
	db := dryRun(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var steps []StepResult
		return tx.Where("scenario_id = ?", 7).Order("step_no").Find(&steps)
	})
	assert.Contains(t, sql, `FROM "step_results"`)
	assert.Contains(t, sql, "scenario_id = 7")
	assert.Contains(t, sql, "ORDER BY step_no")

	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&SuiteRun{}).Where("id = ?", 3).Updates(map[string]any{"status": StatusPassed})
	})
	assert.Contains(t, sql, `UPDATE "suite_runs"`)
}
