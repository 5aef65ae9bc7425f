package commands

import (
	"context"
	"fmt"
	"strconv"

	"storefrontE2E/internal/database"
)

// History - чтение истории прогонов, которое нужно командам просмотра.
type History interface {
	ListRuns(ctx context.Context, limit, offset int) ([]database.SuiteRun, error)
	GetRun(ctx context.Context, id uint) (*database.SuiteRun, error)
	GetScenarios(ctx context.Context, runID uint) ([]database.ScenarioResult, error)
	GetSteps(ctx context.Context, scenarioID uint) ([]database.StepResult, error)
}

func parseID(idStr string) (uint, error) {
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("неверный ID прогона %q", idStr)
	}
	return uint(id), nil
}
