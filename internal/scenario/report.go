package scenario

import (
	"time"

	"storefrontE2E/internal/database"
)

type StepReport struct {
	No          int
	Text        string
	Status      string
	Strategy    string
	Attempts    int
	FailureKind string
	Err         string
	Duration    time.Duration
}

type ScenarioReport struct {
	Name     string
	Tags     []string
	Status   string
	Err      string
	Steps    []StepReport
	Duration time.Duration
}

func (s ScenarioReport) Passed() bool { return s.Status == database.StatusPassed }

// Report - итог прогона. Scenarios в порядке запуска, а не завершения.
type Report struct {
	RunID     uint
	Key       string
	Scenarios []ScenarioReport
	Passed    int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

func (r *Report) OK() bool { return r.Failed == 0 && r.Skipped == 0 }

func (r *Report) Status() string {
	if r.OK() {
		return database.StatusPassed
	}
	return database.StatusFailed
}

func (r *Report) tally() {
	r.Passed, r.Failed, r.Skipped = 0, 0, 0
	for _, s := range r.Scenarios {
		switch s.Status {
		case database.StatusPassed:
			r.Passed++
		case database.StatusFailed:
			r.Failed++
		default:
			r.Skipped++
		}
	}
}
