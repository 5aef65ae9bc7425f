package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"storefrontE2E/internal/cli/ui"
	"storefrontE2E/internal/database"
	"storefrontE2E/internal/scenario"
)

// ErrSuiteFailed - прогон завершился, но не все сценарии прошли.
var ErrSuiteFailed = errors.New("есть упавшие сценарии")

// SuiteRunner - то, что умеет прогнать набор сценариев.
type SuiteRunner interface {
	Run(ctx context.Context, scenarios []scenario.Scenario) (*scenario.Report, error)
}

// RunHandler запускает сценарии и печатает итог
type RunHandler struct {
	runner SuiteRunner
	out    io.Writer
}

func NewRunHandler(runner SuiteRunner, out io.Writer) *RunHandler {
	return &RunHandler{
		runner: runner,
		out:    out,
	}
}

func (h *RunHandler) Run(ctx context.Context, scenarios []scenario.Scenario) error {
	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconPlay+" Запуск %d сценариев..."+ui.ColorReset+"\n\n", len(scenarios))

	rep, err := h.runner.Run(ctx, scenarios)
	if rep == nil {
		fmt.Fprintf(h.out, ui.ColorRed+ui.IconCross+" Ошибка:"+ui.ColorReset+" %v\n", err)
		return err
	}

	for _, sc := range rep.Scenarios {
		h.printScenario(sc)
	}
	h.printSummary(rep)

	if err != nil {
		return err
	}
	if !rep.OK() {
		return ErrSuiteFailed
	}
	return nil
}

func (h *RunHandler) printScenario(sc scenario.ScenarioReport) {
	icon, color, _ := ui.FormatStatus(sc.Status)
	fmt.Fprintf(h.out, "%s%s"+ui.ColorReset+" "+ui.ColorBold+"%s"+ui.ColorReset+" "+ui.ColorGray+"%s  %s"+ui.ColorReset+"\n",
		color, icon, sc.Name, ui.Tagged(sc.Tags), ui.FormatDuration(sc.Duration))

	if sc.Status != database.StatusFailed {
		return
	}
	if len(sc.Steps) == 0 && sc.Err != "" {
		fmt.Fprintf(h.out, "  "+ui.ColorRed+"%s"+ui.ColorReset+"\n", sc.Err)
		return
	}
	for _, st := range sc.Steps {
		icon, color, _ := ui.FormatStatus(st.Status)
		fmt.Fprintf(h.out, "  %s%s"+ui.ColorReset+" %s", color, icon, st.Text)
		if st.Strategy != "" {
			fmt.Fprintf(h.out, ui.ColorGray+" (%s x%d)"+ui.ColorReset, st.Strategy, st.Attempts)
		}
		fmt.Fprintln(h.out)
		if st.Err != "" {
			fmt.Fprintf(h.out, "    "+ui.ColorRed+"[%s]"+ui.ColorReset+" %s\n", st.FailureKind, st.Err)
		}
	}
}

func (h *RunHandler) printSummary(rep *scenario.Report) {
	fmt.Fprintln(h.out)
	color := ui.ColorGreen
	if !rep.OK() {
		color = ui.ColorRed
	}
	fmt.Fprintf(h.out, ui.ColorBold+"%s"+ui.ColorReset+"  %s  %s  %s  %s\n",
		"Итого:",
		ui.Paint(ui.ColorGreen, "%d пройдено", rep.Passed),
		ui.Paint(color, "%d упало", rep.Failed),
		ui.Paint(ui.ColorGray, "%d пропущено", rep.Skipped),
		ui.FormatDuration(rep.Duration),
	)
	if rep.RunID != 0 {
		fmt.Fprintf(h.out, ui.ColorGray+"Подробности: show %d"+ui.ColorReset+"\n", rep.RunID)
	}
	fmt.Fprintln(h.out)
}
