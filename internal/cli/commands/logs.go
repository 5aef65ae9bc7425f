package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"storefrontE2E/internal/cli/ui"
	"storefrontE2E/internal/database"
)

// LogsHandler выводит журнал шагов прогона: стратегии, попытки, ошибки
type LogsHandler struct {
	repo History
	log  *zap.Logger
	out  io.Writer
}

func NewLogsHandler(repo History, log *zap.Logger, out io.Writer) *LogsHandler {
	return &LogsHandler{
		repo: repo,
		log:  log,
		out:  out,
	}
}

func (h *LogsHandler) Show(ctx context.Context, idStr string) error {
	id, err := parseID(idStr)
	if err != nil {
		fmt.Fprintln(h.out, ui.ColorRed+ui.IconCross+" Неверный ID прогона"+ui.ColorReset)
		return err
	}
	run, err := h.repo.GetRun(ctx, id)
	if err != nil {
		fmt.Fprintln(h.out, ui.ColorRed+ui.IconCross+" Прогон не найден"+ui.ColorReset)
		return err
	}

	fmt.Fprintf(h.out, "\n"+ui.ColorBold+"=== "+ui.IconList+" Журнал прогона #%d ==="+ui.ColorReset+"\n", run.ID)
	fmt.Fprintf(h.out, ui.ColorCyan+"Статус:"+ui.ColorReset+" %s\n\n", run.Status)

	scenarios, err := h.repo.GetScenarios(ctx, run.ID)
	if err != nil {
		h.log.Error("Ошибка получения сценариев", zap.Error(err))
		fmt.Fprintln(h.out, ui.ColorRed+ui.IconCross+" Ошибка получения сценариев"+ui.ColorReset)
		return err
	}

	for _, sc := range scenarios {
		fmt.Fprintf(h.out, ui.ColorBold+"%s"+ui.ColorReset+"\n", sc.Name)

		steps, err := h.repo.GetSteps(ctx, sc.ID)
		if err != nil {
			h.log.Error("Ошибка получения шагов", zap.Uint("scenario_id", sc.ID), zap.Error(err))
			fmt.Fprintln(h.out, ui.ColorRed+ui.IconCross+" Ошибка получения шагов"+ui.ColorReset)
			return err
		}
		if len(steps) == 0 {
			fmt.Fprintln(h.out, "  "+ui.ColorGray+"Шаги не найдены"+ui.ColorReset)
			continue
		}
		for _, st := range steps {
			h.printStep(st)
		}
		fmt.Fprintln(h.out)
	}
	return nil
}

func (h *LogsHandler) printStep(st database.StepResult) {
	fmt.Fprintf(h.out, "  "+ui.ColorGray+"[%s]"+ui.ColorReset+" "+ui.ColorCyan+"%s"+ui.ColorReset,
		st.CreatedAt.Format("15:04:05"), st.Text)
	if st.Strategy != "" {
		fmt.Fprintf(h.out, " "+ui.IconArrow+" "+ui.ColorYellow+"%s x%d"+ui.ColorReset, st.Strategy, st.Attempts)
	}
	fmt.Fprintln(h.out)

	switch st.Status {
	case database.StatusFailed:
		fmt.Fprintf(h.out, "    "+ui.ColorRed+"[%s]"+ui.ColorReset+" %s\n", st.FailureKind, st.Error)
	case database.StatusSkipped:
		fmt.Fprintln(h.out, "    "+ui.ColorGray+"[пропущен]"+ui.ColorReset)
	}
}
