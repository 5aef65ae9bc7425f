package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"storefrontE2E/internal/cli/ui"
	"storefrontE2E/internal/database"
)

// ShowHandler обрабатывает команды просмотра деталей прогона
type ShowHandler struct {
	repo History
	log  *zap.Logger
	out  io.Writer
}

func NewShowHandler(repo History, log *zap.Logger, out io.Writer) *ShowHandler {
	return &ShowHandler{
		repo: repo,
		log:  log,
		out:  out,
	}
}

// Show выводит прогон со сценариями; у упавших сценариев показывает шаги
func (h *ShowHandler) Show(ctx context.Context, idStr string) error {
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

	_, color, statusText := ui.FormatStatus(run.Status)

	fmt.Fprintf(h.out, "\n"+ui.ColorBold+"=== Прогон #%d ==="+ui.ColorReset+"\n", run.ID)
	if run.RunKey != "" {
		fmt.Fprintf(h.out, ui.ColorGray+"Ключ в логах: %s"+ui.ColorReset+"\n", run.RunKey)
	}
	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconGlobe+" Магазин:"+ui.ColorReset+" %s\n", run.BaseURL)
	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconCog+" Браузер:"+ui.ColorReset+" %s (%s), потоков %d\n", run.Browser, run.Driver, run.Threads)
	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconChart+" Статус:"+ui.ColorReset+" %s%s"+ui.ColorReset+", пройдено %d из %d\n", color, statusText, run.Passed, run.Total)
	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconTime+" Начат:"+ui.ColorReset+" %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Fprintf(h.out, ui.ColorCyan+ui.IconTime+" Длительность:"+ui.ColorReset+" %s\n", ui.FormatDuration(run.FinishedAt.Sub(run.StartedAt)))
	}

	scenarios, err := h.repo.GetScenarios(ctx, run.ID)
	if err != nil {
		h.log.Error("Ошибка получения сценариев", zap.Error(err))
		fmt.Fprintln(h.out, ui.ColorRed+ui.IconCross+" Ошибка получения сценариев"+ui.ColorReset)
		return err
	}
	if len(scenarios) == 0 {
		fmt.Fprintln(h.out, "\n"+ui.ColorGray+"Сценарии не найдены"+ui.ColorReset)
		return nil
	}

	fmt.Fprintf(h.out, "\n"+ui.ColorYellow+ui.IconLoop+" Сценарии (%d):"+ui.ColorReset+"\n", len(scenarios))
	for _, sc := range scenarios {
		icon, color, _ := ui.FormatStatus(sc.Status)
		fmt.Fprintf(h.out, "\n%s%s"+ui.ColorReset+" "+ui.ColorBold+"%s"+ui.ColorReset+"\n", color, icon, sc.Name)
		if sc.Status != database.StatusFailed {
			continue
		}
		if sc.Error != "" {
			fmt.Fprintf(h.out, "  "+ui.ColorRed+"Ошибка:"+ui.ColorReset+" %s\n", sc.Error)
		}
		steps, err := h.repo.GetSteps(ctx, sc.ID)
		if err != nil {
			h.log.Error("Ошибка получения шагов", zap.Uint("scenario_id", sc.ID), zap.Error(err))
			continue
		}
		for _, st := range steps {
			icon, color, _ := ui.FormatStatus(st.Status)
			fmt.Fprintf(h.out, "  %s%s"+ui.ColorReset+" [%d] %s\n", color, icon, st.StepNo, st.Text)
		}
	}
	fmt.Fprintln(h.out)
	return nil
}
