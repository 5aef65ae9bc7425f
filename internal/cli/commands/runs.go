package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"storefrontE2E/internal/cli/ui"
)

// RunsHandler выводит последние прогоны
type RunsHandler struct {
	repo History
	log  *zap.Logger
	out  io.Writer
}

func NewRunsHandler(repo History, log *zap.Logger, out io.Writer) *RunsHandler {
	return &RunsHandler{
		repo: repo,
		log:  log,
		out:  out,
	}
}

func (h *RunsHandler) List(ctx context.Context, limit int) error {
	runs, err := h.repo.ListRuns(ctx, limit, 0)
	if err != nil {
		h.log.Error("Ошибка чтения прогонов", zap.Error(err))
		fmt.Fprintln(h.out, ui.ColorRed+ui.IconCross+" Ошибка чтения прогонов"+ui.ColorReset)
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(h.out, ui.ColorGray+"Прогонов пока нет"+ui.ColorReset)
		return nil
	}

	fmt.Fprintln(h.out, "\n"+ui.ColorBold+ui.IconList+" Прогоны:"+ui.ColorReset)
	fmt.Fprintln(h.out)
	for _, r := range runs {
		icon, color, text := ui.FormatStatus(r.Status)
		fmt.Fprintf(h.out, "  "+ui.ColorBold+"#%d"+ui.ColorReset+" %s%s %s"+ui.ColorReset+"  %d/%d\n",
			r.ID, color, icon, text, r.Passed, r.Total)
		fmt.Fprintf(h.out, "  "+ui.ColorGray+"└─ %s, %s/%s, потоков %d"+ui.ColorReset+"\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Browser, r.Driver, r.Threads)
	}
	fmt.Fprintln(h.out)
	return nil
}
