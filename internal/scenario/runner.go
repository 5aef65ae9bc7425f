package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefrontE2E/internal/browser"
	"storefrontE2E/internal/database"
	"storefrontE2E/internal/logger"
	"storefrontE2E/internal/pages"
	"storefrontE2E/internal/sanitizer"
)

type RunnerConfig struct {
	BaseURL  string
	Threads  int
	Creds    Credentials
	Executor browser.ExecutorConfig
	Catalog  *pages.Catalog
	// Browser и Driver только для истории прогонов.
	Browser string
	Driver  string
}

// Runner прогоняет сценарии, каждый в своей свежей сессии.
type Runner struct {
	factory browser.Factory
	cfg     RunnerConfig
	rec     Recorder
	log     *logger.Zap
	san     *sanitizer.DataSanitizer
}

func NewRunner(factory browser.Factory, cfg RunnerConfig, rec Recorder, log *logger.Zap, san *sanitizer.DataSanitizer) *Runner {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.Catalog == nil {
		cfg.Catalog = pages.DefaultCatalog()
	}
	if rec == nil {
		rec = NopRecorder{}
	}
	if san == nil {
		san = sanitizer.New(cfg.Creds.Password)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{factory: factory, cfg: cfg, rec: rec, log: log, san: san}
}

// Run выполняет сценарии параллельно, не больше Threads одновременно.
// Упавший сценарий не останавливает остальные; ошибка возвращается только
// при отмене ctx или недоступной истории прогонов.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*Report, error) {
	start := time.Now()
	key := uuid.New().String()

	runID, err := r.rec.StartRun(ctx, RunInfo{
		Key:     key,
		BaseURL: r.cfg.BaseURL,
		Browser: r.cfg.Browser,
		Driver:  r.cfg.Driver,
		Threads: r.cfg.Threads,
	})
	if err != nil {
		return nil, fmt.Errorf("создание прогона: %w", err)
	}

	log := r.log.With(zap.String("run", key))
	log.Info("Прогон запущен",
		zap.Uint("run_id", runID),
		zap.Int("scenarios", len(scenarios)),
		zap.Int("threads", r.cfg.Threads),
	)

	rep := &Report{RunID: runID, Key: key, Scenarios: make([]ScenarioReport, len(scenarios))}
	for i, sc := range scenarios {
		rep.Scenarios[i] = ScenarioReport{Name: sc.Name, Tags: sc.Tags, Status: database.StatusSkipped}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Threads)
	for i, sc := range scenarios {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Отменённый прогон оставляет ещё не начатые сценарии пропущенными.
			if gctx.Err() != nil {
				return nil
			}
			rep.Scenarios[i] = r.runScenario(gctx, log, runID, sc)
			return nil
		})
	}
	_ = g.Wait()

	rep.tally()
	rep.Duration = time.Since(start)

	// История дописывается даже после отмены прогона.
	finishCtx := context.WithoutCancel(ctx)
	if err := r.rec.FinishRun(finishCtx, runID, rep); err != nil {
		log.Warn("Не удалось сохранить итог прогона", zap.Uint("run_id", runID), zap.Error(err))
	}

	log.Info("Прогон завершён",
		zap.Uint("run_id", runID),
		zap.Int("passed", rep.Passed),
		zap.Int("failed", rep.Failed),
		zap.Int("skipped", rep.Skipped),
		zap.Duration("duration", rep.Duration),
	)

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	return rep, nil
}

func (r *Runner) runScenario(ctx context.Context, runLog *zap.Logger, runID uint, sc Scenario) ScenarioReport {
	start := time.Now()
	log := runLog.With(zap.String("scenario", sc.Name))
	res := ScenarioReport{Name: sc.Name, Tags: sc.Tags, Status: database.StatusPassed}

	scID, err := r.rec.StartScenario(ctx, runID, sc)
	if err != nil {
		log.Warn("Не удалось сохранить сценарий", zap.Error(err))
	}

	br := r.factory()
	defer func() {
		if err := br.Close(); err != nil {
			log.Warn("Ошибка закрытия браузера", zap.Error(err))
		}
	}()

	if err := br.Launch(ctx); err != nil {
		res.Status = database.StatusFailed
		res.Err = r.san.SanitizeError(fmt.Errorf("запуск браузера: %w", err))
	} else {
		exec := browser.NewActionExecutor(br, r.cfg.Executor)
		world := NewWorld(pages.NewSite(br, exec, r.cfg.Catalog, r.cfg.BaseURL), r.cfg.Creds)
		res.Steps, err = r.runSteps(ctx, log, scID, world, sc.Steps)
		if err != nil {
			res.Status = database.StatusFailed
			res.Err = r.san.SanitizeError(err)
		}
	}
	res.Duration = time.Since(start)

	if err := r.rec.FinishScenario(context.WithoutCancel(ctx), scID, res); err != nil {
		log.Warn("Не удалось сохранить итог сценария", zap.Error(err))
	}

	if res.Passed() {
		log.Info("Сценарий пройден", zap.Duration("duration", res.Duration))
	} else {
		log.Error("Сценарий упал", zap.String("error", res.Err), zap.Duration("duration", res.Duration))
	}
	return res
}

// runSteps выполняет шаги по порядку; после первой ошибки остальные помечаются пропущенными.
func (r *Runner) runSteps(ctx context.Context, log *zap.Logger, scID uint, w *World, steps []Step) ([]StepReport, error) {
	reports := make([]StepReport, 0, len(steps))
	var failed error

	for i, st := range steps {
		rep := StepReport{No: i + 1, Text: r.san.Sanitize(st.Text), Status: database.StatusSkipped}

		if failed == nil {
			start := time.Now()
			err := ctx.Err()
			if err == nil {
				err = st.Run(ctx, w)
			}
			rep.Duration = time.Since(start)

			if out := w.takeOutcome(); out != nil {
				rep.Strategy = out.StrategyUsed.String()
				rep.Attempts = out.Attempts
			}
			if err != nil {
				failed = fmt.Errorf("шаг %d %q: %w", rep.No, st.Text, err)
				rep.Status = database.StatusFailed
				rep.FailureKind = failureKind(err)
				rep.Err = r.san.SanitizeError(err)
				log.Warn("Шаг не выполнен",
					zap.Int("step", rep.No),
					zap.String("text", rep.Text),
					zap.String("kind", rep.FailureKind),
					zap.Int("attempts", attemptsOf(err, rep.Attempts)),
					zap.String("error", rep.Err),
				)
			} else {
				rep.Status = database.StatusPassed
				log.Debug("Шаг выполнен",
					zap.Int("step", rep.No),
					zap.String("text", rep.Text),
					zap.String("strategy", rep.Strategy),
					zap.Duration("duration", rep.Duration),
				)
			}
		}

		if err := r.rec.RecordStep(context.WithoutCancel(ctx), scID, rep); err != nil {
			log.Warn("Не удалось сохранить шаг", zap.Int("step", rep.No), zap.Error(err))
		}
		reports = append(reports, rep)
	}
	return reports, failed
}

func failureKind(err error) string {
	if errors.Is(err, ErrAssertion) {
		return "assertion"
	}
	return browser.KindName(err)
}

func attemptsOf(err error, fallback int) int {
	var ae *browser.ActionError
	if errors.As(err, &ae) {
		return ae.Attempts
	}
	return fallback
}
