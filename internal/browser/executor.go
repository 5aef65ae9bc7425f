package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ActionOutcome - результат действия для вызывающего кода.
type ActionOutcome struct {
	Succeeded    bool
	StrategyUsed Strategy
	Attempts     int
	Poll         PollResult
}

// ExecutorConfig задаёт бюджет действия.
type ExecutorConfig struct {
	ActionTimeout time.Duration
	PollAttempts  int
	PollInterval  time.Duration
	Strategies    []Strategy
}

// ActionExecutor выполняет клик с перебором стратегий и подтверждает результат опросом.
// Экземпляр не потокобезопасен: одна последовательность действий на сессию.
type ActionExecutor struct {
	gw      SessionGateway
	invoker *StrategyInvoker
	poller  *StatePoller
	cfg     ExecutorConfig
}

func NewActionExecutor(gw SessionGateway, cfg ExecutorConfig) *ActionExecutor {
	if cfg.ActionTimeout == 0 {
		cfg.ActionTimeout = 10 * time.Second
	}
	if cfg.PollAttempts == 0 {
		cfg.PollAttempts = 5
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = ClickStrategies
	}

	return &ActionExecutor{
		gw:      gw,
		invoker: NewStrategyInvoker(gw),
		poller:  NewStatePoller(gw),
		cfg:     cfg,
	}
}

func (e *ActionExecutor) Poller() *StatePoller { return e.poller }

func (e *ActionExecutor) Config() ExecutorConfig { return e.cfg }

// PerformIdempotentToggle переводит переключатель в состояние с текстом expected.
// Если узел уже показывает expected, клика не будет. Ошибки - *ActionError с Kind
// ErrElementNotFound, ErrAllStrategiesExhausted или ErrConvergenceTimeout.
func (e *ActionExecutor) PerformIdempotentToggle(ctx context.Context, loc Locator, expected string) (ActionOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ActionTimeout)
	defer cancel()

	ref, current, err := e.resolveText(ctx, loc)
	if err != nil {
		return ActionOutcome{}, err
	}
	if current == expected {
		ref.Invalidate()
		return ActionOutcome{Succeeded: true, StrategyUsed: StrategyNone}, nil
	}

	outcome, err := e.click(ctx, loc, ref)
	if err != nil {
		return outcome, err
	}

	outcome.Poll = e.poller.PollUntil(ctx, loc, TextEquals(expected), e.cfg.PollAttempts, e.cfg.PollInterval)
	if !outcome.Poll.Converged {
		outcome.Succeeded = false
		cause := outcome.Poll.Err
		if cause == nil {
			cause = fmt.Errorf("ожидали %q, последнее значение %q", expected, outcome.Poll.FinalObservedValue)
		}
		return outcome, &ActionError{
			Kind:     ErrConvergenceTimeout,
			Locator:  loc,
			Strategy: outcome.StrategyUsed,
			Attempts: outcome.Poll.AttemptsUsed,
			Err:      cause,
		}
	}
	return outcome, nil
}

// PerformClick - тот же перебор стратегий без проверки состояния и опроса.
func (e *ActionExecutor) PerformClick(ctx context.Context, loc Locator) (ActionOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ActionTimeout)
	defer cancel()

	ref, err := Resolve(ctx, e.gw, loc)
	if err != nil {
		return ActionOutcome{}, notFound(loc, err)
	}
	return e.click(ctx, loc, ref)
}

func (e *ActionExecutor) resolveText(ctx context.Context, loc Locator) (*ElementRef, string, error) {
	var lastErr error
	// Второй заход только если узел устарел между разрешением и чтением.
	for range 2 {
		ref, err := Resolve(ctx, e.gw, loc)
		if err != nil {
			return nil, "", notFound(loc, err)
		}
		text, err := ref.Text(ctx)
		if err == nil {
			return ref, text, nil
		}
		if !errors.Is(err, ErrStaleReference) {
			ref.Invalidate()
			return nil, "", fmt.Errorf("чтение %s: %w", loc, err)
		}
		lastErr = err
	}
	return nil, "", fmt.Errorf("чтение %s: %w", loc, lastErr)
}

// click перебирает стратегии по порядку до первого успеха.
func (e *ActionExecutor) click(ctx context.Context, loc Locator, ref *ElementRef) (ActionOutcome, error) {
	var (
		outcome  ActionOutcome
		failures []error
	)
	// Последняя ссылка освобождается при любом исходе; промежуточные
	// уже освобождены, когда стали устаревшими.
	defer func() {
		if ref != nil {
			ref.Invalidate()
		}
	}()

	for _, s := range e.cfg.Strategies {
		if err := ctx.Err(); err != nil {
			return outcome, interrupted(loc, outcome.Attempts, err)
		}
		if ref == nil || ref.Stale() {
			if ref != nil {
				ref.Invalidate()
				ref = nil
			}
			fresh, err := Resolve(ctx, e.gw, loc)
			if err != nil {
				outcome.Attempts++
				failures = append(failures, fmt.Errorf("%s: %w", s, err))
				continue
			}
			ref = fresh
		}

		outcome.Attempts++
		attempt := e.invoker.Invoke(ctx, ref, s)
		if attempt.Succeeded() {
			ref.Invalidate()
			outcome.Succeeded = true
			outcome.StrategyUsed = s
			return outcome, nil
		}
		if err := ctx.Err(); err != nil {
			return outcome, interrupted(loc, outcome.Attempts, err)
		}
		failures = append(failures, fmt.Errorf("%s: %w", s, attempt.Err))
	}

	return outcome, &ActionError{
		Kind:     ErrAllStrategiesExhausted,
		Locator:  loc,
		Attempts: outcome.Attempts,
		Err:      errors.Join(failures...),
	}
}

// interrupted - перебор стратегий остановлен дедлайном или отменой, а не исчерпан.
func interrupted(loc Locator, attempts int, err error) error {
	return fmt.Errorf("клик %s прерван после %d попыток: %w", loc, attempts, err)
}

func notFound(loc Locator, err error) error {
	if errors.Is(err, ErrElementNotFound) {
		return &ActionError{Kind: ErrElementNotFound, Locator: loc, Err: err}
	}
	return fmt.Errorf("разрешение %s: %w", loc, err)
}
