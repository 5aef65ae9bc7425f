package browser

import (
	"context"
	"errors"
	"time"
)

// PollResult - итог ожидания состояния.
type PollResult struct {
	Converged          bool
	FinalObservedValue string
	AttemptsUsed       int
	// Err - причина досрочной остановки: истёкший дедлайн или нетранзиентная ошибка сессии.
	Err error
}

// TextEquals - предикат точного совпадения текста.
func TextEquals(want string) func(string) bool {
	return func(got string) bool { return got == want }
}

// StatePoller ждёт, пока узел придёт в ожидаемое состояние. Каждая попытка
// разрешает локатор заново.
type StatePoller struct {
	gw SessionGateway
}

func NewStatePoller(gw SessionGateway) *StatePoller {
	return &StatePoller{gw: gw}
}

// probe читает наблюдаемое значение свежей ссылки и проверяет условие.
type probe func(ctx context.Context, ref *ElementRef) (observed string, ok bool, err error)

// PollUntil делает не больше maxAttempts попыток и возвращается сразу, как только
// predicate(text) истинен. Между попытками спит interval; первая попытка без ожидания.
func (p *StatePoller) PollUntil(ctx context.Context, loc Locator, predicate func(string) bool, maxAttempts int, interval time.Duration) PollResult {
	return p.poll(ctx, loc, maxAttempts, interval, func(ctx context.Context, ref *ElementRef) (string, bool, error) {
		text, err := ref.Text(ctx)
		if err != nil {
			return "", false, err
		}
		return text, predicate(text), nil
	})
}

// WaitInteractable ждёт, пока узел станет видимым и доступным для клика.
func (p *StatePoller) WaitInteractable(ctx context.Context, loc Locator, maxAttempts int, interval time.Duration) PollResult {
	return p.poll(ctx, loc, maxAttempts, interval, func(ctx context.Context, ref *ElementRef) (string, bool, error) {
		ok, err := ref.IsInteractable(ctx)
		if err != nil {
			return "", false, err
		}
		if ok {
			return "interactable", true, nil
		}
		return "not interactable", false, nil
	})
}

func (p *StatePoller) poll(ctx context.Context, loc Locator, maxAttempts int, interval time.Duration, check probe) PollResult {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var res PollResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, interval); err != nil {
				res.Err = err
				return res
			}
		}
		res.AttemptsUsed = attempt

		ref, err := Resolve(ctx, p.gw, loc)
		if err != nil {
			if transient(err) {
				continue
			}
			res.Err = err
			return res
		}

		observed, ok, err := check(ctx, ref)
		ref.Invalidate()
		if err != nil {
			if transient(err) {
				continue
			}
			res.Err = err
			return res
		}

		res.FinalObservedValue = observed
		if ok {
			res.Converged = true
			return res
		}
	}
	return res
}

// Await повторяет check, пока он не вернёт true, с теми же правилами, что и
// PollUntil: без паузы перед первой попыткой, пауза прерывается отменой ctx.
// Не дождались за maxAttempts - ErrConvergenceTimeout. Ошибка check возвращается сразу.
func (p *StatePoller) Await(ctx context.Context, maxAttempts int, interval time.Duration, check func(ctx context.Context) (bool, error)) (int, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, interval); err != nil {
				return attempt - 1, err
			}
		}
		ok, err := check(ctx)
		if err != nil {
			return attempt, err
		}
		if ok {
			return attempt, nil
		}
	}
	return maxAttempts, ErrConvergenceTimeout
}

// transient: устаревшая ссылка и временно пропавший узел - ожидаемый шум
// перерисовки, а не дефект.
func transient(err error) bool {
	return errors.Is(err, ErrStaleReference) || errors.Is(err, ErrElementNotFound)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
