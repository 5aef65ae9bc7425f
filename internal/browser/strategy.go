package browser

import (
	"context"
	"errors"
	"fmt"
)

// Strategy - механизм доставки клика.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyNative
	StrategyScripted
	StrategyPointer
)

func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyNative:
		return "native"
	case StrategyScripted:
		return "scripted"
	case StrategyPointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// ClickStrategies - фиксированный порядок перебора.
var ClickStrategies = []Strategy{StrategyNative, StrategyScripted, StrategyPointer}

// Attempt - результат одной попытки одной стратегии.
type Attempt struct {
	Strategy Strategy
	Err      error
}

func (a Attempt) Succeeded() bool { return a.Err == nil }

// StrategyInvoker выполняет один клик выбранным механизмом.
type StrategyInvoker struct {
	gw SessionGateway
}

func NewStrategyInvoker(gw SessionGateway) *StrategyInvoker {
	return &StrategyInvoker{gw: gw}
}

// Invoke кликает по ref стратегией s. Ошибка несёт один из видов:
// ErrNotInteractable, ErrStaleReference, ErrScriptRejected, ErrGeometryUnavailable.
func (i *StrategyInvoker) Invoke(ctx context.Context, ref *ElementRef, s Strategy) Attempt {
	if ref.Stale() {
		return Attempt{Strategy: s, Err: fmt.Errorf("%s: %w", ref.Locator(), ErrStaleReference)}
	}

	var err error
	switch s {
	case StrategyNative:
		err = i.gw.DispatchNativeClick(ctx, ref.handle)
	case StrategyScripted:
		err = i.gw.DispatchScriptedClick(ctx, ref.handle)
	case StrategyPointer:
		err = i.gw.DispatchPointerClick(ctx, ref.handle)
	default:
		err = fmt.Errorf("неизвестная стратегия: %d", s)
	}

	if errors.Is(err, ErrStaleReference) {
		ref.Invalidate()
	}
	return Attempt{Strategy: s, Err: err}
}
