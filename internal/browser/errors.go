package browser

import (
	"context"
	"errors"
	"fmt"
)

// Виды отказов. Первые три терминальны для действия и различаются вызывающим
// кодом через errors.Is; остальные восстанавливаются локально.
var (
	ErrElementNotFound        = errors.New("element not found")
	ErrAllStrategiesExhausted = errors.New("all click strategies exhausted")
	ErrConvergenceTimeout     = errors.New("state did not converge")

	ErrNotInteractable     = errors.New("element not interactable")
	ErrStaleReference      = errors.New("stale element reference")
	ErrGeometryUnavailable = errors.New("element geometry unavailable")
	ErrScriptRejected      = errors.New("script rejected")
)

// ActionError описывает терминальный отказ действия.
type ActionError struct {
	Kind     error
	Locator  Locator
	Strategy Strategy
	Attempts int
	Err      error
}

func (e *ActionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Locator, e.Kind)
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s (попыток: %d)", msg, e.Attempts)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ActionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf возвращает вид отказа из цепочки ошибок или nil.
func KindOf(err error) error {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	for _, kind := range []error{
		ErrElementNotFound,
		ErrAllStrategiesExhausted,
		ErrConvergenceTimeout,
		ErrNotInteractable,
		ErrStaleReference,
		ErrGeometryUnavailable,
		ErrScriptRejected,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// KindName - короткое имя вида отказа для отчётов.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrElementNotFound:
		return "element_not_found"
	case ErrAllStrategiesExhausted:
		return "all_strategies_exhausted"
	case ErrConvergenceTimeout:
		return "convergence_timeout"
	case ErrNotInteractable:
		return "not_interactable"
	case ErrStaleReference:
		return "stale_reference"
	case ErrGeometryUnavailable:
		return "geometry_unavailable"
	case ErrScriptRejected:
		return "script_rejected"
	}
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "error"
}

// driverError оборачивает ошибку драйвера, сохраняя и вид, и исходное сообщение.
type driverError struct {
	kind error
	err  error
}

func (e *driverError) Error() string   { return fmt.Sprintf("%s: %v", e.kind, e.err) }
func (e *driverError) Unwrap() []error { return []error{e.kind, e.err} }

func wrapKind(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return &driverError{kind: kind, err: err}
}
