package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Реализация SessionGateway поверх ElementHandle Playwright.

func (b *PlaywrightBrowser) handle(h NodeHandle) (playwright.ElementHandle, error) {
	eh, ok := h.(playwright.ElementHandle)
	if !ok || eh == nil {
		return nil, fmt.Errorf("чужой handle %T: %w", h, ErrStaleReference)
	}
	return eh, nil
}

func (b *PlaywrightBrowser) Resolve(ctx context.Context, loc Locator) (NodeHandle, error) {
	handles, err := b.queryAll(ctx, loc)
	if err != nil {
		return nil, err
	}
	if loc.Index >= len(handles) {
		disposeAll(handles)
		return nil, fmt.Errorf("%s: %w", loc, ErrElementNotFound)
	}

	target := handles[loc.Index]
	for i, h := range handles {
		if i != loc.Index {
			_ = h.Dispose()
		}
	}
	return target, nil
}

func (b *PlaywrightBrowser) ResolveAll(ctx context.Context, loc Locator) ([]NodeHandle, error) {
	handles, err := b.queryAll(ctx, loc)
	if err != nil {
		return nil, err
	}
	out := make([]NodeHandle, len(handles))
	for i, h := range handles {
		out[i] = h
	}
	return out, nil
}

// Release освобождает JS-handle узла. Ошибка Dispose для отсоединённого узла не важна.
func (b *PlaywrightBrowser) Release(h NodeHandle) {
	if eh, ok := h.(playwright.ElementHandle); ok && eh != nil {
		_ = eh.Dispose()
	}
}

func (b *PlaywrightBrowser) queryAll(ctx context.Context, loc Locator) ([]playwright.ElementHandle, error) {
	page := b.getPage()
	if page == nil {
		return nil, fmt.Errorf("браузер не запущен")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	handles, err := page.QuerySelectorAll(loc.PlaywrightQuery())
	if err != nil {
		return nil, fmt.Errorf("поиск %s: %w", loc, classifyPlaywrightError(err, nil))
	}
	return handles, nil
}

func (b *PlaywrightBrowser) ReadText(ctx context.Context, h NodeHandle) (string, error) {
	eh, err := b.handle(h)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := eh.InnerText()
	if err != nil {
		return "", classifyPlaywrightError(err, nil)
	}
	return text, nil
}

func (b *PlaywrightBrowser) ReadAttribute(ctx context.Context, h NodeHandle, name string) (string, error) {
	eh, err := b.handle(h)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := eh.GetAttribute(name)
	if err != nil {
		return "", classifyPlaywrightError(err, nil)
	}
	return v, nil
}

func (b *PlaywrightBrowser) IsInteractable(ctx context.Context, h NodeHandle) (bool, error) {
	eh, err := b.handle(h)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	res, err := eh.Evaluate(jsInteractable)
	if err != nil {
		return false, classifyPlaywrightError(err, nil)
	}
	ok, _ := res.(bool)
	return ok, nil
}

// DispatchNativeClick - обычный клик Playwright с проверками actionability.
func (b *PlaywrightBrowser) DispatchNativeClick(ctx context.Context, h NodeHandle) error {
	eh, err := b.handle(h)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err = eh.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(float64(b.cfg.CallTimeout.Milliseconds())),
	})
	return classifyPlaywrightError(err, ErrNotInteractable)
}

// DispatchScriptedClick вызывает el.click() в странице, минуя проверки видимости.
func (b *PlaywrightBrowser) DispatchScriptedClick(ctx context.Context, h NodeHandle) error {
	eh, err := b.handle(h)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = eh.Evaluate(jsClick)
	return classifyPlaywrightError(err, ErrScriptRejected)
}

// DispatchPointerClick наводит курсор в центр элемента и кликает мышью.
func (b *PlaywrightBrowser) DispatchPointerClick(ctx context.Context, h NodeHandle) error {
	eh, err := b.handle(h)
	if err != nil {
		return err
	}
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Прокрутка не обязательна: если не удалась, геометрия всё равно покажет, можно ли кликнуть.
	_ = eh.ScrollIntoViewIfNeeded(playwright.ElementHandleScrollIntoViewIfNeededOptions{
		Timeout: playwright.Float(float64(b.cfg.CallTimeout.Milliseconds())),
	})

	box, err := eh.BoundingBox()
	if err != nil {
		return classifyPlaywrightError(err, ErrGeometryUnavailable)
	}
	if box == nil || box.Width <= 0 || box.Height <= 0 {
		return fmt.Errorf("нулевой размер элемента: %w", ErrGeometryUnavailable)
	}

	x := box.X + box.Width/2
	y := box.Y + box.Height/2
	mouse := page.Mouse()
	if err := mouse.Move(x, y); err != nil {
		return fmt.Errorf("перемещение курсора: %w", classifyPlaywrightError(err, nil))
	}
	if err := mouse.Click(x, y); err != nil {
		return fmt.Errorf("клик мышью: %w", classifyPlaywrightError(err, nil))
	}
	return nil
}

// classifyPlaywrightError сводит ошибки драйвера к видам отказов ядра.
// fallback применяется к ошибкам, не узнанным по тексту.
func classifyPlaywrightError(err error, fallback error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not attached to the dom"),
		strings.Contains(msg, "execution context was destroyed"),
		strings.Contains(msg, "is disposed"),
		strings.Contains(msg, "cannot find context with specified id"):
		return wrapKind(ErrStaleReference, err)

	case errors.Is(err, playwright.ErrTimeout),
		strings.Contains(msg, "intercepts pointer events"),
		strings.Contains(msg, "element is not visible"),
		strings.Contains(msg, "outside of the viewport"),
		strings.Contains(msg, "element is not stable"),
		strings.Contains(msg, "element is not enabled"):
		if fallback == ErrNotInteractable {
			return wrapKind(ErrNotInteractable, err)
		}
	}

	if fallback != nil {
		return wrapKind(fallback, err)
	}
	return err
}

func disposeAll(handles []playwright.ElementHandle) {
	for _, h := range handles {
		_ = h.Dispose()
	}
}
