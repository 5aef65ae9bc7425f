// Package pages - страничные объекты демо-магазина поверх ядра действий.
package pages

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefrontE2E/internal/browser"
)

// Site связывает сессию, исполнитель действий и каталог локаторов.
// Один Site на одну сессию; между горутинами не делится.
type Site struct {
	br      browser.Browser
	exec    *browser.ActionExecutor
	cat     *Catalog
	baseURL string
}

func NewSite(br browser.Browser, exec *browser.ActionExecutor, cat *Catalog, baseURL string) *Site {
	if cat == nil {
		cat = DefaultCatalog()
	}
	return &Site{br: br, exec: exec, cat: cat, baseURL: baseURL}
}

func (s *Site) BaseURL() string { return s.baseURL }

func (s *Site) Catalog() *Catalog { return s.cat }

func (s *Site) Login() *LoginPage { return &LoginPage{site: s} }

func (s *Site) Inventory() *InventoryPage {
	inv := s.cat.Inventory
	return &InventoryPage{
		site:       s,
		reconciler: browser.NewCountReconciler(s.br, inv.CartBadge, inv.Buttons, s.cat.Texts.Remove),
	}
}

func (s *Site) Cart() *CartPage { return &CartPage{site: s} }

func (s *Site) poll() (int, time.Duration) {
	cfg := s.exec.Config()
	return cfg.PollAttempts, cfg.PollInterval
}

// visible - мгновенная проверка без ожидания. Отсутствие узла не ошибка.
func (s *Site) visible(ctx context.Context, loc browser.Locator) (bool, error) {
	ref, err := browser.Resolve(ctx, s.br, loc)
	if errors.Is(err, browser.ErrElementNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer ref.Invalidate()
	ok, err := ref.IsInteractable(ctx)
	if errors.Is(err, browser.ErrStaleReference) {
		return false, nil
	}
	return ok, err
}

// waitVisible ждёт узел в пределах бюджета опроса.
func (s *Site) waitVisible(ctx context.Context, loc browser.Locator) (bool, error) {
	attempts, interval := s.poll()
	res := s.exec.Poller().WaitInteractable(ctx, loc, attempts, interval)
	return res.Converged, res.Err
}

// waitText ждёт, пока текст узла не будет содержать want.
func (s *Site) waitText(ctx context.Context, loc browser.Locator, want string) browser.PollResult {
	attempts, interval := s.poll()
	return s.exec.Poller().PollUntil(ctx, loc, func(text string) bool {
		return strings.Contains(text, want)
	}, attempts, interval)
}

func (s *Site) text(ctx context.Context, loc browser.Locator) (string, error) {
	ref, err := browser.Resolve(ctx, s.br, loc)
	if err != nil {
		return "", err
	}
	defer ref.Invalidate()
	return ref.Text(ctx)
}

func (s *Site) count(ctx context.Context, loc browser.Locator) (int, error) {
	refs, err := browser.ResolveAll(ctx, s.br, loc)
	if err != nil {
		return 0, err
	}
	browser.ReleaseAll(refs)
	return len(refs), nil
}
