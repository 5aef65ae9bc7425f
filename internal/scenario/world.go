// Package scenario - сценарии регрессии магазина, библиотека шагов и параллельный прогон.
package scenario

import (
	"errors"
	"fmt"

	"storefrontE2E/internal/browser"
	"storefrontE2E/internal/pages"
)

// ErrAssertion - проверка сценария не выполнена.
var ErrAssertion = errors.New("assertion failed")

func assertf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrAssertion)
}

type Credentials struct {
	Username string
	Password string
}

// World - состояние одного сценария: страницы его сессии и итог последнего действия.
type World struct {
	Site      *pages.Site
	Login     *pages.LoginPage
	Inventory *pages.InventoryPage
	Cart      *pages.CartPage
	Creds     Credentials

	outcome *browser.ActionOutcome
}

func NewWorld(site *pages.Site, creds Credentials) *World {
	return &World{
		Site:      site,
		Login:     site.Login(),
		Inventory: site.Inventory(),
		Cart:      site.Cart(),
		Creds:     creds,
	}
}

// Record запоминает итог действия шага для отчёта.
func (w *World) Record(out browser.ActionOutcome) {
	w.outcome = &out
}

// takeOutcome возвращает итог текущего шага и сбрасывает его.
func (w *World) takeOutcome() *browser.ActionOutcome {
	out := w.outcome
	w.outcome = nil
	return out
}
