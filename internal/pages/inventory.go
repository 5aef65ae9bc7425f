package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefrontE2E/internal/browser"
)

type InventoryPage struct {
	site       *Site
	reconciler *browser.CountReconciler
}

// IsDisplayed: заголовок страницы содержит "Products".
func (p *InventoryPage) IsDisplayed(ctx context.Context) (bool, error) {
	res := p.site.waitText(ctx, p.site.cat.Inventory.Title, p.site.cat.Texts.ProductsTitle)
	return res.Converged, res.Err
}

func (p *InventoryPage) ItemCount(ctx context.Context) (int, error) {
	return p.site.count(ctx, p.site.cat.Inventory.Items)
}

// AddItemToCart переводит кнопку i-го товара в "Remove". Повторный вызов клика не делает.
func (p *InventoryPage) AddItemToCart(ctx context.Context, i int) (browser.ActionOutcome, error) {
	return p.site.exec.PerformIdempotentToggle(ctx, p.site.cat.Inventory.Buttons.Nth(i), p.site.cat.Texts.Remove)
}

func (p *InventoryPage) RemoveItemFromCart(ctx context.Context, i int) (browser.ActionOutcome, error) {
	return p.site.exec.PerformIdempotentToggle(ctx, p.site.cat.Inventory.Buttons.Nth(i), p.site.cat.Texts.Add)
}

func (p *InventoryPage) CartCount(ctx context.Context) (browser.CartCount, error) {
	return p.reconciler.AuthoritativeCartCount(ctx)
}

// WaitCartCount пересчитывает корзину, пока итог не станет want, в пределах
// бюджета опроса. Возвращает последний подсчёт.
func (p *InventoryPage) WaitCartCount(ctx context.Context, want int) (browser.CartCount, error) {
	attempts, interval := p.site.poll()

	var last browser.CartCount
	_, err := p.site.exec.Poller().Await(ctx, attempts, interval, func(ctx context.Context) (bool, error) {
		cc, err := p.CartCount(ctx)
		if err != nil {
			return false, err
		}
		last = cc
		return cc.Authoritative == want, nil
	})
	if errors.Is(err, browser.ErrConvergenceTimeout) {
		return last, fmt.Errorf("в корзине %d, ожидали %d (бейдж %d, строк %d): %w",
			last.Authoritative, want, last.Badge, last.Predicate, err)
	}
	return last, err
}

func (p *InventoryPage) OpenCart(ctx context.Context) (browser.ActionOutcome, error) {
	out, err := p.site.exec.PerformClick(ctx, p.site.cat.Inventory.CartLink)
	if err != nil {
		return out, err
	}
	if res := p.site.waitText(ctx, p.site.cat.Inventory.Title, p.site.cat.Texts.CartTitle); !res.Converged {
		return out, fmt.Errorf("страница корзины не открылась: %w", browser.ErrConvergenceTimeout)
	}
	return out, nil
}

// OpenMenu открывает боковое меню и ждёт ссылку выхода.
func (p *InventoryPage) OpenMenu(ctx context.Context) (browser.ActionOutcome, error) {
	out, err := p.site.exec.PerformClick(ctx, p.site.cat.Inventory.Menu)
	if err != nil {
		return out, err
	}
	ok, err := p.site.waitVisible(ctx, p.site.cat.Inventory.Logout)
	if err != nil {
		return out, err
	}
	if !ok {
		return out, fmt.Errorf("меню не открылось: %w", browser.ErrConvergenceTimeout)
	}
	return out, nil
}

// Logout выходит через меню. Если меню или ссылка не поддались, сессия
// сбрасывается переходом на стартовую страницу.
func (p *InventoryPage) Logout(ctx context.Context) (browser.ActionOutcome, error) {
	out, err := p.logoutViaMenu(ctx)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return out, err
	}
	if navErr := p.site.br.Navigate(ctx, p.site.baseURL); navErr != nil {
		return out, errors.Join(err, navErr)
	}
	return browser.ActionOutcome{Succeeded: true, StrategyUsed: browser.StrategyNone}, nil
}

func (p *InventoryPage) logoutViaMenu(ctx context.Context) (browser.ActionOutcome, error) {
	if _, err := p.OpenMenu(ctx); err != nil {
		return browser.ActionOutcome{}, err
	}
	return p.site.exec.PerformClick(ctx, p.site.cat.Inventory.Logout)
}

// ItemName возвращает пустую строку для индекса вне каталога.
func (p *InventoryPage) ItemName(ctx context.Context, i int) (string, error) {
	return p.itemText(ctx, p.site.cat.Inventory.ItemNames, i)
}

func (p *InventoryPage) ItemPrice(ctx context.Context, i int) (string, error) {
	return p.itemText(ctx, p.site.cat.Inventory.ItemPrices, i)
}

func (p *InventoryPage) itemText(ctx context.Context, loc browser.Locator, i int) (string, error) {
	if i < 0 {
		return "", nil
	}
	text, err := p.site.text(ctx, loc.Nth(i))
	if errors.Is(err, browser.ErrElementNotFound) {
		return "", nil
	}
	return text, err
}

// PageTitle - текст заголовка страницы, при его отсутствии заголовок вкладки.
func (p *InventoryPage) PageTitle(ctx context.Context) (string, error) {
	text, err := p.site.text(ctx, p.site.cat.Inventory.Title)
	if errors.Is(err, browser.ErrElementNotFound) {
		return p.site.br.Title(ctx)
	}
	return text, err
}

// IsLoggedIn: открыт каталог и видна ссылка на корзину.
func (p *InventoryPage) IsLoggedIn(ctx context.Context) (bool, error) {
	ok, err := p.IsDisplayed(ctx)
	if err != nil || !ok {
		return false, err
	}
	return p.site.visible(ctx, p.site.cat.Inventory.CartLink)
}

func (p *InventoryPage) IsCartLinkDisplayed(ctx context.Context) (bool, error) {
	return p.site.waitVisible(ctx, p.site.cat.Inventory.CartLink)
}

func (p *InventoryPage) IsMenuButtonDisplayed(ctx context.Context) (bool, error) {
	return p.site.waitVisible(ctx, p.site.cat.Inventory.Menu)
}

func (p *InventoryPage) CurrentURL(ctx context.Context) (string, error) {
	return p.site.br.CurrentURL(ctx)
}

// OnCartPage: адрес указывает на корзину.
func (p *InventoryPage) OnCartPage(ctx context.Context) (bool, error) {
	u, err := p.CurrentURL(ctx)
	if err != nil {
		return false, err
	}
	return strings.Contains(u, "cart"), nil
}
