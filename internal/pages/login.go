package pages

import (
	"context"
	"fmt"

	"storefrontE2E/internal/browser"
)

type LoginPage struct {
	site *Site
}

// Open открывает стартовую страницу и ждёт логотип.
func (p *LoginPage) Open(ctx context.Context) error {
	if err := p.site.br.Navigate(ctx, p.site.baseURL); err != nil {
		return err
	}
	ok, err := p.site.waitVisible(ctx, p.site.cat.Login.Logo)
	if err != nil {
		return fmt.Errorf("ожидание страницы входа: %w", err)
	}
	if !ok {
		return fmt.Errorf("страница входа не отобразилась: %w", browser.ErrConvergenceTimeout)
	}
	return nil
}

func (p *LoginPage) EnterUsername(ctx context.Context, username string) error {
	return p.site.br.Fill(ctx, p.site.cat.Login.Username, username)
}

func (p *LoginPage) EnterPassword(ctx context.Context, password string) error {
	return p.site.br.Fill(ctx, p.site.cat.Login.Password, password)
}

func (p *LoginPage) Submit(ctx context.Context) (browser.ActionOutcome, error) {
	return p.site.exec.PerformClick(ctx, p.site.cat.Login.Submit)
}

func (p *LoginPage) Login(ctx context.Context, username, password string) (browser.ActionOutcome, error) {
	if err := p.EnterUsername(ctx, username); err != nil {
		return browser.ActionOutcome{}, err
	}
	if err := p.EnterPassword(ctx, password); err != nil {
		return browser.ActionOutcome{}, err
	}
	return p.Submit(ctx)
}

// IsDisplayed: логотип и кнопка входа на месте.
func (p *LoginPage) IsDisplayed(ctx context.Context) (bool, error) {
	ok, err := p.site.waitVisible(ctx, p.site.cat.Login.Logo)
	if err != nil || !ok {
		return false, err
	}
	return p.site.visible(ctx, p.site.cat.Login.Submit)
}

func (p *LoginPage) IsErrorDisplayed(ctx context.Context) (bool, error) {
	return p.site.waitVisible(ctx, p.site.cat.Login.Error)
}

func (p *LoginPage) ErrorMessage(ctx context.Context) (string, error) {
	return p.site.text(ctx, p.site.cat.Login.Error)
}

func (p *LoginPage) IsUsernameFieldDisplayed(ctx context.Context) (bool, error) {
	return p.site.visible(ctx, p.site.cat.Login.Username)
}

func (p *LoginPage) IsPasswordFieldDisplayed(ctx context.Context) (bool, error) {
	return p.site.visible(ctx, p.site.cat.Login.Password)
}

// Title - заголовок вкладки.
func (p *LoginPage) Title(ctx context.Context) (string, error) {
	return p.site.br.Title(ctx)
}

func (p *LoginPage) CurrentURL(ctx context.Context) (string, error) {
	return p.site.br.CurrentURL(ctx)
}
