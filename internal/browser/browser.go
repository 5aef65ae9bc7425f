package browser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
)

func New(cfg Config) *PlaywrightBrowser {
	return &PlaywrightBrowser{
		cfg: cfg.withDefaults(),
	}
}

// getPage безопасно возвращает текущую страницу с read lock
func (b *PlaywrightBrowser) getPage() playwright.Page {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.page
}

// setPage безопасно устанавливает страницу с write lock
func (b *PlaywrightBrowser) setPage(page playwright.Page) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = page
}

func (b *PlaywrightBrowser) getBrowserArgs() []string {
	if b.cfg.Engine != "chromium" {
		return nil
	}
	return []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
		"--window-size=1920,1080",
	}
}

func (b *PlaywrightBrowser) getEnvMap() map[string]string {
	if b.cfg.Display != "" {
		return map[string]string{
			"DISPLAY": b.cfg.Display,
		}
	}
	return nil
}

func (b *PlaywrightBrowser) browserType(pw *playwright.Playwright) (playwright.BrowserType, error) {
	switch strings.ToLower(b.cfg.Engine) {
	case "chromium", "chrome", "edge":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("неподдерживаемый браузер: %s", b.cfg.Engine)
	}
}

func (b *PlaywrightBrowser) launchPersistent(bt playwright.BrowserType) error {
	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(b.cfg.Headless),
		Args:     b.getBrowserArgs(),
	}

	if env := b.getEnvMap(); env != nil {
		opts.Env = env
	}

	browserContext, err := bt.LaunchPersistentContext(b.cfg.UserDataDir, opts)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.context = browserContext
	b.mu.Unlock()

	pages := browserContext.Pages()
	var page playwright.Page
	if len(pages) == 0 {
		page, err = browserContext.NewPage()
		if err != nil {
			return err
		}
	} else {
		page = pages[0]
	}

	b.setPage(page)
	page.SetDefaultTimeout(float64(b.cfg.CallTimeout.Milliseconds()))
	return nil
}

func (b *PlaywrightBrowser) launchStandard(bt playwright.BrowserType) error {
	var (
		browser playwright.Browser
		err     error
	)

	if b.cfg.RemoteURL != "" {
		browser, err = bt.Connect(b.cfg.RemoteURL)
	} else {
		opts := playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(b.cfg.Headless),
			Args:     b.getBrowserArgs(),
		}
		if env := b.getEnvMap(); env != nil {
			opts.Env = env
		}
		browser, err = bt.Launch(opts)
	}
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.browser = browser
	b.mu.Unlock()

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		return err
	}

	b.setPage(page)
	page.SetDefaultTimeout(float64(b.cfg.CallTimeout.Milliseconds()))
	return nil
}

func (b *PlaywrightBrowser) Launch(ctx context.Context) error {
	// Драйвер Playwright ищет браузеры только через окружение.
	if b.cfg.BrowsersPath != "" && os.Getenv("PLAYWRIGHT_BROWSERS_PATH") != b.cfg.BrowsersPath {
		if err := os.Setenv("PLAYWRIGHT_BROWSERS_PATH", b.cfg.BrowsersPath); err != nil {
			return err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("запуск playwright: %w", err)
	}
	b.pw = pw

	bt, err := b.browserType(pw)
	if err != nil {
		return err
	}

	if b.cfg.UserDataDir != "" && b.cfg.RemoteURL == "" {
		return b.launchPersistent(bt)
	}

	return b.launchStandard(bt)
}

func (b *PlaywrightBrowser) Navigate(ctx context.Context, url string) error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	// Создаем context с timeout для navigate операции
	navCtx, cancel := context.WithTimeout(ctx, b.cfg.NavigateTimeout)
	defer cancel()

	// Channel для получения результата
	errChan := make(chan error, 1)
	go func() {
		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(b.cfg.NavigateTimeout.Milliseconds())),
		})
		errChan <- err
	}()

	// Ждем результат или timeout
	select {
	case <-navCtx.Done():
		if err := ctx.Err(); err != nil {
			return err
		}
		return fmt.Errorf("navigate timeout after %v", b.cfg.NavigateTimeout)
	case err := <-errChan:
		return err
	}
}

func (b *PlaywrightBrowser) Fill(ctx context.Context, loc Locator, value string) error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := page.Locator(loc.PlaywrightQuery()).Nth(loc.Index).Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(float64(b.cfg.CallTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("ввод в %s: %w", loc, classifyPlaywrightError(err, nil))
	}
	return nil
}

func (b *PlaywrightBrowser) CurrentURL(ctx context.Context) (string, error) {
	page := b.getPage()
	if page == nil {
		return "", fmt.Errorf("браузер не запущен")
	}
	return page.URL(), nil
}

func (b *PlaywrightBrowser) Title(ctx context.Context) (string, error) {
	page := b.getPage()
	if page == nil {
		return "", fmt.Errorf("браузер не запущен")
	}
	return page.Title()
}

func (b *PlaywrightBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			return err
		}
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
	}
	if b.pw != nil {
		return b.pw.Stop()
	}
	return nil
}
