package browser

import (
	"context"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

type Config struct {
	// Engine: chromium, firefox или webkit. CDP-драйвер поддерживает только chromium.
	Engine       string
	Headless     bool
	UserDataDir  string
	BrowsersPath string
	Display      string
	// RemoteURL - адрес удалённого браузера (ws-эндпоинт Playwright или CDP).
	RemoteURL string

	Timeout         time.Duration
	NavigateTimeout time.Duration
	CallTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Engine == "" {
		c.Engine = "chromium"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.NavigateTimeout == 0 {
		c.NavigateTimeout = 60 * time.Second // Navigate обычно дольше
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = 5 * time.Second
	}
	return c
}

// Factory создаёт новую, ещё не запущенную сессию.
type Factory func() Browser

type PlaywrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	cfg     Config
	mu      sync.RWMutex
}

var (
	_ Browser = (*PlaywrightBrowser)(nil)
	_ Browser = (*CDPBrowser)(nil)
)

type CDPBrowser struct {
	cfg         Config
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	mu          sync.RWMutex
}
