package cli

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"storefrontE2E/internal/browser"
	"storefrontE2E/internal/config"
)

// BrowserConfig переносит настройки окружения в конфиг сессии.
func BrowserConfig(cfg *config.Cfg) browser.Config {
	return browser.Config{
		Engine:          cfg.Browser.Name,
		Headless:        cfg.Browser.Headless,
		UserDataDir:     cfg.Browser.UserDataDir,
		BrowsersPath:    cfg.Browser.BrowsersPath,
		Display:         cfg.Browser.Display,
		RemoteURL:       cfg.RemoteEndpoint(),
		NavigateTimeout: cfg.Timing.NavigateTimeout,
		CallTimeout:     cfg.Timing.CallTimeout,
	}
}

// NewFactory выдаёт свежую сессию выбранного драйвера на каждый вызов.
// Параллельные сессии с профилем получают каждая свой подкаталог.
func NewFactory(cfg *config.Cfg) browser.Factory {
	base := BrowserConfig(cfg)
	shared := cfg.Suite.Threads > 1 && base.UserDataDir != ""
	var seq atomic.Int64

	return func() browser.Browser {
		bc := base
		if shared {
			bc.UserDataDir = filepath.Join(base.UserDataDir, fmt.Sprintf("session-%d", seq.Add(1)))
		}
		if cfg.Browser.Driver == "chromedp" {
			return browser.NewCDP(bc)
		}
		return browser.New(bc)
	}
}
