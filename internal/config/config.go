package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Cfg struct {
	App        App
	Browser    Browser
	Timing     Timing
	Suite      Suite
	Database   Database
	Logger     Logger
	Server     Server
	Migrations Migrations
}

type App struct {
	URL      string
	Username string
	Password string
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Enabled: без DB_HOST история прогонов не сохраняется.
func (d Database) Enabled() bool { return d.Host != "" }

// URL - адрес postgres:// с экранированными логином и паролем. Его понимают
// и драйвер GORM, и migrate.
func (d Database) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type Migrations struct {
	Path string
}

type Logger struct {
	Env   string
	Level string
	File  string
}

type Server struct {
	Host string
	Port string
}

func (s Server) Addr() string { return s.Host + ":" + s.Port }

type Browser struct {
	Name         string // chromium, firefox, webkit
	Driver       string // playwright, chromedp
	Display      string
	Headless     bool
	UserDataDir  string
	BrowsersPath string
	RemoteURL    string
	Remote       bool
}

type Timing struct {
	ActionTimeout   time.Duration
	CallTimeout     time.Duration
	NavigateTimeout time.Duration
	PollAttempts    int
	PollInterval    time.Duration
}

type Suite struct {
	Threads      int
	LocatorsFile string
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		App: App{
			URL:      env("APP_URL", "https://www.saucedemo.com/"),
			Username: env("APP_USERNAME", "standard_user"),
			Password: env("APP_PASSWORD", "secret_sauce"),
		},
		Browser: Browser{
			Name:         strings.ToLower(env("BROWSER", "chromium")),
			Driver:       strings.ToLower(env("BROWSER_DRIVER", "playwright")),
			Display:      os.Getenv("DISPLAY"),
			Headless:     envBool("PW_HEADLESS", true),
			UserDataDir:  os.Getenv("PW_USER_DATA_DIR"),
			BrowsersPath: os.Getenv("PLAYWRIGHT_BROWSERS_PATH"),
			RemoteURL:    os.Getenv("REMOTE_URL"),
			Remote:       envBool("REMOTE_ENABLED", false),
		},
		Timing: Timing{
			ActionTimeout:   envDuration("ACTION_TIMEOUT", 10*time.Second),
			CallTimeout:     envDuration("CALL_TIMEOUT", 5*time.Second),
			NavigateTimeout: envDuration("NAVIGATE_TIMEOUT", 60*time.Second),
			PollAttempts:    envInt("POLL_ATTEMPTS", 5),
			PollInterval:    envDuration("POLL_INTERVAL", time.Second),
		},
		Suite: Suite{
			Threads:      envInt("THREADS", 1),
			LocatorsFile: os.Getenv("LOCATORS_FILE"),
		},
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
		},
		Logger: Logger{
			Env:   env("ENV", "local"),
			Level: env("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
		Server: Server{
			Host: env("SERVER_HOST", "0.0.0.0"),
			Port: env("SERVER_PORT", "8080"),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RemoteEndpoint - адрес удалённого браузера, если удалённый режим включён.
func (c *Cfg) RemoteEndpoint() string {
	if c.Browser.Remote {
		return c.Browser.RemoteURL
	}
	return ""
}

func (c *Cfg) Validate() error {
	var errs []error

	switch c.Browser.Name {
	case "chromium", "chrome", "edge", "firefox", "webkit":
	default:
		errs = append(errs, fmt.Errorf("BROWSER: неизвестный браузер %q", c.Browser.Name))
	}
	switch c.Browser.Driver {
	case "playwright":
	case "chromedp":
		if c.Browser.Name == "firefox" || c.Browser.Name == "webkit" {
			errs = append(errs, fmt.Errorf("BROWSER_DRIVER=chromedp поддерживает только chromium, указан %q", c.Browser.Name))
		}
	default:
		errs = append(errs, fmt.Errorf("BROWSER_DRIVER: неизвестный драйвер %q", c.Browser.Driver))
	}
	if c.Browser.Remote && c.Browser.RemoteURL == "" {
		errs = append(errs, errors.New("REMOTE_ENABLED без REMOTE_URL"))
	}

	for name, d := range map[string]time.Duration{
		"ACTION_TIMEOUT":   c.Timing.ActionTimeout,
		"CALL_TIMEOUT":     c.Timing.CallTimeout,
		"NAVIGATE_TIMEOUT": c.Timing.NavigateTimeout,
		"POLL_INTERVAL":    c.Timing.PollInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s должен быть положительным, получено %v", name, d))
		}
	}
	if c.Timing.PollAttempts < 1 {
		errs = append(errs, fmt.Errorf("POLL_ATTEMPTS должен быть >= 1, получено %d", c.Timing.PollAttempts))
	}
	if c.Suite.Threads < 1 {
		errs = append(errs, fmt.Errorf("THREADS должен быть >= 1, получено %d", c.Suite.Threads))
	}
	if c.App.URL == "" {
		errs = append(errs, errors.New("APP_URL пуст"))
	}

	return errors.Join(errs...)
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envBool(key string, defaultValue bool) bool {
	v := strings.ToLower(os.Getenv(key))
	switch v {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}

// envDuration понимает "750ms", "10s" и голое число секунд.
func envDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
