package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_URL", "BROWSER", "BROWSER_DRIVER", "ACTION_TIMEOUT", "POLL_ATTEMPTS", "THREADS", "DB_HOST", "REMOTE_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.saucedemo.com/", cfg.App.URL)
	assert.Equal(t, "chromium", cfg.Browser.Name)
	assert.Equal(t, "playwright", cfg.Browser.Driver)
	assert.Equal(t, 10*time.Second, cfg.Timing.ActionTimeout)
	assert.Equal(t, 5, cfg.Timing.PollAttempts)
	assert.Equal(t, time.Second, cfg.Timing.PollInterval)
	assert.Equal(t, 1, cfg.Suite.Threads)
	assert.False(t, cfg.Database.Enabled())
	assert.Empty(t, cfg.RemoteEndpoint())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BROWSER", "Firefox")
	t.Setenv("BROWSER_DRIVER", "playwright")
	t.Setenv("ACTION_TIMEOUT", "750ms")
	t.Setenv("POLL_INTERVAL", "2")
	t.Setenv("THREADS", "4")
	t.Setenv("PW_HEADLESS", "false")
	t.Setenv("REMOTE_ENABLED", "true")
	t.Setenv("REMOTE_URL", "ws://grid:3000/")
	t.Setenv("DB_HOST", "localhost")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "firefox", cfg.Browser.Name)
	assert.Equal(t, 750*time.Millisecond, cfg.Timing.ActionTimeout)
	assert.Equal(t, 2*time.Second, cfg.Timing.PollInterval)
	assert.Equal(t, 4, cfg.Suite.Threads)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "ws://grid:3000/", cfg.RemoteEndpoint())
	assert.True(t, cfg.Database.Enabled())
}

func TestValidate(t *testing.T) {
	valid := func() *Cfg {
		return &Cfg{
			App:     App{URL: "https://shop.test/"},
			Browser: Browser{Name: "chromium", Driver: "playwright"},
			Timing: Timing{
				ActionTimeout:   time.Second,
				CallTimeout:     time.Second,
				NavigateTimeout: time.Second,
				PollAttempts:    1,
				PollInterval:    time.Millisecond,
			},
			Suite: Suite{Threads: 1},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Cfg)
		want   string
	}{
		{"unknown browser", func(c *Cfg) { c.Browser.Name = "opera" }, "BROWSER"},
		{"unknown driver", func(c *Cfg) { c.Browser.Driver = "selenium" }, "BROWSER_DRIVER"},
		{"cdp with firefox", func(c *Cfg) { c.Browser.Driver = "chromedp"; c.Browser.Name = "firefox" }, "chromedp"},
		{"zero timeout", func(c *Cfg) { c.Timing.CallTimeout = 0 }, "CALL_TIMEOUT"},
		{"negative interval", func(c *Cfg) { c.Timing.PollInterval = -time.Second }, "POLL_INTERVAL"},
		{"no attempts", func(c *Cfg) { c.Timing.PollAttempts = 0 }, "POLL_ATTEMPTS"},
		{"no threads", func(c *Cfg) { c.Suite.Threads = 0 }, "THREADS"},
		{"remote without url", func(c *Cfg) { c.Browser.Remote = true }, "REMOTE_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatabase_URL(t *testing.T) {
	tests := []struct {
		name string
		db   Database
		want string
	}{
		{
			name: "plain",
			db:   Database{Host: "db", Port: "5433", Name: "e2e", User: "qa", Password: "pw"},
			want: "postgres://qa:pw@db:5433/e2e?sslmode=disable",
		},
		{
			name: "reserved characters",
			db:   Database{Host: "db", Port: "5432", Name: "e2e", User: "qa", Password: "p@ss/word"},
			want: "postgres://qa:p%40ss%2Fword@db:5432/e2e?sslmode=disable",
		},
		{
			name: "space and quote",
			db:   Database{Host: "db", Port: "5432", Name: "e2e", User: "qa", Password: "it's a secret"},
			want: "postgres://qa:it%27s%20a%20secret@db:5432/e2e?sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.db.URL()
			assert.Equal(t, tt.want, got)

			u, err := url.Parse(got)
			require.NoError(t, err)
			pass, _ := u.User.Password()
			assert.Equal(t, tt.db.Password, pass)
		})
	}
}
