// Package cli - команды storefront-e2e: прогон сценариев, история, API отчётов.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefrontE2E/internal/browser"
	"storefrontE2E/internal/cli/commands"
	"storefrontE2E/internal/cli/ui"
	"storefrontE2E/internal/config"
	"storefrontE2E/internal/database"
	"storefrontE2E/internal/logger"
	"storefrontE2E/internal/migrations"
	"storefrontE2E/internal/pages"
	"storefrontE2E/internal/sanitizer"
	"storefrontE2E/internal/scenario"
	"storefrontE2E/internal/server"
)

// ErrNoHistory - команда требует БД, а DB_HOST не задан.
var ErrNoHistory = errors.New("история прогонов отключена: задайте DB_HOST")

type CLI struct {
	cfg     *config.Cfg
	log     *logger.Zap
	in      io.Reader
	out     io.Writer
	factory func(cfg *config.Cfg) browser.Factory
}

type Option func(*CLI)

// WithIO подменяет stdin/stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *CLI) {
		c.in = in
		c.out = out
	}
}

// WithFactory подменяет источник браузерных сессий.
func WithFactory(f browser.Factory) Option {
	return func(c *CLI) {
		c.factory = func(*config.Cfg) browser.Factory { return f }
	}
}

func New(cfg *config.Cfg, log *logger.Zap, opts ...Option) *CLI {
	c := &CLI{
		cfg:     cfg,
		log:     log,
		in:      os.Stdin,
		out:     os.Stdout,
		factory: NewFactory,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute выполняет команду из os.Args (или SetArgs в тестах) до отмены ctx.
func (c *CLI) Execute(ctx context.Context, args ...string) error {
	root := c.Root()
	if args != nil {
		root.SetArgs(args)
	}
	return root.ExecuteContext(ctx)
}

func (c *CLI) Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront-e2e",
		Short:         "Регрессия демо-магазина в реальном браузере",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.out)

	root.AddCommand(
		c.runCmd(),
		c.listCmd(),
		c.runsCmd(),
		c.showCmd(),
		c.logsCmd(),
		c.openCmd(),
		c.serveCmd(),
		c.migrateCmd(),
	)
	return root
}

func (c *CLI) runCmd() *cobra.Command {
	var (
		tags    []string
		threads int
	)
	cmd := &cobra.Command{
		Use:   "run [сценарий...]",
		Short: "Прогнать сценарии (все, по именам или по тегам)",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := scenario.Select(scenario.Builtin(), args, tags)
			if err != nil {
				return err
			}

			cfg := *c.cfg
			if threads > 0 {
				cfg.Suite.Threads = threads
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			catalog, err := pages.LoadCatalog(cfg.Suite.LocatorsFile)
			if err != nil {
				return err
			}

			rec := scenario.Recorder(scenario.NopRecorder{})
			if cfg.Database.Enabled() {
				repo, closeDB, err := c.openHistory(&cfg)
				if err != nil {
					return err
				}
				defer closeDB()
				rec = scenario.NewDBRecorder(repo)
			}

			runner := scenario.NewRunner(c.factory(&cfg), scenario.RunnerConfig{
				BaseURL: cfg.App.URL,
				Threads: cfg.Suite.Threads,
				Creds: scenario.Credentials{
					Username: cfg.App.Username,
					Password: cfg.App.Password,
				},
				Executor: browser.ExecutorConfig{
					ActionTimeout: cfg.Timing.ActionTimeout,
					PollAttempts:  cfg.Timing.PollAttempts,
					PollInterval:  cfg.Timing.PollInterval,
				},
				Catalog: catalog,
				Browser: cfg.Browser.Name,
				Driver:  cfg.Browser.Driver,
			}, rec, c.log.Named("runner"), sanitizer.New(cfg.App.Password, cfg.Database.Password))

			ui.PrintBanner(cmd.OutOrStdout(), ui.Banner{
				BaseURL:   cfg.App.URL,
				Browser:   cfg.Browser.Name,
				Driver:    cfg.Browser.Driver,
				Headless:  cfg.Browser.Headless,
				Threads:   cfg.Suite.Threads,
				Scenarios: len(selected),
				History:   cfg.Database.Enabled(),
			})
			return commands.NewRunHandler(runner, cmd.OutOrStdout()).Run(cmd.Context(), selected)
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "отобрать сценарии по тегу (можно несколько)")
	cmd.Flags().IntVar(&threads, "threads", 0, "число параллельных сессий (по умолчанию THREADS)")
	return cmd
}

func (c *CLI) listCmd() *cobra.Command {
	var (
		tags    []string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Показать встроенные сценарии",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, err := scenario.Select(scenario.Builtin(), nil, tags)
			if err != nil {
				return err
			}
			commands.ListScenarios(cmd.OutOrStdout(), selected, verbose)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "отобрать сценарии по тегу")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "показать шаги")
	return cmd
}

func (c *CLI) runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Последние прогоны",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeDB, err := c.openHistory(c.cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			return commands.NewRunsHandler(repo, c.log.Logger, cmd.OutOrStdout()).List(cmd.Context(), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "сколько прогонов показать")
	return cmd
}

func (c *CLI) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Детали прогона",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := c.openHistory(c.cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			return commands.NewShowHandler(repo, c.log.Logger, cmd.OutOrStdout()).Show(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) logsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs <id>",
		Short: "Журнал шагов прогона",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := c.openHistory(c.cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			return commands.NewLogsHandler(repo, c.log.Logger, cmd.OutOrStdout()).Show(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [url]",
		Short: "Открыть страницу в браузере для ручной проверки локаторов",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := c.cfg.App.URL
			if len(args) == 1 {
				url = args[0]
			}
			input := newUserInputProvider(cmd.InOrStdin())
			return commands.NewBrowserHandler(c.factory(c.cfg), input.ReadLine, cmd.OutOrStdout()).Open(cmd.Context(), url)
		},
	}
}

func (c *CLI) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "HTTP API истории прогонов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeDB, err := c.openHistory(c.cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			return server.New(c.cfg, c.log.Named("server"), repo).Run(cmd.Context())
		},
	}
}

func (c *CLI) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции схемы истории",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.cfg.Database.Enabled() {
				return ErrNoHistory
			}
			if err := migrations.Run(c.cfg, c.log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.ColorGreen+ui.IconCheckmark+" Схема актуальна"+ui.ColorReset)
			return nil
		},
	}
}

// openHistory применяет миграции и открывает репозиторий прогонов.
func (c *CLI) openHistory(cfg *config.Cfg) (*database.RunRepository, func(), error) {
	if !cfg.Database.Enabled() {
		return nil, nil, ErrNoHistory
	}
	if err := migrations.Run(cfg, c.log); err != nil {
		return nil, nil, fmt.Errorf("миграции: %w", err)
	}
	db, err := database.New(cfg, c.log)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		db.Close(c.log)
		c.log.Debug("Соединение с БД закрыто", zap.String("host", cfg.Database.Host))
	}
	return database.NewRunRepository(db.DB), closeDB, nil
}
