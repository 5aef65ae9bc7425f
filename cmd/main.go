package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefrontE2E/internal/cli"
	"storefrontE2E/internal/cli/commands"
	"storefrontE2E/internal/config"
	"storefrontE2E/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка конфигурации:", err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level, cfg.Logger.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка логгера:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = cli.New(cfg, log).Execute(ctx)
	stop()

	code := 0
	if err != nil {
		code = 1
		if !errors.Is(err, commands.ErrSuiteFailed) {
			log.Error("Команда завершилась ошибкой", zap.Error(err))
		}
	}
	_ = log.Sync()
	os.Exit(code)
}
