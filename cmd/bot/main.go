package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hwbot/internal/app"
	"hwbot/internal/config"
	logx "hwbot/pkg/logx"
)

func main() {
	var cfgPath, envPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config yaml/json (optional)")
	flag.StringVar(&envPath, "env", ".env", "path to .env file with credentials (optional)")
	flag.Parse()

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := config.Load(config.LoadOptions{Path: cfgPath, Required: explicit, EnvFile: envPath})
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: *cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: *cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	})
	code := run(cfg, logs, log)
	_ = logs.Close()
	os.Exit(code)
}

func run(cfg *config.Config, logs *logx.Service, root logx.Logger) int {
	log := root.With(logx.String("comp", "main"))
	if err := cfg.Validate(); err != nil {
		var mv *config.MissingValueError
		if errors.As(err, &mv) {
			log.Critical("required environment variable is missing; stopping", logx.String("name", mv.Name))
		} else {
			log.Critical("invalid configuration; stopping", logx.Err(err))
		}
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg, logs, root)
	if err != nil {
		log.Critical("startup failed", logx.Err(err))
		return 1
	}
	if err := a.Run(ctx); err != nil {
		log.Error("bot stopped with error", logx.Err(err))
		return 1
	}
	return 0
}
