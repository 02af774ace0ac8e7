package app

import (
	"context"
	"errors"
	"fmt"

	"hwbot/internal/config"
	"hwbot/internal/notifier"
	"hwbot/internal/poller"
	"hwbot/internal/practicum"
	"hwbot/internal/schedule"
	"hwbot/internal/sdnotify"
	kit "hwbot/internal/transport"
	telegram "hwbot/internal/transport/telegram/adapter"
	logx "hwbot/pkg/logx"
)

type App struct {
	cfg *config.Config

	log  logx.Logger
	logs *logx.Service

	adapter *telegram.Adapter
	client  *practicum.Client
	notif   *notifier.Notifier
	sd      *sdnotify.Notifier
	loop    *poller.Loop
}

// New wires the bot from a validated config. cfg must not be modified
// afterwards. Components log through root with their own "comp" field.
func New(cfg *config.Config, logs *logx.Service, root logx.Logger) (*App, error) {
	log := root.With(logx.String("comp", "app"))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	chatID, _ := cfg.ChatID()
	target := kit.ChatTarget{ChatID: chatID, ThreadID: cfg.Telegram.ThreadID}

	sched, spec, err := schedule.Parse(cfg.Poll.Interval)
	if err != nil {
		return nil, fmt.Errorf("poll.interval: %w", err)
	}

	ad, err := telegram.New(telegram.Config{
		Token:   cfg.Telegram.Token,
		URL:     cfg.Telegram.APIURL,
		Timeout: cfg.TelegramTimeout(),
	}, root.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}
	logs.SetSender(ad, logx.Target{ChatID: target.ChatID, ThreadID: target.ThreadID})

	client, err := practicum.New(practicum.Config{
		Endpoint: cfg.Practicum.Endpoint,
		Token:    cfg.Practicum.Token,
		Timeout:  cfg.PracticumTimeout(),
	}, root.With(logx.String("comp", "practicum")))
	if err != nil {
		return nil, err
	}

	notif := notifier.New(notifier.Config{
		Target:      target,
		RatePerSec:  cfg.Notifier.RatePerSec,
		SendTimeout: cfg.SendTimeout(),
	}, ad, root.With(logx.String("comp", "notifier")))

	sd := sdnotify.New(root.With(logx.String("comp", "systemd")))

	loop := poller.New(client, notif, sched, root.With(logx.String("comp", "poller")),
		poller.WithSleep(sd.Sleep),
		poller.WithHeartbeat(sd.Watchdog),
	)

	log.Info("bot configured",
		logx.String("endpoint", cfg.Practicum.Endpoint),
		logx.Int64("chat_id", target.ChatID),
		logx.String("interval", cfg.Poll.Interval),
		logx.String("interval_kind", spec.Kind.String()),
	)

	return &App{
		cfg:     cfg,
		log:     log,
		logs:    logs,
		adapter: ad,
		client:  client,
		notif:   notif,
		sd:      sd,
		loop:    loop,
	}, nil
}

// Run blocks until ctx is canceled. It only returns nil on a clean stop.
func (a *App) Run(ctx context.Context) error {
	a.sd.Ready()
	defer a.sd.Stopping()

	err := a.loop.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		a.log.Info("stopped", logx.Int64("cursor", a.loop.Cursor()))
		return nil
	}
	return err
}
