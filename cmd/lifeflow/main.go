package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"lifeflow/internal/bot"
	"lifeflow/internal/config"
	"lifeflow/internal/logger"
	"lifeflow/internal/notify"
	"lifeflow/internal/repository"
	"lifeflow/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("lifeflow stopped with error", zap.Error(err))
		logger.Sync(log)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	docs := repository.NewDocumentRepository(db)

	store := service.NewStore(docs, log)
	store.Load(ctx)

	clock := service.SystemClock{Location: cfg.Location}

	var (
		alerts      service.Notifier
		permissions service.PermissionRequester
		telegramBot *bot.Bot
	)
	if cfg.TelegramToken != "" {
		if err := tgbotapi.SetLogger(logger.Std(log.Named("tgbotapi"), zapcore.WarnLevel)); err != nil {
			return fmt.Errorf("telegram logger: %w", err)
		}
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		log.Info("authorized on telegram", zap.String("account", api.Self.UserName))

		tg := notify.NewTelegram(ctx, api, docs, clock, cfg.TelegramChatID, log)
		alerts, permissions = tg, tg
		planner := service.NewPlannerService(store, tg, tg, log)
		telegramBot = bot.New(api, store, planner, tg, clock, log)
	} else {
		console := notify.NewConsole(os.Stdout)
		alerts, permissions = console, console
		log.Info("no TELEGRAM_TOKEN set, reminders go to stdout")
	}
	if cfg.AudioCue {
		alerts = notify.WithCue(alerts, notify.Bell{Out: os.Stdout})
	}

	mode := service.MatchExact
	if cfg.ReminderMatch == config.MatchWindow {
		mode = service.MatchWindow
	}
	engine := service.NewReminderEngine(store, alerts, clock,
		service.WithMatchMode(mode, cfg.PollInterval),
		service.WithLedgerCapacity(cfg.LedgerCapacity),
		service.WithEngineLogger(log),
	)

	permission := permissions.RequestPermission(ctx)
	log.Info("alert permission", zap.String("permission", string(permission)))

	poller := service.NewPoller(service.NewSchedulerService(cfg.Location), engine, cfg.PollInterval, log)
	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	log.Info("lifeflow started",
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.String("reminder_match", cfg.ReminderMatch),
		zap.String("timezone", cfg.Location.String()),
	)

	g, gctx := errgroup.WithContext(ctx)
	if telegramBot != nil {
		g.Go(func() error {
			return telegramBot.Start(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		poller.Stop()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
