package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"task-dashboard/internal/auth"
	"task-dashboard/internal/backend"
	"task-dashboard/internal/bot"
	"task-dashboard/internal/config"
	"task-dashboard/internal/events"
	"task-dashboard/internal/localstore"
	"task-dashboard/internal/logging"
	"task-dashboard/internal/repository"
	"task-dashboard/internal/service"
	"task-dashboard/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	kv, err := localstore.Open(cfg.LocalStoreURL, logger)
	if err != nil {
		logger.Fatal("open local store", zap.Error(err))
	}
	defer kv.Close()

	var mailer auth.Mailer
	if cfg.SendgridAPIKey != "" {
		mailer = auth.NewSendgridMailer(cfg.SendgridAPIKey, cfg.MailFrom)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, password reset mails are only logged")
		mailer = auth.NewLogMailer(logger)
	}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL)
	provider := auth.NewProvider(repository.NewIdentityRepository(db), tokens, mailer, logger)

	bus := events.NewBus(logger)
	if cfg.NatsURL != "" {
		conn, err := events.ConnectNATS(cfg.NatsURL, logger)
		if err != nil {
			logger.Fatal("connect nats", zap.Error(err))
		}
		defer conn.Close()
		go events.NewForwarder(conn, cfg.NatsSubject, logger).Run(ctx, bus)
	}

	live := backend.NewLive(db)
	factory := func(namespace string) *store.Store {
		return store.New(store.Deps{
			Auth:  provider,
			Live:  live,
			Local: localstore.NewLocal(kv, namespace),
			Bus:   bus,
			Log:   logger.With(zap.String("namespace", namespace)),
		})
	}

	telegramBot, err := bot.New(cfg.TelegramToken, factory, service.NewReportService(time.Local), logger)
	if err != nil {
		logger.Fatal("create bot", zap.Error(err))
	}
	defer telegramBot.Close()

	sendReports := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("send reports", zap.Error(err))
		}
	}

	scheduler := service.NewSchedulerService(time.Local, logger)
	var reportJob cron.EntryID
	if cfg.ReportTime != "" {
		reportJob, err = scheduler.ScheduleDaily(cfg.ReportTime, sendReports)
	} else {
		reportJob, err = scheduler.ScheduleInterval(cfg.ReportInterval, sendReports)
	}
	if err != nil {
		logger.Fatal("schedule reports", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.Info("reports scheduled", zap.Time("next", scheduler.Next(reportJob)))

	logger.Info("task dashboard bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped with error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
