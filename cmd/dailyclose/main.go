package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"daily-close/internal/api"
	"daily-close/internal/bot"
	"daily-close/internal/cleanup"
	"daily-close/internal/clock"
	"daily-close/internal/config"
	"daily-close/internal/logger"
	"daily-close/internal/notify"
	"daily-close/internal/repository"
	"daily-close/internal/service"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logCloser := logger.Init(cfg.Log)
	cleanup.Register(&cleanup.Job{Name: "log file", F: logCloser.Close})

	if err := run(ctx, cfg); err != nil {
		slog.Error("daily close stopped with error", "error", err)
		cleanup.CleanUp()
		os.Exit(1)
	}
	cleanup.CleanUp()
	slog.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config) error {
	loc, err := clock.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}
	clk := clock.New(loc)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		cleanup.Register(&cleanup.Job{Name: "database", F: sqlDB.Close})
	}

	taskRepo := repository.NewTaskRepository(db)
	dailyStatRepo := repository.NewDailyStatRepository(db)

	taskSvc := service.NewTaskService(taskRepo, clk)
	statsSvc := service.NewStatsService(taskRepo, clk)
	authSvc, err := service.NewAuthService(cfg.Auth.Email, cfg.Auth.Password)
	if err != nil {
		return err
	}

	senders := notify.Multi{notify.NewMailer(cfg.SMTP, cfg.ReminderEmail)}
	if !cfg.MailEnabled() {
		slog.Warn("smtp credentials missing; email notifications will be skipped")
	}
	if cfg.TelegramEnabled() {
		telegramBot, err := bot.New(cfg.Telegram.Token, cfg.Telegram.ChatID, taskSvc, statsSvc)
		if err != nil {
			return err
		}
		senders = append(senders, telegramBot)
		go func() {
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("bot stopped with error", "error", err)
			}
		}()
	}

	if cfg.Scheduler.Enabled {
		reminderSvc := service.NewReminderService(taskRepo, dailyStatRepo, statsSvc, senders, clk)
		scheduler := service.NewSchedulerService(loc)
		if err := scheduler.RegisterAll(service.NotificationJobs(reminderSvc)); err != nil {
			return err
		}
		scheduler.Start()
		cleanup.Register(&cleanup.Job{Name: "scheduler", F: func() error {
			scheduler.Stop()
			return nil
		}})
		slog.Info("scheduler started", "jobs", len(scheduler.Entries()), "timezone", loc.String())
	}

	server := api.New(&api.ServicesList{
		TaskService:   taskSvc,
		StatsService:  statsSvc,
		AuthService:   authSvc,
		Sessions:      api.NewSessionManager(cfg.Auth.SecretKey, 0).WithSecure(cfg.Server.SecureCookies),
		ManifestToken: cfg.Auth.ManifestToken,
	})

	slog.Info("daily close started", "addr", cfg.Addr())
	return server.Run(ctx, cfg.Addr())
}
