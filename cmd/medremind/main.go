package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"medremind/internal/adherence"
	"medremind/internal/alarm"
	"medremind/internal/config"
	"medremind/internal/db"
	httpx "medremind/internal/http"
	"medremind/internal/jobs"
	"medremind/internal/logger"
	"medremind/internal/notify"
	"medremind/internal/prefs"
	"medremind/internal/reminder"
	"medremind/internal/schedule"
	"medremind/internal/symptom"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal("db migrate failed", zap.Error(err))
	}

	scheduleRepo := &schedule.Repo{DB: gdb}
	adherenceRepo := &adherence.Repo{DB: gdb}
	prefsRepo := &prefs.Repo{DB: gdb}
	symptomRepo := &symptom.Repo{DB: gdb}
	jobsRepo := &jobs.Repo{DB: gdb}

	alarms := alarm.New(log)
	scheduler := &reminder.Scheduler{Alarms: alarms, Log: log}

	// Notification delivery: Telegram when a bot token is configured,
	// log-only otherwise.
	var presenter reminder.Presenter
	var bot *tgbotapi.BotAPI
	if cfg.TelegramBotToken != "" {
		bot, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			log.Fatal("telegram init failed", zap.Error(err))
		}
		bot.Debug = false
		presenter = notify.NewTelegramPresenter(bot, prefsRepo, log)
		log.Info("telegram delivery enabled", zap.String("bot", bot.Self.UserName))
	} else {
		presenter = &notify.LogPresenter{Log: log}
		log.Info("telegram token absent, logging notifications only")
	}

	events := &reminder.Handler{
		Schedules:     scheduleRepo,
		Adherence:     adherenceRepo,
		Prefs:         prefsRepo,
		Scheduler:     scheduler,
		Jobs:          jobsRepo,
		Presenter:     presenter,
		SnoozeMinutes: cfg.SnoozeMinutes,
		GraceMinutes:  cfg.GraceMinutes,
		Log:           log,
	}

	// Alarm fires run on their own goroutine with a bounded context; an
	// event failure never blocks other schedules.
	alarms.SetHandler(func(ev reminder.Event) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := events.Handle(ctx, ev); err != nil {
				log.Error("reminder event failed",
					zap.String("kind", string(ev.Kind)),
					zap.Uint64("userID", ev.UserID),
					zap.Uint64("scheduleID", ev.ScheduleID),
					zap.Error(err),
				)
			}
		}()
	})

	resolver := &reminder.MissedDoseResolver{
		Schedules: scheduleRepo,
		Adherence: adherenceRepo,
		Scheduler: scheduler,
		Log:       log,
	}
	worker := &jobs.Worker{
		ID:       "worker-" + uuid.NewString(),
		Repo:     jobsRepo,
		Resolver: resolver,
		Log:      log,
		Poll:     time.Duration(cfg.WorkerPollMS) * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Re-arm everything before serving traffic so reminders survive restarts.
	if err := reminder.RearmAll(ctx, scheduleRepo, scheduler, log); err != nil {
		log.Fatal("boot re-arm failed", zap.Error(err))
	}

	go worker.Run(ctx)

	if bot != nil {
		listener := &notify.Listener{Bot: bot, Users: prefsRepo, Events: events, Log: log}
		go listener.Run(ctx)
	}

	router := httpx.NewRouter(cfg, httpx.Deps{
		Log:       log,
		Schedules: scheduleRepo,
		Adherence: adherenceRepo,
		Prefs:     prefsRepo,
		Symptoms:  symptomRepo,
		Scheduler: scheduler,
		Events:    events,
		Jobs:      jobsRepo,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Info("shutdown signal received")

	cancel()
	alarms.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
