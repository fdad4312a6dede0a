package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trackercrm/tracker-api/internal/api"
	"github.com/trackercrm/tracker-api/internal/core/ports"
	"github.com/trackercrm/tracker-api/internal/infrastructure/config"
	mongodb "github.com/trackercrm/tracker-api/internal/infrastructure/db/mongo"
	redisdb "github.com/trackercrm/tracker-api/internal/infrastructure/db/redis"
	"github.com/trackercrm/tracker-api/internal/infrastructure/mailer"
	"github.com/trackercrm/tracker-api/internal/infrastructure/queue"
	"github.com/trackercrm/tracker-api/pkg/logger"
)

// @title        Tracker CRM API
// @version      1.0
// @description  Session-authenticated sales CRM: agents, businesses, incidents, activities.
// @BasePath     /
func main() {
	bootLog := logger.Init(logger.Options{Level: os.Getenv("LOG_LEVEL"), Pretty: os.Getenv("ENV") != "production"})
	cfg := config.Load(bootLog)
	log := logger.Get().With().Str("service", "tracker-api").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	throttle := redisdb.NewThrottle(rdb, cfg.Auth.ThrottleWindow, cfg.Auth.ThrottleMaxAttempts)

	// --- Outbound mail ---
	var sender ports.EmailSender
	if err := mailer.ValidateConfig(cfg.SMTP); err != nil {
		log.Warn().Err(err).Msg("smtp not configured, falling back to console delivery")
		sender = mailer.NewConsoleSender(log)
	} else {
		sender = mailer.NewSMTPSender(cfg.SMTP)
	}
	dispatcher := queue.NewMailDispatcher(0, sender, log)
	dispatcher.Start(ctx)

	// --- Background expiry sweeper ---
	sessionRepo := mongodb.NewSessionRepository(db)
	resetRepo := mongodb.NewResetTokenRepository(client, db)
	queue.NewSweeper(sessionRepo, resetRepo, 0, log).Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.RouterParams{
		Client:   client,
		DB:       db,
		Redis:    rdb,
		Mail:     dispatcher,
		Throttle: throttle,
		Config:   cfg,
		Log:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("tracker-api started")

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	cancel()
	log.Info().Msg("stopped")
}
