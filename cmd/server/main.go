package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wishsender/config"
	"wishsender/internal/birthday"
	"wishsender/internal/delivery"
	"wishsender/internal/httpserver"
	"wishsender/internal/repository"
	"wishsender/internal/runlock"
	"wishsender/internal/scheduler"
	"wishsender/internal/wisher"
	"wishsender/pkg/db"
	"wishsender/pkg/logger"
	"wishsender/pkg/mq"
	redisclient "wishsender/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting wishsender...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("timezone", cfg.Scheduler.Timezone),
		zap.String("channel", cfg.Scheduler.Channel),
	)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatal("Invalid scheduler timezone", zap.String("timezone", cfg.Scheduler.Timezone), zap.Error(err))
	}

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.EnsureSchema(schemaCtx, dbConn, cfg.Scheduler.Timezone); err != nil {
		schemaCancel()
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}
	schemaCancel()

	// Delivery channel
	var channel delivery.Channel
	var publisher *mq.Publisher
	switch cfg.Scheduler.Channel {
	case "mq":
		publisher, err = mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer publisher.Close()
		channel = delivery.NewMQChannel(publisher)
	default:
		channel = delivery.NewSMTPChannel(cfg.SMTP)
	}
	log.Info("Delivery channel ready", zap.String("channel", channel.Name()))

	// Wish renderer
	var w wisher.Wisher = wisher.Static{}
	if cfg.Wisher.APIKey != "" {
		w = wisher.NewGroqClient(
			cfg.Wisher.BaseURL,
			cfg.Wisher.APIKey,
			cfg.Wisher.Model,
			time.Duration(cfg.Wisher.TimeoutSeconds)*time.Second,
		)
		log.Info("Wish generator configured", zap.String("model", cfg.Wisher.Model))
	} else {
		log.Info("No wish generator configured, using static template")
	}

	// Core pipeline
	contactRepo := repository.NewContactRepository(dbConn)
	sendLogRepo := repository.NewSendLogRepository(dbConn)
	ledger := birthday.NewSendLedger(sendLogRepo, loc, cfg.Scheduler.RetryFailed)
	dispatcher := birthday.NewDispatcher(w, channel, ledger, 30*time.Second, time.Now, log)
	checkRun := birthday.NewCheckRun(contactRepo, ledger, dispatcher, cfg.Scheduler.Concurrency, log)

	// Cross-instance run guard (optional)
	var guard scheduler.Guard
	if cfg.Redis.Addr != "" {
		rdb := redisclient.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		guard = runlock.NewGuard(rdb, 5*time.Minute, log)
	}

	// Scheduler
	sched := scheduler.New(checkRun, guard, loc, log)
	if cfg.Scheduler.Enabled {
		if err := sched.Start(cfg.Scheduler.RunAt); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	} else {
		log.Info("Scheduler disabled, manual trigger only")
	}

	// HTTP server
	router := httpserver.NewRouter(sched, sendLogRepo, loc, dbConn, log)
	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("wishsender is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down wishsender gracefully...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("wishsender shutdown complete")
}
