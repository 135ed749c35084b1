package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frota/internal/config"
	"frota/internal/events"
	"frota/internal/handler"
	"frota/internal/infra"
	"frota/internal/middleware"
	"frota/internal/router"
	"frota/internal/service"
	"frota/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Frota Reports API
// @version 1.0
// @description Relatórios da frota e horas trabalhadas a partir das exportações CSV.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mail delivery is optional: without SMTP_HOST the e-mail route answers
	// 503 and no workers are started.
	mailer := infra.NewMailer(cfg)
	var queue service.JobQueue
	if mailer.Configured() {
		queue = worker.NewDispatcher(rdb)
	}

	svcs := router.NewServices(cfg, db, queue, events.New(cfg.RabbitMQURL))

	if mailer.Configured() {
		smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.Processor{
			worker.JobHoursEmail: worker.NewEmailWorker(svcs.Reports, mailer, smtpCB, cfg.ReportStoragePath),
		})
		worker.StartDLQMonitor(ctx, worker.DLQMonitorConfig{
			RDB:   rdb,
			CB:    smtpCB,
			Queue: worker.QueueReportEmail,
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set, e-mail delivery disabled")
	}
	if cfg.RabbitMQURL == "" {
		log.Info().Msg("RABBITMQ_URL not set, dataset events are not published")
	}

	r := router.New(cfg, svcs, middleware.NewRedisCounter(rdb, "rl"),
		handler.DatabaseCheck(db),
		handler.RedisCheck(rdb),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("frota reports listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
