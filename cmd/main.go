package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicecollect/internal/api"
	"voicecollect/internal/batch"
	"voicecollect/internal/config"
	"voicecollect/internal/domain/profile"
	"voicecollect/internal/domain/prompt"
	"voicecollect/internal/event"
	"voicecollect/internal/infrastructure/database/postgres"
	"voicecollect/internal/infrastructure/logging"
	"voicecollect/internal/infrastructure/storage"
	"voicecollect/internal/realtime"
	"voicecollect/internal/session"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

func main() {
	cfg, logger := initializeApp()

	repo, cleanup := initializeStore(cfg, logger)
	defer cleanup()

	publisher := initializePublisher(cfg, logger)
	profileService := profile.NewService(repo, publisher, logger)

	assembler, err := prompt.NewAssembler(prompt.PersonaFromConfig(cfg.Prompt))
	if err != nil {
		logger.Error("Failed to build prompt assembler", "error", err)
		os.Exit(1)
	}

	configurator := session.NewConfigurator(profileService, assembler, session.NewInstructionSlot(), logger)

	// Instructions are derived at boot from whatever record survived the
	// last run; with an empty store this seeds the degraded persona.
	if err := configurator.Refresh(context.Background()); err != nil {
		logger.Warn("Initial instruction refresh failed", "error", err)
	}

	realtimeHandler := realtime.NewHandler(
		configurator,
		realtime.NewLoopbackDriver(logger),
		cfg.Realtime.ResolveCredential(),
		logger,
	)

	refreshJob := batch.NewInstructionRefreshJob(configurator, logger)
	cronScheduler := startBatchJobs(cfg, logger, refreshJob)

	router := api.SetupRouter(profileService, configurator, realtimeHandler, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeStore(cfg *config.Config, logger *slog.Logger) (profile.Repository, func()) {
	switch cfg.Storage.Driver {
	case "postgres":
		logger.Info("Initializing postgres profile store...")
		dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Storage, logger)
		if err != nil {
			logger.Error("Failed to initialize database connection pool", "error", err)
			os.Exit(1)
		}
		return postgres.NewProfileRepository(dbPool, logger), func() {
			logger.Info("Closing database connection pool...")
			dbPool.Close()
		}
	default:
		logger.Info("Initializing file profile store...", "path", cfg.Storage.FilePath)
		store, err := storage.NewFileStore(cfg.Storage.FilePath, logger)
		if err != nil {
			logger.Error("Failed to initialize file store", "error", err)
			os.Exit(1)
		}
		return store, func() {}
	}
}

func initializePublisher(cfg *config.Config, logger *slog.Logger) event.Publisher {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("Event publishing disabled")
		return nil
	}

	url := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		cfg.RabbitMQ.Username, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	conn, err := amqp.Dial(url)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ, continuing without events", "error", err)
		return nil
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to initialize event publisher, continuing without events", "error", err)
		return nil
	}
	logger.Info("Event publisher initialized", "exchange", cfg.RabbitMQ.ExchangeName)
	return publisher
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server graceful shutdown failed", "error", err)
		} else {
			logger.Info("HTTP server shutdown initiated.")
		}
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}
	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, refreshJob *batch.InstructionRefreshJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.InstructionRefreshSchedule
	if scheduleSpec == "" {
		scheduleSpec = "@every 5m"
		logger.Warn("Instruction refresh schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.InstructionRefreshTimeout
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Second
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "InstructionRefresh")
		jobLogger.Info("Cron triggered: Running instruction refresh job.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := refreshJob.Run(ctx); runErr != nil {
			jobLogger.Error("Instruction refresh job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Instruction refresh job finished successfully.")
		}
	}))

	if err != nil {
		logger.Error("Failed to schedule instruction refresh job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled instruction refresh job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func setupLogger(cfg config.LoggerConfig) *slog.Logger {
	return logging.NewLogger(cfg)
}
