package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/meets/meets-go/internal/config"
	"github.com/meets/meets-go/internal/handler"
	"github.com/meets/meets-go/internal/logger"
	"github.com/meets/meets-go/internal/repository"
	"github.com/meets/meets-go/internal/service"
	"github.com/meets/meets-go/internal/telemetry"
	"github.com/rs/zerolog/log"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)
	if envErr != nil {
		log.Warn().Msg("no .env file found, using environment variables")
	}

	reporter := telemetry.NewReporter(cfg.SentryDSN, cfg.Env)
	defer reporter.Close()

	db, err := repository.NewDB(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
	}

	authService := service.NewAuthService(repository.NewUserRepository(db), cfg.JWTSecret, cfg.JWTExpiry)
	eventService := service.NewEventService(repository.NewEventRepository(db))

	r := handler.NewRouter(ctx, handler.RouterConfig{
		Auth:        authService,
		Events:      eventService,
		Reporter:    reporter,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		AuthRPS:     5,
		AuthBurst:   10,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("db", db.Driver()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
