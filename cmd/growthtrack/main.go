package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	adapthttp "growthtrack/internal/adapter/http"
	"growthtrack/internal/adapter/memory"
	"growthtrack/internal/adapter/oidc"
	"growthtrack/internal/adapter/postgres"
	"growthtrack/internal/app"
	"growthtrack/internal/config"
	"growthtrack/internal/domain"
	"growthtrack/internal/growth"
	"growthtrack/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store domain.MeasurementStore
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		store = memory.New()
	} else {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer func() { _ = db.Close() }()
		store = db
	}

	var identity adapthttp.IdentityResolver
	if cfg.OIDCIssuer != "" {
		v, err := oidc.New(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			return err
		}
		identity = v
	}

	measurementSvc := app.NewMeasurementService(store, log.Named("measurements"))
	growthSvc := app.NewGrowthService(measurementSvc, growth.NewEngine())

	srv := adapthttp.New(measurementSvc, growthSvc, identity, log.Named("http"))
	if cfg.TrustForwardAuth {
		srv = srv.WithForwardAuth()
	}

	httpServer := &http.Server{Addr: cfg.Addr, Handler: srv.Handler()}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
