package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/mytv-catalog/internal/catalog"
	"github.com/Clark-Hu/mytv-catalog/internal/config"
	"github.com/Clark-Hu/mytv-catalog/internal/events"
	httpserver "github.com/Clark-Hu/mytv-catalog/internal/http"
	"github.com/Clark-Hu/mytv-catalog/internal/logging"
	"github.com/Clark-Hu/mytv-catalog/internal/repository"
	"github.com/Clark-Hu/mytv-catalog/internal/store"
	"github.com/Clark-Hu/mytv-catalog/internal/tmdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("catalog service stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	client, err := tmdb.NewHTTPClient(tmdb.Options{
		BaseURL:  cfg.TMDBBaseURL,
		APIKey:   cfg.TMDBAPIKey,
		Language: cfg.TMDBLanguage,
		Timeout:  time.Duration(cfg.TMDBTimeoutSecs) * time.Second,
		Logger:   logger.Named("tmdb"),
	})
	if err != nil {
		return err
	}

	publisher, err := events.New(cfg.NATSURL, logger.Named("events"))
	if err != nil {
		return err
	}
	defer publisher.Close()

	deps := httpserver.Deps{Logger: logger.Named("http")}
	opts := catalog.ServiceOptions{Notifier: publisher, Logger: logger.Named("catalog")}

	if cfg.StoreEnabled() {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		st, err := store.New(dbCtx, cfg.DBURL, store.Options{
			MaxConns:               int32(cfg.DBMaxConns),
			MinConns:               int32(cfg.DBMinConns),
			MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
			MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
			ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
			StatementCacheCapacity: cfg.DBStatementCache,
			Logger:                 logger.Named("store"),
		})
		if err != nil {
			return err
		}
		defer st.Close()

		repo := repository.New(st)
		opts.Recorder = repo.Passes
		deps.Passes = repo.Passes
		deps.Health = st
	} else {
		logger.Warn("DB_URL not set, pass history disabled")
	}

	aggregator := catalog.NewAggregator(client, client, nil, logger.Named("catalog"))
	deps.Catalog = catalog.NewService(aggregator, catalog.NewSearcher(client), opts)

	server := httpserver.New(cfg, deps)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	var serveErr error
	select {
	case serveErr = <-serverErrCh:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	logger.Info("catalog service stopped")
	return serveErr
}
