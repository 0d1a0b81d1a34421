package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nainai/backend/internal/app"
	"nainai/backend/internal/config"
	"nainai/backend/internal/httpapi"
	"nainai/backend/internal/logging"
	"nainai/backend/internal/scheduler"
)

const shutdownTimeout = 8 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "nainai-server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	closeLog, err := logging.Install(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		Production: cfg.IsProduction(),
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closeLog() }()
	log := zap.L().Named("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("close backends", zap.Error(err))
		}
	}()

	jobs, err := scheduler.New(a.Service, nil, cfg.LowStockCron, cfg.DailySummaryCron)
	if err != nil {
		return err
	}
	jobs.Start()

	server := newHTTPServer(cfg, httpapi.New(a.Service, cfg.AllowedOrigin).Handler())
	log.Info("listening", zap.String("addr", server.Addr), zap.String("store", a.StoreKind()))
	serveErr := serve(ctx, server, log)

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	jobs.Stop(stopCtx)
	log.Info("server stopped")
	return serveErr
}

// serve runs server until ctx is cancelled or the listener fails, then shuts it
// down. A listener failure, such as a port already in use, is returned.
func serve(ctx context.Context, server *http.Server, log *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var listenErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			log.Error("server error", zap.Error(err))
			listenErr = fmt.Errorf("serve %s: %w", server.Addr, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	return listenErr
}

func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
