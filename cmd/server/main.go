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

	"github.com/goodpapers/backend/internal/app"
	"github.com/goodpapers/backend/internal/config"
	delivery "github.com/goodpapers/backend/internal/delivery/http"
	"github.com/goodpapers/backend/internal/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("goodpapers backend starting", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer a.Close()

	if err := a.Store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	handler := delivery.NewHandler(a.Library, a.Query, a.Arxiv, log)
	router := delivery.NewRouter(handler, log.With("component", "http"), cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return serve(ctx, srv, log)
}

// serve runs srv until ctx is done, then shuts it down gracefully. A listen
// failure is returned to the caller.
func serve(ctx context.Context, srv *http.Server, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}
