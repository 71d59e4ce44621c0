// cmd/server is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Renessey/Solaris/internal/config"
	"github.com/Renessey/Solaris/internal/database"
	"github.com/Renessey/Solaris/internal/handler"
	"github.com/Renessey/Solaris/internal/metrics"
	"github.com/Renessey/Solaris/internal/service"
	"github.com/Renessey/Solaris/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	pool, err := database.NewPool(ctx)
	if err != nil {
		slog.Error("database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		slog.Error("schema", "err", err)
		os.Exit(1)
	}
	slog.Info("connected to postgres")

	// Wire up layers.
	st := store.NewPostgres(pool)
	svc := service.New(st, cfg.Location, cfg.StoreTimeout)
	mtr := metrics.New()
	regHandler := handler.NewRegistrationHandler(svc, mtr)

	// Build the router.
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS for the form frontend

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", handler.Routes(regHandler))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in a background goroutine so we can listen for the shutdown signal.
	go func() {
		slog.Info("server listening", "addr", cfg.HTTPAddr, "timezone", cfg.TimeZone)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
