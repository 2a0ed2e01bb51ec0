package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paymentsops/ipn-ingest/internal/config"
	"github.com/paymentsops/ipn-ingest/internal/httpserver"
	"github.com/paymentsops/ipn-ingest/internal/keepalive"
	"github.com/paymentsops/ipn-ingest/internal/store"
)

// main boots the service: config → DB → schema → HTTP server → keepalive.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load runtime config from environment. Missing DB_URL or an empty
	// credential set aborts startup.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Connect to durable storage (Postgres) using a connection pool.
	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Ensure the transactions table exists so a fresh deploy is enough.
	if err := db.EnsureSchema(); err != nil {
		log.Fatal(err)
	}

	router := httpserver.NewRouter(cfg, db, logger)

	// Optional self-ping that keeps the host from idling the process out.
	if cfg.KeepaliveURL != "" {
		ka, err := keepalive.New(cfg.KeepaliveURL, cfg.KeepaliveSchedule, logger)
		if err != nil {
			log.Fatal(err)
		}
		ka.Start()
		defer ka.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server started", "port", cfg.Port, "ipn_paths", cfg.IPNPaths)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	// In-flight notifications finish; the bank retries anything cut off.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("server stopped")
}
