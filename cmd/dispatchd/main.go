package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"campusnotify/internal/config"
	"campusnotify/internal/dispatch"
	"campusnotify/internal/httpapi"
	"campusnotify/internal/logging"
	"campusnotify/internal/observability"
	"campusnotify/internal/schedule"
	"campusnotify/internal/store/pg"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadDispatchd()
	logging.Init("dispatchd", cfg.LogFormat, cfg.LogLevel)

	// Root ctx we can cancel; scheduled sends inherit it.
	ctx, cancel := context.WithCancel(context.Background())

	db, err := pg.NewPool(ctx, cfg.DBDSN, pg.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	store := pg.New(db)

	startupCtx, startupCancel := context.WithTimeout(ctx, 5*time.Second)
	defer startupCancel()
	if err := db.Ping(startupCtx); err != nil {
		slog.Error("db not reachable", "err", err)
		os.Exit(1)
	}
	if err := store.EnsureSchema(startupCtx); err != nil {
		slog.Error("schema migration failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.DefaultRegisterer
	observability.Register(reg)

	dispatcher := dispatch.New(buildChains(cfg))
	sched := schedule.New()
	defer sched.Close()

	api := &httpapi.API{
		Dispatcher: dispatcher,
		Store:      store,
		Sched:      sched,
		BaseCtx:    ctx,
	}

	router := api.Router()
	router.HandleFunc("/healthz", httpapi.Healthz())
	router.HandleFunc("/readyz", httpapi.Readyz(2*time.Second,
		func(c context.Context) error { return db.Ping(c) },
	))

	apiSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.Logging(router),
	}
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: httpapi.NewMetricsMux(),
	}

	apiErrCh := make(chan error, 1)
	go func() {
		slog.Info("dispatchd listening", "port", cfg.Port)
		apiErrCh <- apiSrv.ListenAndServe()
	}()
	metricsErrCh := make(chan error, 1)
	go func() {
		slog.Info("dispatchd metrics listening", "port", cfg.MetricsPort)
		metricsErrCh <- metricsSrv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-apiErrCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("api server failed", "err", err)
			os.Exit(1)
		}
	case err := <-metricsErrCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		slog.Info("dispatchd shutdown", "signal", sig.String(), "pending_schedules", sched.Pending())
	}

	cancel()
	sched.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
