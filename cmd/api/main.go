package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/rosterhub/internal/config"
	"github.com/geocoder89/rosterhub/internal/domain/user"
	"github.com/geocoder89/rosterhub/internal/health"
	httpx "github.com/geocoder89/rosterhub/internal/http"
	"github.com/geocoder89/rosterhub/internal/observability"
	"github.com/geocoder89/rosterhub/internal/queue/redisclient"
	"github.com/geocoder89/rosterhub/internal/repo/memory"
	"github.com/geocoder89/rosterhub/internal/rosterevents"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTel.ServiceName, cfg.OTel.Endpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	reporter := health.NewReporter(startedAt)

	// roster events go to redis when configured, otherwise to the log
	var publisher rosterevents.Publisher = rosterevents.NewLogPublisher(log)
	var rdb *redisclient.Client

	if cfg.Redis.Addr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		reporter.AddCheck("redis", rdb)
		publisher = rosterevents.NewProtectedPublisher(
			rosterevents.NewRedisStreamPublisher(rdb.Raw(), cfg.Redis.Stream, cfg.Redis.MaxLen),
			rosterevents.ProtectedPublisherConfig{},
		)
	}

	var seed []user.Record
	if cfg.SeedRoster {
		seed = user.DefaultRoster()
	}
	store := memory.NewUsersRepo(memory.WithSeed(seed))

	events := rosterevents.NewDispatcher(publisher, log, prom.ObserveRosterEvent)

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Store:    store,
		Reporter: reporter,
		Events:   events,
		Prom:     prom,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "users", store.Count(), "redis", rdb != nil)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	reporter.MarkShuttingDown()

	shutdownCtx, cancel := config.WithTimeout(cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	// requests are drained, flush the events they queued before redis goes away
	if err := events.Close(shutdownCtx); err != nil {
		log.Error("roster events flush failed", "err", err)
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("redis close failed", "err", err)
		}
	}

	log.Info("shutdown complete")
}
