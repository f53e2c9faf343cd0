// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"venture-match/internal/app"
	"venture-match/internal/common/camunda"
	"venture-match/internal/common/config"
	"venture-match/internal/common/database"
	"venture-match/internal/common/logger"
	"venture-match/internal/common/observability"
	"venture-match/internal/maintenance"

	cm "venture-match/internal/workers/matching/compute-match"
	esm "venture-match/internal/workers/matching/expire-stale-matches"
	rm "venture-match/internal/workers/matching/rank-matches"
	smf "venture-match/internal/workers/matching/submit-match-feedback"
)

const zeebeConnectTimeout = 2 * time.Minute

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	log := logger.NewForService(cfg.Logging.Level, cfg.Logging.Format, "worker-manager")
	log.Info("starting worker manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New("worker-manager", observability.WithSampleRatio(cfg.Metrics.TraceSampleRatio))
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Backing services ---
	deps, err := app.Connect(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("backing services unavailable", zap.Error(err))
	}
	defer deps.Close()

	if err := deps.Repo.Migrate(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	svc, err := deps.BuildService(ctx, cfg, obs.Tracer())
	if err != nil {
		zapLog.Fatal("match service init failed", zap.Error(err))
	}

	// --- Zeebe ---
	zc, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client init failed", zap.Error(err))
	}
	if err := database.WaitReady(ctx, "zeebe", zc, zeebeConnectTimeout, log); err != nil {
		zapLog.Fatal("zeebe broker unavailable", zap.Error(err))
	}

	// --- Workers ---
	zc.StartWorker(cm.TaskType, config.GetWorkerConfig(cfg, cm.TaskType), obs.InstrumentJob(cm.TaskType,
		cm.NewHandler(cm.FromWorkerConfig(config.GetWorkerConfig(cfg, cm.TaskType)), svc, log).Handle))

	zc.StartWorker(smf.TaskType, config.GetWorkerConfig(cfg, smf.TaskType), obs.InstrumentJob(smf.TaskType,
		smf.NewHandler(smf.FromWorkerConfig(config.GetWorkerConfig(cfg, smf.TaskType)), svc, log).Handle))

	zc.StartWorker(esm.TaskType, config.GetWorkerConfig(cfg, esm.TaskType), obs.InstrumentJob(esm.TaskType,
		esm.NewHandler(esm.FromWorkerConfig(config.GetWorkerConfig(cfg, esm.TaskType)), svc, log).Handle))

	zc.StartWorker(rm.TaskType, config.GetWorkerConfig(cfg, rm.TaskType), obs.InstrumentJob(rm.TaskType,
		rm.NewHandler(rm.FromWorkerConfig(config.GetWorkerConfig(cfg, rm.TaskType)), svc, log).Handle))

	log.Info("workers registered", map[string]interface{}{"taskTypes": zc.Workers()})

	// --- Periodic expiry ---
	var scheduler *maintenance.ExpiryScheduler
	if cfg.Maintenance.ExpireEnabled {
		scheduler, err = maintenance.NewExpiryScheduler(cfg.Maintenance.ExpireInterval, svc, log)
		if err != nil {
			zapLog.Fatal("expiry scheduler init failed", zap.Error(err))
		}
		scheduler.Start()
	}

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		for name, p := range map[string]database.Pinger{"postgres": deps.Postgres, "zeebe": zc} {
			if err := p.Ping(checkCtx); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, name+" unavailable")
				return
			}
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			log.Warn("expiry scheduler shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if err := zc.Close(); err != nil {
		log.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("health/metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped", nil)
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
