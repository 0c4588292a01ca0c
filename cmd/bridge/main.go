package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/bridgeconfig"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/bridgelog"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/config"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/engine"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/httpmw"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := bridgelog.New(cfg)

	logger.Info("starting remoteprotocolbridgecore",
		"config_file", cfg.ConfigFile,
		"data_dir", cfg.DataDir,
		"metrics_addr", cfg.MetricsAddr,
	)

	doc, err := bridgeconfig.LoadDocument(cfg.ConfigFile)
	if err != nil {
		logger.Error("failed to load configuration tree", "error", err)
		os.Exit(1)
	}

	// MIDI protocols require a real device backend the example corpus
	// provides no library for (internal/processor/midi.Port's doc comment);
	// a tree that configures one fails here with bridgeconfig.ErrMIDIPortOpenerMissing.
	eng, err := bridgeconfig.Build(doc, bridgeconfig.Options{Logger: logger})
	if err != nil {
		logger.Error("failed to build engine from configuration", "error", err)
		os.Exit(1)
	}

	if err := eng.Start(); err != nil {
		logger.Error("failed to start engine", "error", err)
		os.Exit(1)
	}

	startTime := time.Now()
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(nodeSnapshotFunc(eng), startTime))

	httpSrv := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      metricsRouter(registry, eng),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		logger.Error("metrics server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}
	if err := eng.Stop(); err != nil {
		logger.Error("engine shutdown error", "error", err)
	}
}

// metricsRouter mounts the operational HTTP surface: /metrics for Prometheus
// scraping and /healthz for liveness checks, the way the teacher's
// internal/api.Server wires chi routes and global middleware.
func metricsRouter(registry *prometheus.Registry, eng *engine.Engine) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(httpmw.RateLimit(httpmw.NewIPRateLimiter(httpmw.DefaultRateLimitConfig())))

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","node_count":%d}`, len(eng.NodeIDs()))
	})
	return r
}

// nodeSnapshotFunc adapts engine.Engine's id-keyed node map to the flat
// []metrics.NodeStats slice the Collector wants at scrape time.
func nodeSnapshotFunc(eng *engine.Engine) metrics.NodesFunc {
	return func() []metrics.NodeStats {
		ids := eng.NodeIDs()
		out := make([]metrics.NodeStats, 0, len(ids))
		for _, id := range ids {
			if n, ok := eng.Node(id); ok {
				out = append(out, n)
			}
		}
		return out
	}
}

