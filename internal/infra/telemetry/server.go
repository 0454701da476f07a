// Package telemetry provides Prometheus metrics and the observability
// HTTP listener with /metrics and /healthz.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthReport is the /healthz response body.
type HealthReport struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// HealthTracker aggregates per-component health. A component marked
// degraded flips the overall status.
type HealthTracker struct {
	mu         sync.RWMutex
	components map[string]string
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{components: make(map[string]string)}
}

// SetComponent records a component status, "ok" or a failure note.
func (t *HealthTracker) SetComponent(name, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.components[name] = status
}

func (t *HealthTracker) Report() HealthReport {
	t.mu.RLock()
	defer t.mu.RUnlock()
	report := HealthReport{Status: "ok", Components: make(map[string]string, len(t.components))}
	for name, status := range t.components {
		report.Components[name] = status
		if status != "ok" {
			report.Status = "degraded"
		}
	}
	return report
}

type HTTPServerOptions struct {
	Addr     string
	Health   *HealthTracker
	Registry prometheus.Gatherer
}

// StartHTTPServer serves /metrics and /healthz until ctx is done.
func StartHTTPServer(ctx context.Context, opts HTTPServerOptions, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", healthHandler(opts.Health))

	server := &http.Server{
		Addr:    opts.Addr,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("observability server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("observability server failed to start: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("observability server shutdown error", zap.Error(err))
			return err
		}
		logger.Info("observability server stopped")
		return nil
	}
}

func healthHandler(tracker *HealthTracker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := HealthReport{Status: "ok"}
		if tracker != nil {
			report = tracker.Report()
		}

		status := http.StatusOK
		if report.Status != "ok" {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
	})
}
