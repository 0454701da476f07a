// Package app wires configuration, scanning, recommendation, and
// transport into a runnable service.
package app

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"toolscout/internal/app/catalog"
	"toolscout/internal/domain"
	"toolscout/internal/infra/config"
	"toolscout/internal/infra/recommender"
	"toolscout/internal/infra/registry"
	"toolscout/internal/infra/scanner"
	"toolscout/internal/infra/telemetry"
	"toolscout/internal/infra/transport"
)

type App struct {
	logger *zap.Logger
}

// ServeConfig carries command-line settings for the serve command.
// Non-zero fields override the config file.
type ServeConfig struct {
	ConfigPath    string
	ScanDirectory string
	TransportMode string
	Watch         bool
}

type ValidateConfig struct {
	ConfigPath string
}

// ScanConfig carries settings for the one-shot scan command.
type ScanConfig struct {
	ConfigPath string
	Directory  string
}

func New(logger *zap.Logger) *App {
	return &App{
		logger: logger.Named("app"),
	}
}

// Serve runs the discovery service until ctx is cancelled.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	conf, err := config.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.ScanDirectory != "" {
		conf.ScanDirectory = cfg.ScanDirectory
	}
	if cfg.TransportMode != "" {
		conf.Transport.Mode = cfg.TransportMode
	}
	if cfg.Watch {
		conf.Watch = true
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	promRegistry := prometheus.NewRegistry()
	metrics := telemetry.NewPrometheusMetrics(promRegistry)
	health := telemetry.NewHealthTracker()

	var cache *scanner.ScanCache
	if conf.CachePath != "" {
		cache, err = scanner.OpenScanCache(conf.CachePath, a.logger)
		if err != nil {
			a.logger.Warn("scan cache unavailable, scanning without it",
				zap.String("path", conf.CachePath), zap.Error(err))
			cache = nil
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	sc := scanner.New(cache, metrics, a.logger)
	provider := catalog.NewProvider(ctx, sc, conf.ScanDirectory, a.logger)
	if conf.Watch {
		provider.Watch(ctx)
	}

	rec, err := recommender.New(ctx, conf.Recommender, metrics, a.logger)
	if err != nil {
		return err
	}

	index := domain.RegistryIndex{}
	if conf.Registry.Enabled {
		index = a.loadRegistry(ctx, conf.Registry, health)
	}

	if conf.Observability.Enabled {
		go func() {
			err := telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
				Addr:     conf.Observability.ListenAddress,
				Health:   health,
				Registry: promRegistry,
			}, a.logger)
			if err != nil {
				a.logger.Error("observability server exited", zap.Error(err))
			}
		}()
	}

	srv := transport.NewServer(transport.Options{
		Provider:    provider,
		Recommender: rec,
		Registry:    index,
		Logger:      a.logger,
	})

	a.logger.Info("server starting",
		zap.String("transport", conf.Transport.Mode),
		zap.String("directory", conf.ScanDirectory),
		zap.String("model", conf.Recommender.Model),
	)

	if conf.Transport.Mode == "stdio" {
		return srv.RunStdio(ctx)
	}
	return srv.RunStreamableHTTP(ctx, conf.Transport)
}

// loadRegistry fetches the remote tool registry. A registry outage only
// degrades recommendations, so failures are reported through health
// instead of aborting startup.
func (a *App) loadRegistry(ctx context.Context, cfg domain.RegistryConfig, health *telemetry.HealthTracker) domain.RegistryIndex {
	client, err := registry.NewClient(cfg, a.logger)
	if err == nil {
		var index domain.RegistryIndex
		if index, err = client.Load(ctx); err == nil {
			health.SetComponent("registry", "ok")
			return index
		}
	}
	a.logger.Warn("registry unavailable, recommendations will omit registry tools", zap.Error(err))
	health.SetComponent("registry", "unavailable")
	return domain.RegistryIndex{}
}

// Scan runs a single scan and writes the catalog summary as JSON.
func (a *App) Scan(ctx context.Context, cfg ScanConfig, out io.Writer) error {
	conf, err := config.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	directory := cfg.Directory
	if directory == "" {
		directory = conf.ScanDirectory
	}
	if directory == "" {
		return domain.E(domain.CodeInvalidArgument, "app.scan", "no directory to scan: pass one or set scanDirectory", nil)
	}

	sc := scanner.New(nil, domain.NopMetrics{}, a.logger)
	cat, err := sc.Scan(ctx, directory)
	if err != nil {
		return err
	}

	state := domain.NewCatalogState(cat, directory, 1, time.Time{})
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(state.Summary())
}

// ValidateConfig loads and validates the configuration without serving.
func (a *App) ValidateConfig(ctx context.Context, cfg ValidateConfig) error {
	conf, err := config.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	if err := conf.Validate(); err != nil {
		return err
	}
	a.logger.Info("configuration validated",
		zap.String("config", cfg.ConfigPath),
		zap.String("transport", conf.Transport.Mode),
		zap.Bool("registry", conf.Registry.Enabled),
	)
	return nil
}
